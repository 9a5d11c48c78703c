package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	"chatwire/internal/common/clock"
	"chatwire/internal/common/constants"
	commoncrypto "chatwire/internal/common/crypto"
	commonerrors "chatwire/internal/common/errors"
	"chatwire/internal/common/logger"
	"chatwire/internal/message/domain"
	msgrepo "chatwire/internal/message/repository"
	"chatwire/internal/observability/metrics"
	"chatwire/internal/realtime"
	userdomain "chatwire/internal/user/domain"
	userrepo "chatwire/internal/user/repository"
)

type MessageService struct {
	messages    msgrepo.Repository
	users       userrepo.Repository
	pusher      realtime.Pusher
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	log         *logger.Logger
}

func NewMessageService(
	messages msgrepo.Repository,
	users userrepo.Repository,
	pusher realtime.Pusher,
	idGenerator commoncrypto.IDGenerator,
	clk clock.Clock,
	log *logger.Logger,
) *MessageService {
	return &MessageService{
		messages:    messages,
		users:       users,
		pusher:      pusher,
		idGenerator: idGenerator,
		clock:       clk,
		log:         log,
	}
}

// Send persists the message and only then attempts live delivery. A failed
// or dropped push does not undo the write: the receiver reads the message
// from the conversation history on their next fetch.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID, text string) (domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Message{}, commonerrors.ErrEmptyMessageText
	}
	// The limit is in characters, not bytes, so multibyte text is not
	// penalized for its encoding.
	if utf8.RuneCountInString(text) > constants.MaxMessageLength {
		return domain.Message{}, commonerrors.ErrMessageTooLong
	}
	if senderID == receiverID {
		return domain.Message{}, commonerrors.ErrSelfMessage
	}

	if _, err := s.users.FindByID(ctx, userdomain.ID(receiverID)); err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return domain.Message{}, commonerrors.ErrUserNotFound
		}
		return domain.Message{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return domain.Message{}, commonerrors.ErrInternalError.WithCause(err)
	}

	msg := domain.Message{
		ID:         id,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		CreatedAt:  s.clock.Now(),
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"sender_id":   senderID,
			"receiver_id": receiverID,
			"action":      "message_persist_failed",
		}).Errorf("message persist failed: %v", err)
		return domain.Message{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	metrics.MessagesSentTotal.Inc()

	delivered := s.pusher.Push(receiverID, realtime.EventNewMessage, msg)

	s.log.WithFields(ctx, logger.Fields{
		"message_id":  msg.ID,
		"sender_id":   senderID,
		"receiver_id": receiverID,
		"delivered":   delivered,
		"action":      "message_sent",
	}).Info("message sent")

	return msg, nil
}

// Conversation returns the full history between the caller and the other
// user, both directions, oldest first.
func (s *MessageService) Conversation(ctx context.Context, userID, otherID string) ([]domain.Message, error) {
	if otherID == "" {
		return nil, commonerrors.ErrUserIDRequired
	}

	msgs, err := s.messages.ListConversation(ctx, userID, otherID)
	if err != nil {
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}

	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})

	return msgs, nil
}

// SidebarUsers lists every registered user except the caller, for the
// client's contact list.
func (s *MessageService) SidebarUsers(ctx context.Context, userID string) ([]userdomain.Public, error) {
	users, err := s.users.FindAllExcept(ctx, userdomain.ID(userID))
	if err != nil {
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}

	return users, nil
}
