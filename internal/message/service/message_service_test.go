package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"chatwire/internal/common/clock"
	commonerrors "chatwire/internal/common/errors"
	"chatwire/internal/common/logger"
	"chatwire/internal/message/domain"
	"chatwire/internal/realtime"
	userdomain "chatwire/internal/user/domain"
)

func setupMessageService(t *testing.T) (*MessageService, *mockMessageRepo, *mockUserRepo, *mockPusher) {
	t.Helper()

	messageRepo := &mockMessageRepo{}
	userRepo := &mockUserRepo{
		findByIDFunc: func(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
			return userdomain.User{ID: id, Username: "receiver"}, nil
		},
	}
	pusher := &mockPusher{}
	clk := clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	svc := NewMessageService(messageRepo, userRepo, pusher, &mockIDGenerator{}, clk, logger.NewDiscard())
	return svc, messageRepo, userRepo, pusher
}

func TestMessageService_Send_PersistsThenPushes(t *testing.T) {
	svc, messageRepo, _, pusher := setupMessageService(t)

	var persisted *domain.Message
	messageRepo.createFunc = func(ctx context.Context, msg domain.Message) error {
		persisted = &msg
		if len(pusher.pushes) != 0 {
			t.Error("expected persistence to complete before any push")
		}
		return nil
	}

	msg, err := svc.Send(context.Background(), "alice", "bob", "hello")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if persisted == nil {
		t.Fatal("expected the message to be persisted")
	}
	if msg.ID != "generated-id" || msg.SenderID != "alice" || msg.ReceiverID != "bob" || msg.Text != "hello" {
		t.Errorf("unexpected message record: %+v", msg)
	}
	if len(pusher.pushes) != 1 || pusher.pushes[0] != "bob" {
		t.Errorf("expected exactly one push to bob, got %v", pusher.pushes)
	}
}

func TestMessageService_Send_PersistFailureAbortsPush(t *testing.T) {
	svc, messageRepo, _, pusher := setupMessageService(t)

	messageRepo.createFunc = func(ctx context.Context, msg domain.Message) error {
		return errors.New("connection refused")
	}

	_, err := svc.Send(context.Background(), "alice", "bob", "hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(pusher.pushes) != 0 {
		t.Error("expected no push after a failed write")
	}
}

func TestMessageService_Send_OfflineReceiverStillSucceeds(t *testing.T) {
	svc, _, _, pusher := setupMessageService(t)

	pusher.pushFunc = func(receiverID string, eventType realtime.EventType, data any) bool {
		return false
	}

	msg, err := svc.Send(context.Background(), "alice", "bob", "hello")
	if err != nil {
		t.Fatalf("expected a dropped push to not fail the send, got %v", err)
	}
	if msg.Text != "hello" {
		t.Errorf("expected the persisted record back, got %+v", msg)
	}
}

func TestMessageService_Send_Validation(t *testing.T) {
	svc, _, _, _ := setupMessageService(t)

	tests := []struct {
		name       string
		senderID   string
		receiverID string
		text       string
		wantErr    error
	}{
		{"empty text", "alice", "bob", "   ", commonerrors.ErrEmptyMessageText},
		{"too long", "alice", "bob", strings.Repeat("a", 4001), commonerrors.ErrMessageTooLong},
		{"too long multibyte", "alice", "bob", strings.Repeat("é", 4001), commonerrors.ErrMessageTooLong},
		{"self message", "alice", "alice", "hi", commonerrors.ErrSelfMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Send(context.Background(), tt.senderID, tt.receiverID, tt.text)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestMessageService_Send_LengthLimitCountsRunes(t *testing.T) {
	svc, messageRepo, _, _ := setupMessageService(t)

	var persisted *domain.Message
	messageRepo.createFunc = func(ctx context.Context, msg domain.Message) error {
		persisted = &msg
		return nil
	}

	// 4000 two-byte runes: 8000 bytes, but exactly at the character limit.
	text := strings.Repeat("é", 4000)
	msg, err := svc.Send(context.Background(), "alice", "bob", text)
	if err != nil {
		t.Fatalf("expected a 4000-rune message to be accepted, got %v", err)
	}
	if msg.Text != text {
		t.Error("expected the message text to be stored unchanged")
	}
	if persisted == nil {
		t.Fatal("expected the message to be persisted")
	}
}

func TestMessageService_Send_UnknownReceiver(t *testing.T) {
	svc, _, userRepo, pusher := setupMessageService(t)

	userRepo.findByIDFunc = nil

	_, err := svc.Send(context.Background(), "alice", "ghost", "hello")
	if !errors.Is(err, commonerrors.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if len(pusher.pushes) != 0 {
		t.Error("expected no push for an unknown receiver")
	}
}

func TestMessageService_Conversation_OrderedOldestFirst(t *testing.T) {
	svc, messageRepo, _, _ := setupMessageService(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	messageRepo.listConversationFunc = func(ctx context.Context, userA, userB string) ([]domain.Message, error) {
		return []domain.Message{
			{ID: "3", CreatedAt: base.Add(2 * time.Minute)},
			{ID: "1", CreatedAt: base},
			{ID: "2", CreatedAt: base.Add(time.Minute)},
		}, nil
	}

	msgs, err := svc.Conversation(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := []string{"1", "2", "3"}
	if len(msgs) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(msgs))
	}
	for i, id := range want {
		if msgs[i].ID != id {
			t.Errorf("expected message %s at position %d, got %s", id, i, msgs[i].ID)
		}
	}
}

func TestMessageService_Conversation_RequiresOtherUser(t *testing.T) {
	svc, _, _, _ := setupMessageService(t)

	_, err := svc.Conversation(context.Background(), "alice", "")
	if !errors.Is(err, commonerrors.ErrUserIDRequired) {
		t.Errorf("expected ErrUserIDRequired, got %v", err)
	}
}

func TestMessageService_SidebarUsers_ExcludesCaller(t *testing.T) {
	svc, _, userRepo, _ := setupMessageService(t)

	userRepo.findAllExceptFunc = func(ctx context.Context, id userdomain.ID) ([]userdomain.Public, error) {
		if id != "alice" {
			t.Errorf("expected the caller id to be excluded, got %s", id)
		}
		return []userdomain.Public{{ID: "bob"}, {ID: "carol"}}, nil
	}

	users, err := svc.SidebarUsers(context.Background(), "alice")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}
}
