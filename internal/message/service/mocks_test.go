package service

import (
	"context"

	"chatwire/internal/message/domain"
	"chatwire/internal/realtime"
	userdomain "chatwire/internal/user/domain"
	userrepo "chatwire/internal/user/repository"
)

type mockMessageRepo struct {
	createFunc           func(ctx context.Context, msg domain.Message) error
	listConversationFunc func(ctx context.Context, userA, userB string) ([]domain.Message, error)
}

func (m *mockMessageRepo) Create(ctx context.Context, msg domain.Message) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, msg)
	}
	return nil
}

func (m *mockMessageRepo) ListConversation(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	if m.listConversationFunc != nil {
		return m.listConversationFunc(ctx, userA, userB)
	}
	return nil, nil
}

type mockUserRepo struct {
	createFunc         func(ctx context.Context, user userdomain.User) error
	findByUsernameFunc func(ctx context.Context, username string) (userdomain.User, error)
	findByIDFunc       func(ctx context.Context, id userdomain.ID) (userdomain.User, error)
	findAllExceptFunc  func(ctx context.Context, id userdomain.ID) ([]userdomain.Public, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user userdomain.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (userdomain.User, error) {
	if m.findByUsernameFunc != nil {
		return m.findByUsernameFunc(ctx, username)
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (m *mockUserRepo) FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (m *mockUserRepo) FindAllExcept(ctx context.Context, id userdomain.ID) ([]userdomain.Public, error) {
	if m.findAllExceptFunc != nil {
		return m.findAllExceptFunc(ctx, id)
	}
	return nil, nil
}

type mockPusher struct {
	pushFunc func(receiverID string, eventType realtime.EventType, data any) bool
	pushes   []string
}

func (m *mockPusher) Push(receiverID string, eventType realtime.EventType, data any) bool {
	m.pushes = append(m.pushes, receiverID)
	if m.pushFunc != nil {
		return m.pushFunc(receiverID, eventType, data)
	}
	return true
}

type mockIDGenerator struct {
	newIDFunc func() (string, error)
}

func (m *mockIDGenerator) NewID() (string, error) {
	if m.newIDFunc != nil {
		return m.newIDFunc()
	}
	return "generated-id", nil
}
