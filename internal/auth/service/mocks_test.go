package service

import (
	"context"

	userdomain "chatwire/internal/user/domain"
	userrepo "chatwire/internal/user/repository"
)

type mockUserRepo struct {
	createFunc         func(ctx context.Context, user userdomain.User) error
	findByUsernameFunc func(ctx context.Context, username string) (userdomain.User, error)
	findByIDFunc       func(ctx context.Context, id userdomain.ID) (userdomain.User, error)
	findAllExceptFunc  func(ctx context.Context, id userdomain.ID) ([]userdomain.Public, error)

	created []userdomain.User
}

func (m *mockUserRepo) Create(ctx context.Context, user userdomain.User) error {
	m.created = append(m.created, user)
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

type mockHasher struct {
	hashFunc    func(password string) (string, error)
	compareFunc func(hash string, password string) error
}

func (m *mockHasher) Hash(password string) (string, error) {
	if m.hashFunc != nil {
		return m.hashFunc(password)
	}
	return "hashed_" + password, nil
}

func (m *mockHasher) Compare(hash string, password string) error {
	if m.compareFunc != nil {
		return m.compareFunc(hash, password)
	}
	return nil
}

type mockIDGenerator struct {
	newIDFunc func() (string, error)
}

func (m *mockIDGenerator) NewID() (string, error) {
	if m.newIDFunc != nil {
		return m.newIDFunc()
	}
	return "user-id-1", nil
}
