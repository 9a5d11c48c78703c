package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	commoncrypto "chatwire/internal/common/crypto"
	commonerrors "chatwire/internal/common/errors"
	"chatwire/internal/common/logger"
	userdomain "chatwire/internal/user/domain"
	userrepo "chatwire/internal/user/repository"
)

type AuthService struct {
	repo        userrepo.Repository
	hasher      commoncrypto.PasswordHasher
	idGenerator commoncrypto.IDGenerator
	tokens      *TokenIssuer
	validate    *validator.Validate
	log         *logger.Logger
}

func NewAuthService(
	repo userrepo.Repository,
	hasher commoncrypto.PasswordHasher,
	idGenerator commoncrypto.IDGenerator,
	tokens *TokenIssuer,
	log *logger.Logger,
) *AuthService {
	return &AuthService{
		repo:        repo,
		hasher:      hasher,
		idGenerator: idGenerator,
		tokens:      tokens,
		validate:    validator.New(),
		log:         log,
	}
}

type SignupInput struct {
	Name     string `validate:"required"`
	Username string `validate:"required"`
	Password string `validate:"required,min=6"`
}

type LoginInput struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// AuthResult carries the created or authenticated user together with the
// session token the HTTP layer turns into a cookie.
type AuthResult struct {
	User  userdomain.Public
	Token string
}

func (s *AuthService) Signup(ctx context.Context, input SignupInput) (AuthResult, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "signup_attempt",
	}).Info("signup attempt")

	if err := s.validate.Struct(input); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "signup_validation_failed",
		}).Warnf("signup validation failed: %v", err)
		return AuthResult{}, validationError(err)
	}

	username := normalizeUsername(input.Username)

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "signup_hash_failed",
		}).Errorf("signup failed: password hash error: %v", err)
		return AuthResult{}, commonerrors.ErrInternalError.WithCause(err)
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "signup_id_generation_failed",
		}).Errorf("signup failed: id generation error: %v", err)
		return AuthResult{}, commonerrors.ErrInternalError.WithCause(err)
	}

	user := userdomain.User{
		ID:           userdomain.ID(id),
		Username:     username,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: hash,
		CreatedAt:    s.tokens.clock.Now(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userrepo.ErrUsernameAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"username": username,
				"action":   "signup_username_exists",
			}).Warn("signup failed: username already exists")
			return AuthResult{}, commonerrors.ErrUsernameAlreadyExists
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "signup_create_failed",
		}).Errorf("signup failed: %v", err)
		return AuthResult{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	token, err := s.tokens.IssueSessionToken(user)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"user_id":  id,
			"action":   "signup_token_issue_failed",
		}).Errorf("signup failed: token issue error: %v", err)
		return AuthResult{}, commonerrors.ErrInternalError.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": username,
		"user_id":  id,
		"action":   "signup_success",
	}).Info("signup success")

	return AuthResult{User: user.Public(), Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "login_attempt",
	}).Info("login attempt")

	if err := s.validate.Struct(input); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_validation_failed",
		}).Warnf("login validation failed: %v", err)
		return AuthResult{}, commonerrors.ErrFieldsRequired
	}

	username := normalizeUsername(input.Username)

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"username": username,
				"action":   "login_user_not_found",
			}).Warn("login failed: user not found")
			return AuthResult{}, commonerrors.ErrInvalidCredentials
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "login_fetch_failed",
		}).Errorf("login failed: %v", err)
		return AuthResult{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "login_invalid_password",
		}).Warn("login failed: invalid password")
		return AuthResult{}, commonerrors.ErrInvalidCredentials
	}

	token, err := s.tokens.IssueSessionToken(user)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"user_id":  string(user.ID),
			"action":   "login_token_issue_failed",
		}).Errorf("login failed: token issue error: %v", err)
		return AuthResult{}, commonerrors.ErrInternalError.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": username,
		"user_id":  string(user.ID),
		"action":   "login_success",
	}).Info("login success")

	return AuthResult{User: user.Public(), Token: token}, nil
}

// CheckAuth resolves the authenticated user's current record, password hash
// stripped.
func (s *AuthService) CheckAuth(ctx context.Context, userID string) (userdomain.Public, error) {
	user, err := s.repo.FindByID(ctx, userdomain.ID(userID))
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return userdomain.Public{}, commonerrors.ErrUserNotFound
		}
		return userdomain.Public{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	return user.Public(), nil
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
