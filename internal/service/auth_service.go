package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/observability"
	"github.com/spec-kit/account-service/internal/repository"
	"github.com/spec-kit/account-service/internal/validation"
	apperrors "github.com/spec-kit/account-service/pkg/util"
)

// Messages returned to callers.
const (
	MsgSignupSuccess      = "User registered successfully"
	MsgUserExists         = "User already exists"
	MsgPasswordsDontMatch = "Passwords do not match"
	MsgPasswordTooLong    = "Password must be at most 72 bytes"
)

const (
	opSignup = "signup"
	opLogin  = "login"
)

// AuthService coordinates signup and login flows. It is the only component
// that touches the credential store.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger

	dummyOnce sync.Once
	dummyHash string
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Tokens     *auth.TokenManager
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewAuthService builds the service. When deps.Tokens is nil a manager is
// built from cfg.Auth.JWTSecret.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	tokens := deps.Tokens
	if tokens == nil {
		tokens = auth.NewTokenManager(cfg.Auth.JWTSecret)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   tokens,
		bcryptCost: cfg.Auth.BcryptCost,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// SignupResult is returned on successful signup.
type SignupResult struct {
	User  *domain.User
	Token domain.Token
}

// LoginResult is returned on successful login.
type LoginResult struct {
	User  domain.PublicUser
	Token domain.Token
}

// Signup validates the form, creates the account and issues a session token.
func (s *AuthService) Signup(ctx context.Context, form validation.SignupForm) (*SignupResult, error) {
	fieldErrs := validation.ValidateSignup(form)
	if shape := fieldErrs.Without(validation.RuleMatch); len(shape) > 0 {
		s.metrics.RecordAuth(opSignup, observability.OutcomeValidationFailed)
		return nil, apperrors.NewValidationError(shape[0].Message, shape.Map())
	}

	existing, err := s.users.FindByEmail(ctx, form.Email)
	if err != nil {
		return nil, s.fault(opSignup, "lookup user", err)
	}
	if existing != nil {
		s.metrics.RecordAuth(opSignup, observability.OutcomeConflict)
		return nil, apperrors.NewConflict(MsgUserExists, nil)
	}

	if form.Password != form.ConfirmPassword {
		s.metrics.RecordAuth(opSignup, observability.OutcomeValidationFailed)
		return nil, apperrors.NewValidationError(MsgPasswordsDontMatch, fieldErrs.Map())
	}

	hash, err := auth.HashPassword(form.Password, s.bcryptCost)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			s.metrics.RecordAuth(opSignup, observability.OutcomeValidationFailed)
			return nil, apperrors.NewValidationError(MsgPasswordTooLong, map[string]any{"password": MsgPasswordTooLong})
		}
		return nil, s.fault(opSignup, "hash password", err)
	}

	user := &domain.User{
		ID:            uuid.NewString(),
		Name:          form.Name,
		Email:         form.Email,
		ContactNumber: form.ContactNumber,
		PasswordHash:  hash,
		TermsAccepted: form.TermsAccepted,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			s.metrics.RecordAuth(opSignup, observability.OutcomeConflict)
			return nil, apperrors.NewConflict(MsgUserExists, nil)
		}
		return nil, s.fault(opSignup, "insert user", err)
	}

	token, err := s.tokenMgr.GenerateToken(user.ID)
	if err != nil {
		return nil, s.fault(opSignup, "sign token", err)
	}

	s.publish(ctx, events.Event{
		Type:    events.EventUserRegistered,
		UserID:  user.ID,
		Payload: events.UserRegisteredPayload{Name: user.Name, Email: user.Email},
	})
	s.metrics.RecordAuth(opSignup, observability.OutcomeSuccess)
	s.logger.Info("user registered", zap.String("user_id", user.ID))

	return &SignupResult{User: user, Token: token}, nil
}

// Login checks credentials. Unknown email and wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, form validation.LoginForm) (*LoginResult, error) {
	if form.Email == "" || form.Password == "" {
		s.metrics.RecordAuth(opLogin, observability.OutcomeInvalidCredentials)
		return nil, apperrors.NewInvalidCredentials()
	}

	user, err := s.users.FindByEmail(ctx, form.Email)
	if err != nil {
		return nil, s.fault(opLogin, "lookup user", err)
	}
	if user == nil {
		// Burn a comparison so a miss costs about as much as a wrong password.
		_ = auth.ComparePassword(s.dummy(), form.Password)
		s.metrics.RecordAuth(opLogin, observability.OutcomeInvalidCredentials)
		return nil, apperrors.NewInvalidCredentials()
	}

	if err := auth.ComparePassword(user.PasswordHash, form.Password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Warn("stored password hash unusable", zap.String("user_id", user.ID), zap.Error(err))
		}
		s.metrics.RecordAuth(opLogin, observability.OutcomeInvalidCredentials)
		return nil, apperrors.NewInvalidCredentials()
	}

	token, err := s.tokenMgr.GenerateToken(user.ID)
	if err != nil {
		return nil, s.fault(opLogin, "sign token", err)
	}

	s.publish(ctx, events.Event{Type: events.EventUserLoggedIn, UserID: user.ID})
	s.metrics.RecordAuth(opLogin, observability.OutcomeSuccess)

	return &LoginResult{User: user.Public(), Token: token}, nil
}

// Me returns the public projection of the user behind a verified token.
func (s *AuthService) Me(ctx context.Context, userID string) (domain.PublicUser, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.PublicUser{}, apperrors.NewInternalError(err)
	}
	if user == nil {
		return domain.PublicUser{}, apperrors.NewUnauthorized("user not found")
	}
	return user.Public(), nil
}

// Ready reports whether the credential store is reachable.
func (s *AuthService) Ready(ctx context.Context) error {
	return s.users.Ping(ctx)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) fault(op, step string, err error) error {
	s.metrics.RecordAuth(op, observability.OutcomeError)
	s.logger.Error("auth operation failed",
		zap.String("operation", op),
		zap.String("step", step),
		zap.Error(err))
	return apperrors.NewInternalError(err)
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := auth.HashPassword("not-a-real-password", s.bcryptCost)
		if err != nil {
			s.logger.Warn("dummy hash generation failed", zap.Error(err))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
