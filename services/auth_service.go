package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/cppla/vitalog/models"
	"github.com/cppla/vitalog/store"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// TokenIssuer signs bearer tokens for a user.
type TokenIssuer interface {
	Issue(user models.User) (string, time.Time, error)
}

// TokenRevoker blacklists a token until it expires.
type TokenRevoker interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time)
}

// RegisterInput is the body of a registration request.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,strongpassword"`
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
}

// LoginInput is the body of a login request.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileInput updates the mutable profile fields; nil leaves a field unchanged.
type ProfileInput struct {
	FirstName           *string `json:"firstName" validate:"omitnil,max=100"`
	LastName            *string `json:"lastName" validate:"omitnil,max=100"`
	OnboardingCompleted *bool   `json:"onboardingCompleted"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token     string    `json:"token"`
	UserID    uint      `json:"userId"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AuthService encapsulates account use-cases.
type AuthService struct {
	users    UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	revoker  TokenRevoker
	validate *validator.Validate

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(users UserRepository, hasher PasswordHasher, tokens TokenIssuer, revoker TokenRevoker) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		revoker:  revoker,
		validate: newValidator(),
	}
}

// Register creates an account and signs the user in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	in.Email = models.NormalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	verr := &ValidationError{}
	if err := collect(s.validate, in, verr); err != nil {
		return AuthResult{}, err
	}
	if in.Email != "" && !validAddress(in.Email) && !containsPrefix(verr.Messages, "email") {
		verr.add("email must be a valid email address")
	}
	if err := verr.errOrNil(); err != nil {
		return AuthResult{}, err
	}

	exists, err := s.users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return AuthResult{}, err
	}
	if exists {
		return AuthResult{}, ErrDuplicateUser
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return AuthResult{}, err
	}
	user := models.User{
		Email:            in.Email,
		PasswordHash:     hash,
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		SubscriptionTier: models.DefaultSubscriptionTier,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return AuthResult{}, ErrDuplicateUser
		}
		return AuthResult{}, err
	}
	return s.issue(user)
}

// Login verifies credentials. Unknown email and wrong password are indistinguishable.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	email := models.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return AuthResult{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return AuthResult{}, err
		}
		s.hasher.Verify(s.dummy(), in.Password)
		return AuthResult{}, ErrInvalidCredentials
	}
	if !s.hasher.Verify(user.PasswordHash, in.Password) {
		return AuthResult{}, ErrInvalidCredentials
	}
	return s.issue(user)
}

// UserExists reports whether an account uses email.
func (s *AuthService) UserExists(ctx context.Context, email string) (bool, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return false, newValidationError("email is required")
	}
	return s.users.ExistsByEmail(ctx, email)
}

// Profile returns the caller's own profile.
func (s *AuthService) Profile(ctx context.Context, userID uint) (models.UserProfile, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return models.UserProfile{}, err
	}
	return user.Profile(), nil
}

// UpdateProfile applies the non-nil fields of in.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (models.UserProfile, error) {
	if in.FirstName != nil {
		v := strings.TrimSpace(*in.FirstName)
		in.FirstName = &v
	}
	if in.LastName != nil {
		v := strings.TrimSpace(*in.LastName)
		in.LastName = &v
	}
	verr := &ValidationError{}
	if err := collect(s.validate, in, verr); err != nil {
		return models.UserProfile{}, err
	}
	if err := verr.errOrNil(); err != nil {
		return models.UserProfile{}, err
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return models.UserProfile{}, err
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.OnboardingCompleted != nil {
		user.OnboardingCompleted = *in.OnboardingCompleted
	}
	if err := s.users.Update(ctx, &user); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.UserProfile{}, ErrUserNotFound
		}
		return models.UserProfile{}, err
	}
	return user.Profile(), nil
}

// Logout revokes token until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, token string, expiresAt time.Time) {
	if s.revoker == nil || token == "" {
		return
	}
	s.revoker.Revoke(ctx, token, expiresAt)
}

func (s *AuthService) loadUser(ctx context.Context, userID uint) (models.User, error) {
	if userID == 0 {
		return models.User{}, ErrUnauthorized
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *AuthService) issue(user models.User) (AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{
		Token:     token,
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		ExpiresAt: expiresAt,
	}, nil
}

// dummy is a hash compared against when the account does not exist.
func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("vitalog-timing-placeholder")
	})
	return s.dummyHash
}

// validAddress rejects display-name forms like "Bob <bob@example.com>".
func validAddress(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func containsPrefix(msgs []string, prefix string) bool {
	for _, m := range msgs {
		if strings.HasPrefix(m, prefix) {
			return true
		}
	}
	return false
}
