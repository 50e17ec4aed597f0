// Package service contains the business logic layer. Services validate,
// enforce the domain rules, and orchestrate repositories; they know nothing
// about HTTP.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/tahmid/habit-tracker/internal/apperror"
	"github.com/tahmid/habit-tracker/internal/auth"
	"github.com/tahmid/habit-tracker/internal/model"
	"github.com/tahmid/habit-tracker/internal/repository"
)

var (
	// emailShapedPattern flags usernames that start like an email address.
	// Any string it matches also contains '@', so the '@' rule below would
	// reject it too; both checks exist because each carries its own error
	// message and clients depend on the distinction.
	emailShapedPattern = regexp.MustCompile(`^.+@.+\..+`)

	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

const requiredFieldMessage = "This field is required."

// AuthService implements the identity lifecycle: registration, login, guest
// provisioning, logout (refresh token revocation), and access token refresh.
//
// Dependencies are injected, including the guest credential randomness and
// the clock, so every outcome is reproducible in tests.
type AuthService struct {
	users     repository.UserRepository
	blacklist repository.TokenBlacklist
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	guests    *auth.GuestGenerator
	logger    *slog.Logger
	now       func() time.Time
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	blacklist repository.TokenBlacklist,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	guests *auth.GuestGenerator,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		blacklist: blacklist,
		tokens:    tokens,
		passwords: passwords,
		guests:    guests,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the service clock. Tests use this to pin "today" for
// guest expiry assertions.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// Today returns the service's current calendar day, used when computing
// derived guest-expiry fields for responses.
func (s *AuthService) Today() model.Date {
	return model.NewDate(s.now())
}

// AuthResult bundles the identity and its freshly minted token pair.
type AuthResult struct {
	User   *model.User
	Tokens auth.TokenPair
}

// Register validates the registration input, creates the identity, and
// issues its first token pair.
//
// Username rules, in order: required; must not look like an email; must not
// contain '@'; surrounding whitespace is trimmed after those checks pass and
// must leave something behind; must be unused. Email must be present,
// well-formed, and unused. The password only has to be present.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	if username == "" {
		return nil, apperror.ValidationFailed("username", requiredFieldMessage)
	}
	if email == "" {
		return nil, apperror.ValidationFailed("email", requiredFieldMessage)
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", requiredFieldMessage)
	}

	if emailShapedPattern.MatchString(username) {
		return nil, apperror.ValidationFailed("username", "Username cannot look like an email")
	}
	if strings.Contains(username, "@") {
		return nil, apperror.ValidationFailed("username", "Username cannot contain '@' symbol")
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", requiredFieldMessage)
	}

	taken, err := s.users.UsernameExists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service/auth: checking username %q: %w", username, err)
	}
	if taken {
		return nil, apperror.ValidationFailed("username", "A user with that username already exists.")
	}

	if !emailPattern.MatchString(email) {
		return nil, apperror.ValidationFailed("email", "Enter a valid email address.")
	}
	taken, err = s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: checking email: %w", err)
	}
	if taken {
		return nil, apperror.ValidationFailed("email", "Email is already taken")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Username:             username,
		Email:                email,
		PasswordHash:         hash,
		NotificationsEnabled: true,
		CreatedOn:            s.Today(),
	}
	// The unique constraints backstop the pre-checks above; a concurrent
	// registration with the same username/email surfaces here as the same
	// field-scoped error.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating user %q: %w", username, err)
	}

	s.logger.Info("user registration successful",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return s.issueFor(user)
}

// Login resolves the identifier (email when it contains '@', username
// otherwise) and verifies the password. Both an unknown identifier and a
// wrong password yield the same generic error.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	if identifier == "" {
		return nil, apperror.ValidationFailed("identifier", requiredFieldMessage)
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", requiredFieldMessage)
	}

	var (
		user *model.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.users.GetByEmail(ctx, identifier)
	} else {
		user, err = s.users.GetByUsername(ctx, identifier)
	}
	if err != nil {
		s.logger.Warn("user login failed", slog.String("identifier", identifier))
		return nil, apperror.InvalidCredentials()
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		s.logger.Warn("user login failed", slog.String("identifier", identifier))
		return nil, apperror.InvalidCredentials()
	}

	s.logger.Info("user login successful",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return s.issueFor(user)
}

// CreateGuest provisions a throwaway identity with a random username and a
// random password that is hashed and discarded, then issues its token pair.
// The guest is a normal identity flagged is_guest; its 7-day expiry is
// derived from created_on, never stored.
func (s *AuthService) CreateGuest(ctx context.Context) (*AuthResult, error) {
	creds, err := s.guests.Generate()
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating guest credentials: %w", err)
	}

	hash, err := s.passwords.Hash(creds.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing guest password: %w", err)
	}

	user := &model.User{
		Username:             creds.Username,
		PasswordHash:         hash,
		IsGuest:              true,
		NotificationsEnabled: true,
		CreatedOn:            s.Today(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating guest user: %w", err)
	}

	s.logger.Info("guest user created",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return s.issueFor(user)
}

// Logout revokes a refresh token by blacklisting its jti. Malformed,
// expired, and already-blacklisted tokens all fail with the same fixed
// error scoped to the refresh_token field.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return apperror.ValidationFailed("refresh_token", requiredFieldMessage)
	}

	claims, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return apperror.InvalidToken("refresh_token")
	}

	revoked, err := s.blacklist.Contains(ctx, claims.TokenID)
	if err != nil {
		return fmt.Errorf("service/auth: checking blacklist: %w", err)
	}
	if revoked {
		return apperror.InvalidToken("refresh_token")
	}

	if err := s.blacklist.Add(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return fmt.Errorf("service/auth: blacklisting token: %w", err)
	}

	s.logger.Info("user logout successful", slog.String("userID", claims.UserID))
	return nil
}

// Refresh exchanges a valid, unrevoked refresh token for a new access
// token. The refresh token itself stays valid until it expires or is
// revoked by Logout.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apperror.ValidationFailed("refresh", requiredFieldMessage)
	}

	claims, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return "", apperror.InvalidToken("refresh")
	}

	revoked, err := s.blacklist.Contains(ctx, claims.TokenID)
	if err != nil {
		return "", fmt.Errorf("service/auth: checking blacklist: %w", err)
	}
	if revoked {
		return "", apperror.InvalidToken("refresh")
	}

	access, err := s.tokens.IssueAccess(claims.UserID)
	if err != nil {
		return "", fmt.Errorf("service/auth: issuing access token: %w", err)
	}
	return access, nil
}

// GetUserByID returns the identity for a validated access token's subject.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, fmt.Errorf("service/auth: user ID must not be empty")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", id, err)
	}
	return user, nil
}

func (s *AuthService) issueFor(user *model.User) (*AuthResult, error) {
	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing tokens for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Tokens: pair}, nil
}
