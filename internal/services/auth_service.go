package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jfprgin/home-budget/internal/auth"
	"github.com/jfprgin/home-budget/internal/core"
	"github.com/jfprgin/home-budget/internal/ledger"
)

var (
	// ErrInvalidCredentials is returned by Login for an unknown user or a
	// wrong password alike.
	ErrInvalidCredentials = errors.New("no active account found with the given credentials")
	// ErrUnauthenticated covers every reason an access or refresh token is refused.
	ErrUnauthenticated = errors.New("given token not valid for any token type")
	// ErrLogoutFailed is returned for a refresh token that cannot be revoked.
	ErrLogoutFailed = errors.New("invalid token or token has already been blacklisted")
)

const msgUsernameTaken = "A user with that username already exists."

// PasswordChange is the input of a change-password request.
type PasswordChange struct {
	Current      string
	New          string
	Confirmation string
}

type AuthService struct {
	users     ledger.UserStore
	blacklist ledger.TokenBlacklist
	issuer    *auth.Issuer
	hasher    auth.Hasher
	seed      []string
	now       func() time.Time
}

// NewAuthService wires the identity flow. seed lists the category names
// given to each new profile.
func NewAuthService(users ledger.UserStore, blacklist ledger.TokenBlacklist, issuer *auth.Issuer, hasher auth.Hasher, seed []string) *AuthService {
	return &AuthService{
		users:     users,
		blacklist: blacklist,
		issuer:    issuer,
		hasher:    hasher,
		seed:      append([]string(nil), seed...),
		now:       time.Now,
	}
}

// Register creates the user, its profile and the seeded categories, then
// issues a token pair.
func (s *AuthService) Register(ctx context.Context, r core.Registration) (core.User, auth.Pair, error) {
	if err := r.Validate(); err != nil {
		return core.User{}, auth.Pair{}, err
	}
	hash, err := s.hasher.Hash(r.Password)
	if err != nil {
		return core.User{}, auth.Pair{}, err
	}

	u, err := s.users.CreateUser(ctx, core.User{
		Username:     strings.TrimSpace(r.Username),
		Email:        strings.TrimSpace(r.Email),
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}, core.DefaultProfileBalance, s.seed)
	if err != nil {
		if errors.Is(err, core.ErrConflict) {
			return core.User{}, auth.Pair{}, core.NewValidationError("username", msgUsernameTaken)
		}
		return core.User{}, auth.Pair{}, fmt.Errorf("register user: %w", err)
	}

	pair, err := s.issuer.Pair(u.ID)
	if err != nil {
		return core.User{}, auth.Pair{}, err
	}
	slog.InfoContext(ctx, "User registered", "user_id", u.ID, "profile_id", u.ProfileID)
	return u, pair, nil
}

// Login checks the credentials and issues a token pair.
func (s *AuthService) Login(ctx context.Context, username, password string) (auth.Pair, error) {
	u, err := s.users.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return auth.Pair{}, ErrInvalidCredentials
		}
		return auth.Pair{}, fmt.Errorf("login: %w", err)
	}
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return auth.Pair{}, ErrInvalidCredentials
		}
		return auth.Pair{}, err
	}
	return s.issuer.Pair(u.ID)
}

// Refresh exchanges a live, unrevoked refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refresh string) (string, error) {
	claims, err := s.liveRefresh(ctx, refresh)
	if err != nil {
		return "", err
	}
	// a deleted account keeps no refresh rights
	if _, err := s.users.UserByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return "", ErrUnauthenticated
		}
		return "", fmt.Errorf("refresh: %w", err)
	}
	return s.issuer.Access(claims.UserID)
}

func (s *AuthService) liveRefresh(ctx context.Context, refresh string) (*auth.Claims, error) {
	claims, err := s.issuer.Parse(refresh, auth.TokenRefresh)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check refresh token: %w", err)
	}
	if revoked {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

// Authenticate resolves an access token to its user.
func (s *AuthService) Authenticate(ctx context.Context, access string) (core.User, error) {
	claims, err := s.issuer.Parse(access, auth.TokenAccess)
	if err != nil {
		return core.User{}, ErrUnauthenticated
	}
	u, err := s.users.UserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.User{}, ErrUnauthenticated
		}
		return core.User{}, fmt.Errorf("authenticate: %w", err)
	}
	return u, nil
}

// Logout revokes one of the caller's refresh tokens. Revoking twice fails.
func (s *AuthService) Logout(ctx context.Context, userID int64, refresh string) error {
	claims, err := s.liveRefresh(ctx, refresh)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			return ErrLogoutFailed
		}
		return err
	}
	if claims.UserID != userID {
		return ErrLogoutFailed
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		if errors.Is(err, core.ErrConflict) {
			return ErrLogoutFailed
		}
		return fmt.Errorf("logout: %w", err)
	}
	slog.InfoContext(ctx, "Refresh token revoked", "user_id", userID)
	return nil
}

// ChangePassword replaces the password and issues a fresh token pair.
// Tokens issued before the change stay valid until they expire.
func (s *AuthService) ChangePassword(ctx context.Context, u core.User, pc PasswordChange) (auth.Pair, error) {
	verr := &core.ValidationError{}
	if pc.Current == "" {
		verr.Add("current_password", core.MsgRequired)
	}
	if pc.New == "" {
		verr.Add("new_password", core.MsgRequired)
	}
	if pc.Confirmation == "" {
		verr.Add("new_password2", core.MsgRequired)
	}
	if err := verr.OrNil(); err != nil {
		return auth.Pair{}, err
	}
	if pc.New != pc.Confirmation {
		return auth.Pair{}, core.NewValidationError(core.NonFieldErrorsField, "New passwords do not match.")
	}
	for _, msg := range core.ValidatePassword(pc.New, u.Username) {
		verr.Add("new_password", msg)
	}
	if err := verr.OrNil(); err != nil {
		return auth.Pair{}, err
	}

	if err := s.hasher.Compare(u.PasswordHash, pc.Current); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return auth.Pair{}, core.NewValidationError("current_password", "Wrong password.")
		}
		return auth.Pair{}, err
	}
	hash, err := s.hasher.Hash(pc.New)
	if err != nil {
		return auth.Pair{}, err
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return auth.Pair{}, fmt.Errorf("change password: %w", err)
	}
	slog.InfoContext(ctx, "Password changed", "user_id", u.ID)
	return s.issuer.Pair(u.ID)
}
