package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/franckludovic/travelbuddy/internal/client/models"
	"github.com/franckludovic/travelbuddy/internal/client/repositories/users"
	"github.com/franckludovic/travelbuddy/internal/common"
	"github.com/franckludovic/travelbuddy/internal/cryptox"
	"github.com/franckludovic/travelbuddy/internal/dbx"
	"github.com/franckludovic/travelbuddy/internal/logging"
)

// AuthService defines account operations for the CLI.
//
// Contract:
//   - SignUpOffline: create a local account with a hashed password.
//   - LoginOffline: verify a local password and open an offline session.
//   - LoginWithToken: adopt a bearer token issued by the backend for the
//     given account, creating the local user row on first use, and sync
//     right away when online.
//   - Logout: forget the current user and token.
type AuthService interface {
	SignUpOffline(ctx context.Context, fullName, email string, password []byte) (*models.User, error)
	LoginOffline(ctx context.Context, email string, password []byte) (*models.User, error)
	LoginWithToken(ctx context.Context, account models.User, token string) (*models.User, error)
	Logout()
}

type authService struct {
	users   *users.SQLiteRepository
	session *Session
	logger  logging.Logger
}

// NewAuthService constructs an AuthService over the local users table.
func NewAuthService(db dbx.DBTX, session *Session, logger logging.Logger) AuthService {
	return &authService{users: users.NewSQLiteRepository(db), session: session, logger: logger}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (a *authService) SignUpOffline(ctx context.Context, fullName, email string, password []byte) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || len(password) == 0 {
		return nil, common.ErrInvalidCredentials
	}

	u := &models.User{
		FullName:     strings.TrimSpace(fullName),
		Email:        email,
		PasswordHash: cryptox.HashPassword(password),
	}
	if _, err := a.users.Create(ctx, u); err != nil {
		return nil, err
	}
	if err := a.openOffline(u); err != nil {
		return nil, err
	}
	a.logger.Info(ctx, "offline account created", "user_id", u.ID)
	return u, nil
}

// LoginOffline returns common.ErrInvalidCredentials for an unknown email, an
// account without a local password, or a wrong password.
func (a *authService) LoginOffline(ctx context.Context, email string, password []byte) (*models.User, error) {
	u, err := a.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil || u.PasswordHash == "" {
		return nil, common.ErrInvalidCredentials
	}

	ok, err := cryptox.VerifyPassword(u.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}
	if err := a.openOffline(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (a *authService) openOffline(u *models.User) error {
	pseudo, err := common.MakeRandHexString(16)
	if err != nil {
		return err
	}
	a.session.SetCredentials(u, offlineTokenPrefix+pseudo)
	return nil
}

func (a *authService) LoginWithToken(ctx context.Context, account models.User, token string) (*models.User, error) {
	if token == "" {
		return nil, common.ErrNotAuthenticated
	}
	email := normalizeEmail(account.Email)
	if email == "" {
		return nil, errors.New("account email is required")
	}

	u, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		account.Email = email
		account.ID = 0
		if _, err := a.users.Create(ctx, &account); err != nil {
			return nil, err
		}
		u = &account
	} else if account.FirebaseUID != "" && account.FirebaseUID != u.FirebaseUID {
		if err := a.users.Update(ctx, u.ID, models.UserPatch{FirebaseUID: &account.FirebaseUID}); err != nil {
			return nil, err
		}
		u.FirebaseUID = account.FirebaseUID
	}

	a.session.SetCredentials(u, token)

	if a.session.IsOnline() {
		if _, err := a.session.TriggerSync(ctx); err != nil {
			a.logger.Warn(ctx, "sync after login failed", "error", err)
		}
	}
	return u, nil
}

func (a *authService) Logout() {
	a.session.Logout()
}
