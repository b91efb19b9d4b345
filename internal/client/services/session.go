package services

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/franckludovic/travelbuddy/internal/client/models"
	"github.com/franckludovic/travelbuddy/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Syncer is the part of SyncEngine the session drives.
type Syncer interface {
	Run(ctx context.Context, userID int64) (PassResult, error)
	MarkOffline()
}

const offlineTokenPrefix = "offline-"

// Session holds connectivity and credential state for the running client.
//
// A session opened by an offline login carries a pseudo-token: the user is
// logged in locally but the session is not authenticated for sync, and the
// pseudo-token is never handed to the gateway.
type Session struct {
	online atomic.Bool
	syncer Syncer
	now    func() time.Time

	mu    sync.RWMutex
	user  *models.User
	token string
}

func NewSession(syncer Syncer) *Session {
	return &Session{syncer: syncer, now: time.Now}
}

// WithClock replaces the time source used for token expiry.
func (s *Session) WithClock(now func() time.Time) *Session {
	s.now = now
	return s
}

func (s *Session) IsOnline() bool { return s.online.Load() }

// SetOnline records connectivity and reports whether this call moved the
// session from offline to online.
func (s *Session) SetOnline(online bool) (cameOnline bool) {
	prev := s.online.Swap(online)
	return online && !prev
}

// SetCredentials replaces the current user and token.
func (s *Session) SetCredentials(user *models.User, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.token = token
}

// Logout clears the current user and token.
func (s *Session) Logout() {
	s.SetCredentials(nil, "")
}

// User returns the logged-in user or nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// UserID is the local id of the logged-in user, or 0.
func (s *Session) UserID() int64 {
	if u := s.User(); u != nil {
		return u.ID
	}
	return 0
}

func (s *Session) LoggedIn() bool { return s.User() != nil }

// Token is the bearer token for gateway calls. It is empty for offline
// sessions and expired tokens.
func (s *Session) Token() string {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	if !s.usable(token) {
		return ""
	}
	return token
}

// IsAuthenticated reports whether the session holds a usable bearer token.
func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

func (s *Session) usable(token string) bool {
	if token == "" || strings.HasPrefix(token, offlineTokenPrefix) {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		// not a JWT
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return s.now().Before(exp.Time)
}

// TriggerSync runs a sync pass for the current user. It returns
// common.ErrNetworkUnavailable without touching the network while offline and
// common.ErrNotAuthenticated without a usable token. Calls made while a pass
// is in flight share its result.
func (s *Session) TriggerSync(ctx context.Context) (PassResult, error) {
	if !s.IsOnline() {
		s.syncer.MarkOffline()
		return PassResult{}, common.ErrNetworkUnavailable
	}
	if !s.IsAuthenticated() {
		return PassResult{}, common.ErrNotAuthenticated
	}
	return s.syncer.Run(ctx, s.UserID())
}
