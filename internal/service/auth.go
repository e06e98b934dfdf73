package service

import (
	"time"

	"go.uber.org/zap"

	"go-shop-api/internal/apperr"
	"go-shop-api/internal/domain"
	"go-shop-api/pkg/utils"
)

// LoginInfo is what both register and log-in hand back to the client.
type LoginInfo struct {
	UserEmail        string    `json:"userEmail"`
	SessionID        string    `json:"sessionId"`
	SessionExpiresAt time.Time `json:"sessionExpiresAt"`
}

// Auth owns the session lifecycle: registration, login, logout and token
// validation. Sessions live in the database; expiry is detected lazily by
// ValidateAuth, which also removes the stale row.
type Auth struct {
	users      domain.UserRepository
	sessions   domain.SessionRepository
	sessionTTL time.Duration
	log        *zap.Logger
}

func NewAuth(users domain.UserRepository, sessions domain.SessionRepository, sessionTTL time.Duration, log *zap.Logger) *Auth {
	return &Auth{users: users, sessions: sessions, sessionTTL: sessionTTL, log: log}
}

func (a *Auth) genLoginInfo(u *domain.User) (*LoginInfo, error) {
	s := &domain.Session{
		PublicID:    utils.NewID(),
		ExpiresAt:   time.Now().Add(a.sessionTTL),
		CreatedByID: u.ID,
	}
	if err := a.sessions.Create(s); err != nil {
		return nil, err
	}
	return &LoginInfo{
		UserEmail:        u.Email,
		SessionID:        s.PublicID,
		SessionExpiresAt: s.ExpiresAt,
	}, nil
}

// Register creates the user and immediately opens a session for it.
// 查重和建号是两条语句，不包事务。
func (a *Auth) Register(email, password string) (*LoginInfo, error) {
	taken, err := a.users.EmailTaken(email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.ErrEmailInUse
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{Email: email, Password: hashed}
	if err := a.users.Create(u); err != nil {
		return nil, err
	}

	a.log.Info("user registered", zap.String("email", email))
	return a.genLoginInfo(u)
}

// LogIn issues a fresh session on every successful login; concurrent
// sessions per user are not capped.
func (a *Auth) LogIn(email, password string) (*LoginInfo, error) {
	u, err := a.users.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.ErrUserDoesNotExist
	}
	if !utils.CheckPassword(password, u.Password) {
		return nil, apperr.ErrWrongPassword
	}
	return a.genLoginInfo(u)
}

// LogOut removes the session. A token that is already gone is a silent
// success: the route always runs ValidateAuth first, so the only way to get
// here with a missing row is losing a race against expiry or another logout.
func (a *Auth) LogOut(token string) error {
	return a.sessions.DeleteByPublicID(token)
}

// ValidateAuth checks the token and, when it finds an expired session,
// deletes it on the spot. After that the same token fails with
// tokenDoesNotExist, never tokenExpired twice.
func (a *Auth) ValidateAuth(token string) error {
	s, err := a.sessions.FindByPublicID(token)
	if err != nil {
		return err
	}
	if s == nil {
		return apperr.ErrTokenDoesNotExist
	}
	if s.ExpiresAt.Before(time.Now()) {
		if err := a.sessions.DeleteByPublicID(token); err != nil {
			return err
		}
		return apperr.ErrTokenExpired
	}
	return nil
}
