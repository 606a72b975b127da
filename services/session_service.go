package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"ticketfront/internal/api"
	"ticketfront/internal/status"
	"ticketfront/models"
	"ticketfront/utils"
)

// SessionStatus is the session's lifecycle state. The user is present
// iff the status is authenticated.
type SessionStatus int

const (
	StatusUnauthenticated SessionStatus = iota
	StatusLoading
	StatusAuthenticated
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// SessionService owns the bearer token and the authenticated user.
// Every token mutation is mirrored to the durable store before the
// in-memory state changes, so a crash never leaves them divergent.
type SessionService struct {
	api   *api.Client
	store utils.TokenStore

	mu     sync.Mutex
	token  string
	user   *models.User
	status SessionStatus
}

func NewSessionService(cfg *api.Config, store utils.TokenStore) *SessionService {
	s := &SessionService{store: store}
	s.api = api.NewClient(cfg, s.Token)

	if token, err := store.Load(); err == nil {
		s.token = token
	} else {
		slog.Warn("session: token store unreadable, starting unauthenticated", "error", err)
	}

	return s
}

// Client exposes the shared transport so the catalog, inventory and
// resale services reuse the same connection pool and token source.
func (s *SessionService) Client() *api.Client { return s.api }

// Token returns the current bearer token, or "" when logged out.
func (s *SessionService) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *SessionService) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *SessionService) Authenticated() bool {
	return s.Status() == StatusAuthenticated
}

// CurrentUser returns a copy of the authenticated user, or nil.
func (s *SessionService) CurrentUser() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

type authReply struct {
	Message     string      `json:"message"`
	User        models.User `json:"user"`
	AccessToken string      `json:"access_token"`
}

// Login authenticates against the backend and persists the token.
func (s *SessionService) Login(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, status.Invalid("credentials", "email and password are required")
	}

	body := map[string]string{"email": email, "password": password}
	var reply authReply
	if err := s.api.Post(ctx, "/auth/login", body, &reply); err != nil {
		return nil, fmt.Errorf("Login: %w", err)
	}

	s.setSession(reply.AccessToken, &reply.User)
	slog.Info("session: logged in", "user", reply.User.Username)
	return s.CurrentUser(), nil
}

// Register creates an account. The backend's own rules are checked
// locally first so obviously bad input never leaves the client.
func (s *SessionService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if len(username) < 3 {
		return nil, status.Invalid("username", "must be at least 3 characters long")
	}
	if !emailPattern.MatchString(email) {
		return nil, status.Invalid("email", "invalid email format")
	}
	if len(password) < 6 {
		return nil, status.Invalid("password", "must be at least 6 characters long")
	}

	body := map[string]string{"username": username, "email": email, "password": password}
	var reply authReply
	if err := s.api.Post(ctx, "/auth/register", body, &reply); err != nil {
		return nil, fmt.Errorf("Register: %w", err)
	}

	s.setSession(reply.AccessToken, &reply.User)
	slog.Info("session: registered", "user", reply.User.Username)
	return s.CurrentUser(), nil
}

// Logout clears the token and user everywhere. Idempotent, no network.
func (s *SessionService) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(); err != nil {
		slog.Warn("session: clearing persisted token", "error", err)
	}
	s.token = ""
	s.user = nil
	s.status = StatusUnauthenticated
}

// Restore resolves a persisted token into an authenticated session by
// fetching the profile. Exactly one terminal outcome per call: either
// authenticated, or the token is dropped and the session is
// unauthenticated. With no persisted token it resolves immediately
// without a network call.
func (s *SessionService) Restore(ctx context.Context) error {
	s.mu.Lock()
	if s.token == "" {
		s.user = nil
		s.status = StatusUnauthenticated
		s.mu.Unlock()
		return nil
	}
	s.status = StatusLoading
	s.mu.Unlock()

	var user models.User
	if err := s.api.Get(ctx, "/auth/profile", nil, &user); err != nil {
		// Expired or invalid token; drop it and settle unauthenticated.
		s.Logout()
		return fmt.Errorf("Restore: %w", err)
	}

	s.mu.Lock()
	s.user = &user
	s.status = StatusAuthenticated
	s.mu.Unlock()
	return nil
}

// ProfileUpdate carries the fields a user may change. Nil fields are
// left untouched.
type ProfileUpdate struct {
	Username       *string `json:"username,omitempty"`
	Password       *string `json:"password,omitempty"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
}

// UpdateProfile PUTs the changed fields. On failure the prior user is
// left unchanged.
func (s *SessionService) UpdateProfile(ctx context.Context, update ProfileUpdate) (*models.User, error) {
	if !s.Authenticated() {
		return nil, status.ErrUnauthenticated
	}
	if update.Username != nil && len(*update.Username) < 3 {
		return nil, status.Invalid("username", "must be at least 3 characters long")
	}
	if update.Password != nil && len(*update.Password) < 6 {
		return nil, status.Invalid("password", "must be at least 6 characters long")
	}

	var reply struct {
		Message string      `json:"message"`
		User    models.User `json:"user"`
	}
	if err := s.api.Put(ctx, "/auth/profile", update, &reply); err != nil {
		return nil, fmt.Errorf("UpdateProfile: %w", err)
	}

	s.mu.Lock()
	s.user = &reply.User
	s.mu.Unlock()
	return s.CurrentUser(), nil
}

// setSession commits a new token/user pair, persisting the token first.
func (s *SessionService) setSession(token string, user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Save(token); err != nil {
		slog.Warn("session: persisting token", "error", err)
	}
	s.token = token
	s.user = user
	s.status = StatusAuthenticated
}
