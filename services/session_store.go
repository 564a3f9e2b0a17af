package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/kendall-kelly/techsupport-client/models"
)

// Fallback messages shown when the server gives no detail
const (
	LoginFallbackMessage    = "Erreur de connexion"
	RegisterFallbackMessage = "Erreur d'inscription"
)

// AuthResult is the outcome of a login or register attempt
type AuthResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SessionStore owns the session: token, current user and unread notifications.
// It is constructed once and handed to every component that needs the session.
type SessionStore struct {
	api           *APIClient
	tokens        TokenStore
	notifications *NotificationPoller

	mu      sync.RWMutex
	token   string
	user    *models.User
	loading bool
}

// NewSessionStore creates a store in the loading state. Call Init to resolve it.
func NewSessionStore(api *APIClient, tokens TokenStore, notifications *NotificationPoller) *SessionStore {
	return &SessionStore{
		api:           api,
		tokens:        tokens,
		notifications: notifications,
		loading:       true,
	}
}

// Init restores a persisted session. When a token is found the profile is fetched
// eagerly; a failed fetch means the token is invalid or expired and forces a logout.
func (s *SessionStore) Init(ctx context.Context) error {
	defer s.setLoading(false)

	token, err := s.tokens.Load()
	if err != nil {
		slog.Error("failed to read persisted session token", "error", err)
		return err
	}
	if token == "" {
		return nil
	}

	s.activate(token, nil)

	var user models.User
	if err := s.api.Get(ctx, "/auth/me", nil, &user); err != nil {
		slog.Error("failed to fetch current user", "error", err)
		s.Logout()
		return nil
	}

	s.mu.Lock()
	if s.token == token {
		s.user = &user
	}
	s.mu.Unlock()
	return nil
}

// Login exchanges credentials for a session. A failure changes nothing but the returned message.
func (s *SessionStore) Login(ctx context.Context, email, password string) AuthResult {
	var resp models.AuthResponse
	req := models.LoginRequest{Email: email, Password: password}
	if err := s.api.Post(ctx, "/auth/login", nil, req, &resp); err != nil {
		slog.Warn("login failed", "email", email, "error", err)
		return AuthResult{Success: false, Message: ErrorDetail(err, LoginFallbackMessage)}
	}
	if resp.Token == "" {
		return AuthResult{Success: false, Message: LoginFallbackMessage}
	}

	s.establish(resp)
	return AuthResult{Success: true}
}

// Register creates an account and opens a session for it
func (s *SessionStore) Register(ctx context.Context, profile models.RegisterRequest) AuthResult {
	var resp models.AuthResponse
	if err := s.api.Post(ctx, "/auth/register", nil, profile.Normalize(), &resp); err != nil {
		slog.Warn("registration failed", "email", profile.Email, "error", err)
		return AuthResult{Success: false, Message: ErrorDetail(err, RegisterFallbackMessage)}
	}
	if resp.Token == "" {
		return AuthResult{Success: false, Message: RegisterFallbackMessage}
	}

	s.establish(resp)
	return AuthResult{Success: true}
}

// Logout clears the persisted token, the user, the notifications and the
// authorization header. It never calls the server.
func (s *SessionStore) Logout() {
	if err := s.tokens.Clear(); err != nil {
		slog.Error("failed to clear persisted session token", "error", err)
	}

	s.notifications.Stop()

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	s.notifications.Clear()
	s.api.ClearAuthToken()
}

// establish persists a fresh session returned by login or register
func (s *SessionStore) establish(resp models.AuthResponse) {
	if err := s.tokens.Save(resp.Token); err != nil {
		slog.Error("failed to persist session token", "error", err)
	}
	user := resp.User
	s.activate(resp.Token, &user)
}

// activate installs the token on the request channel and starts the notification poll
func (s *SessionStore) activate(token string, user *models.User) {
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()

	s.api.SetAuthToken(token)
	s.notifications.Start()
}

func (s *SessionStore) setLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

// Token returns the session token, "" when logged out
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the current user, nil when none is resolved
func (s *SessionStore) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

// Loading reports whether Init has not completed yet
func (s *SessionStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// IsAuthenticated reports whether a user is resolved
func (s *SessionStore) IsAuthenticated() bool {
	return s.User() != nil
}

// Notifications returns the unread notifications of the session
func (s *SessionStore) Notifications() []models.Notification {
	return s.notifications.Notifications()
}

// FetchNotifications refreshes the unread notifications now
func (s *SessionStore) FetchNotifications(ctx context.Context) error {
	return s.notifications.FetchNotifications(ctx)
}

// MarkNotificationRead acknowledges a notification and refreshes the list
func (s *SessionStore) MarkNotificationRead(ctx context.Context, id string) error {
	return s.notifications.MarkNotificationRead(ctx, id)
}

// Polling reports whether the notification poll is running
func (s *SessionStore) Polling() bool {
	return s.notifications.Running()
}
