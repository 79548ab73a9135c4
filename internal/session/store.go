// Package session holds the browser session: the signed-in user, the bearer
// token issued by the gateway and its expiry. State is written through to a
// Storage before memory changes, so a reload never observes half a session.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/gateway"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/models"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/notify"
)

const DefaultTTL = time.Hour

var (
	ErrAccountBlocked     = errors.New("account blocked")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrGatewayUnavailable = errors.New("gateway unavailable")
	ErrSignupFailed       = errors.New("signup failed")
	ErrNoSession          = errors.New("no active session")
	ErrAccountDeactivated = errors.New("account deactivated")
)

// AuthGateway is the part of the gateway the store depends on.
type AuthGateway interface {
	Login(ctx context.Context, email, password string) (gateway.AuthResponse, error)
	Signup(ctx context.Context, in gateway.SignupRequest) (gateway.AuthResponse, error)
	Me(ctx context.Context, token string) (models.User, error)
}

type Session struct {
	User      *models.User
	Token     string
	ExpiresAt int64
}

func (s Session) Present() bool {
	return s.User != nil && s.Token != "" && s.ExpiresAt > 0
}

type Credentials struct {
	Email    string
	Password string
}

type LoginResult struct {
	User  models.User
	Token string
}

type SignupForm = gateway.SignupRequest

type SignupResult struct {
	User    *models.User
	Token   string
	Message string
}

type Store struct {
	storage  Storage
	gw       AuthGateway
	notifier notify.Notifier
	log      zerolog.Logger
	ttl      time.Duration
	now      func() time.Time

	mu       sync.RWMutex
	state    Session
	inflight int
	err      string
}

type Option func(*Store)

func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

func WithNotifier(n notify.Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// Open hydrates a store from storage. A partial, unparsable or expired
// record is cleared and the store starts without a session; failing to clear
// it is logged, the record stays unusable either way.
func Open(ctx context.Context, storage Storage, gw AuthGateway, opts ...Option) (*Store, error) {
	s := &Store{
		storage:  storage,
		gw:       gw,
		notifier: notify.Discard,
		log:      zerolog.Nop(),
		ttl:      DefaultTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	values, err := storage.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if len(values) == 0 {
		return s, nil
	}

	state, reason := s.hydrate(values)
	if reason != "" {
		s.log.Debug().Str("reason", reason).Msg("discarding persisted session")
		if err := storage.Clear(ctx); err != nil {
			s.log.Warn().Err(err).Msg("clear discarded session")
		}
		return s, nil
	}
	s.state = state
	return s, nil
}

func (s *Store) hydrate(values map[string]string) (Session, string) {
	rawUser, token, rawExpiry := values[KeyUser], values[KeyToken], values[KeyExpiresAt]
	if rawUser == "" || token == "" || rawExpiry == "" {
		return Session{}, "incomplete"
	}
	expiresAt, err := strconv.ParseInt(rawExpiry, 10, 64)
	if err != nil {
		return Session{}, "bad expiry"
	}
	if s.now().UnixMilli() > expiresAt {
		return Session{}, "expired"
	}
	var user models.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return Session{}, "bad user"
	}
	return Session{User: &user, Token: token, ExpiresAt: expiresAt}, ""
}

func (s *Store) Login(ctx context.Context, c Credentials) (LoginResult, error) {
	s.begin()
	defer s.end()

	resp, err := s.gw.Login(ctx, c.Email, c.Password)
	if err != nil {
		classified := classifyLogin(err)
		s.fail(LoginMessage(classified))
		return LoginResult{}, classified
	}
	if err := s.Establish(ctx, *resp.User, resp.Token); err != nil {
		s.fail("Login failed")
		return LoginResult{}, err
	}
	return LoginResult{User: *resp.User, Token: resp.Token}, nil
}

// Signup registers an account. It never signs the visitor in; callers that
// want that pass the result to Establish.
func (s *Store) Signup(ctx context.Context, form SignupForm) (SignupResult, error) {
	s.begin()
	defer s.end()

	resp, err := s.gw.Signup(ctx, form)
	if err != nil {
		msg := gateway.MessageOf(err, "Sign-up failed")
		s.fail(msg)
		return SignupResult{}, fmt.Errorf("%w: %w", ErrSignupFailed, err)
	}
	return SignupResult{User: resp.User, Token: resp.Token, Message: resp.Message}, nil
}

// Establish persists user and token with a fresh expiry, then adopts them.
func (s *Store) Establish(ctx context.Context, user models.User, token string) error {
	if token == "" {
		return fmt.Errorf("establish session: empty token")
	}
	expiresAt := s.now().Add(s.ttl).UnixMilli()
	values, err := record(user, token, expiresAt)
	if err != nil {
		return err
	}
	if err := s.storage.Save(ctx, values); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	s.state = Session{User: &user, Token: token, ExpiresAt: expiresAt}
	s.mu.Unlock()
	return nil
}

// Logout drops the session from memory and storage. When Clear fails the
// token and expiry are blanked instead, which the next Open treats as an
// incomplete record. The in-memory session is cleared regardless.
func (s *Store) Logout(ctx context.Context) {
	if err := s.storage.Clear(ctx); err != nil {
		s.log.Error().Err(err).Msg("clear session storage")
		if err := s.storage.Save(ctx, map[string]string{KeyToken: "", KeyExpiresAt: ""}); err != nil {
			s.log.Error().Err(err).Msg("invalidate session storage")
		}
	}
	s.mu.Lock()
	s.state = Session{}
	s.mu.Unlock()
}

// Rebind moves the session to next and clears the storage it leaves behind.
// If next cannot be written the store keeps its current storage.
func (s *Store) Rebind(ctx context.Context, next Storage) error {
	snap := s.Snapshot()
	if snap.Present() {
		values, err := record(*snap.User, snap.Token, snap.ExpiresAt)
		if err != nil {
			return err
		}
		if err := next.Save(ctx, values); err != nil {
			return fmt.Errorf("persist session: %w", err)
		}
	}
	prev := s.storage
	s.storage = next
	if err := prev.Clear(ctx); err != nil {
		s.log.Warn().Err(err).Msg("clear previous session storage")
	}
	return nil
}

func record(user models.User, token string, expiresAt int64) (map[string]string, error) {
	rawUser, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}
	return map[string]string{
		KeyUser:      string(rawUser),
		KeyToken:     token,
		KeyExpiresAt: strconv.FormatInt(expiresAt, 10),
	}, nil
}

// FetchCurrentUser refreshes the user from the gateway. A 403 means the
// account was deactivated: the visitor is told and signed out. Any other
// failure keeps the session as is.
func (s *Store) FetchCurrentUser(ctx context.Context) error {
	token := s.Snapshot().Token
	if token == "" {
		return nil
	}

	user, err := s.gw.Me(ctx, token)
	if err != nil {
		if errors.Is(err, gateway.ErrForbidden) {
			notify.Emit(ctx, s.notifier, notify.Notice{
				ID:      "account-deactivated",
				Kind:    notify.KindError,
				Message: gateway.MessageOf(err, "Your account is deactivated."),
			})
			s.Logout(ctx)
			return fmt.Errorf("%w: %w", ErrAccountDeactivated, err)
		}
		s.log.Warn().Err(err).Msg("failed to fetch current user")
		return fmt.Errorf("fetch current user: %w", err)
	}
	return s.ReplaceUser(ctx, user)
}

// ReplaceUser swaps the stored user, leaving token and expiry alone.
func (s *Store) ReplaceUser(ctx context.Context, user models.User) error {
	if !s.Snapshot().Present() {
		return ErrNoSession
	}
	rawUser, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.storage.Save(ctx, map[string]string{KeyUser: string(rawUser)}); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	s.mu.Lock()
	s.state.User = &user
	s.mu.Unlock()
	return nil
}

// EndOnAuthFailure signs out when err is a 401 or 403 from an authenticated
// call and reports whether it did.
func (s *Store) EndOnAuthFailure(ctx context.Context, err error) bool {
	if !gateway.IsSessionEnding(err) {
		return false
	}
	s.log.Info().Int("status", gateway.StatusOf(err)).Msg("session ended by gateway")
	s.Logout(ctx)
	return true
}

func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.state
	if out.User != nil {
		u := *out.User
		out.User = &u
	}
	return out
}

func (s *Store) CurrentUser() (models.User, bool) {
	snap := s.Snapshot()
	if !snap.Present() {
		return models.User{}, false
	}
	return *snap.User, true
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// Err returns the message of the last failed login or signup.
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *Store) begin() {
	s.mu.Lock()
	s.inflight++
	s.err = ""
	s.mu.Unlock()
}

func (s *Store) end() {
	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()
}

func (s *Store) fail(msg string) {
	s.mu.Lock()
	s.err = msg
	s.mu.Unlock()
}

func classifyLogin(err error) error {
	var kind error
	switch {
	case errors.Is(err, gateway.ErrForbidden):
		kind = ErrAccountBlocked
	case errors.Is(err, gateway.ErrNotFound):
		kind = ErrAccountNotFound
	case gateway.StatusOf(err) == 0:
		kind = ErrGatewayUnavailable
	default:
		kind = ErrInvalidCredentials
	}
	return fmt.Errorf("login: %w: %w", kind, err)
}

// LoginMessage returns the user-facing text for a Login error.
func LoginMessage(err error) string {
	switch {
	case errors.Is(err, ErrAccountBlocked):
		return gateway.MessageOf(err, "Your account has been blocked.")
	case errors.Is(err, ErrAccountNotFound):
		return gateway.MessageOf(err, "No account found for this email.")
	case errors.Is(err, ErrGatewayUnavailable):
		return "Unable to reach the server. Please try again."
	default:
		return gateway.MessageOf(err, "Invalid email or password.")
	}
}
