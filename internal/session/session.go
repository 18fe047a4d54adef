package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Joseda-hg/lazytareas/internal/db"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const tokenKey = "token"

// Backend persists the token. *db.Store satisfies it.
type Backend interface {
	GetSetting(ctx context.Context, key string) (db.Setting, error)
	PutSetting(ctx context.Context, key, value string) (db.Setting, error)
	ClearSetting(ctx context.Context, key string) (db.Setting, error)
}

type Reason int

const (
	ReasonLogin Reason = iota
	ReasonLogout
	ReasonExpired
	ReasonExternal
)

func (r Reason) String() string {
	switch r {
	case ReasonLogin:
		return "login"
	case ReasonLogout:
		return "logout"
	case ReasonExpired:
		return "expired"
	default:
		return "external"
	}
}

type Event struct {
	Authenticated bool
	Reason        Reason
}

type Listener func(Event)

// Store is the process-wide holder of the credential token. Readers always
// go through it since another process may change the token at any time.
type Store struct {
	backend Backend
	logger  *zap.Logger

	mu        sync.RWMutex
	token     string
	version   int64
	listeners map[int]Listener
	nextID    int
}

func New(backend Backend, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		backend:   backend,
		logger:    logger,
		listeners: make(map[int]Listener),
	}
}

// Restore loads the persisted token.
func (s *Store) Restore(ctx context.Context) error {
	setting, err := s.backend.GetSetting(ctx, tokenKey)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.token = setting.Value
	s.version = setting.Version
	s.mu.Unlock()
	return nil
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) Authenticated() bool {
	return s.Token() != ""
}

func (s *Store) Login(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	setting, err := s.backend.PutSetting(ctx, tokenKey, token)
	if err != nil {
		return err
	}
	s.set(setting)
	s.logger.Info("session started")
	s.broadcast(Event{Authenticated: true, Reason: ReasonLogin})
	return nil
}

func (s *Store) Logout(ctx context.Context) error {
	return s.clear(ctx, ReasonLogout)
}

// Expire tears the session down after the server rejected the token.
func (s *Store) Expire(ctx context.Context) error {
	return s.clear(ctx, ReasonExpired)
}

func (s *Store) clear(ctx context.Context, reason Reason) error {
	setting, err := s.backend.ClearSetting(ctx, tokenKey)
	if err != nil {
		// The in-memory token still goes away so no further request carries it.
		s.mu.Lock()
		s.token = ""
		s.mu.Unlock()
		s.broadcast(Event{Authenticated: false, Reason: reason})
		return err
	}
	s.set(setting)
	s.logger.Info("session ended", zap.Stringer("reason", reason))
	s.broadcast(Event{Authenticated: false, Reason: reason})
	return nil
}

func (s *Store) set(setting db.Setting) {
	s.mu.Lock()
	s.token = setting.Value
	s.version = setting.Version
	s.mu.Unlock()
}

// Subscribe registers fn for session changes and returns its cancel func.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) broadcast(event Event) {
	s.mu.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(event)
	}
}

// Sync picks up a change written by another process. It reports whether the
// token changed.
func (s *Store) Sync(ctx context.Context) (bool, error) {
	setting, err := s.backend.GetSetting(ctx, tokenKey)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	if setting.Version == s.version {
		s.mu.Unlock()
		return false, nil
	}
	changed := setting.Value != s.token
	s.token = setting.Value
	s.version = setting.Version
	s.mu.Unlock()

	if changed {
		s.logger.Info("session changed externally", zap.Bool("authenticated", setting.Value != ""))
		s.broadcast(Event{Authenticated: setting.Value != "", Reason: ReasonExternal})
	}
	return changed, nil
}

// Watch polls the backend until ctx is done.
func (s *Store) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sync(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("session sync failed", zap.Error(err))
			}
		}
	}
}

type Claims struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// Claims decodes the token payload without verifying it. The signature is
// the server's business; the client only reads display fields.
func (s *Store) Claims() (Claims, bool) {
	token := s.Token()
	if token == "" {
		return Claims{}, false
	}

	mapClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mapClaims); err != nil {
		return Claims{}, false
	}

	var claims Claims
	if sub, err := mapClaims.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if email, ok := mapClaims["email"].(string); ok {
		claims.Email = email
	} else {
		claims.Email = claims.Subject
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, true
}
