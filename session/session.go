// Package session holds per-browser-session state: the anti-forgery state
// token for the OAuth handshake, the authenticated identity, and transient
// flash notices. Sessions live in memory behind a cookie.
package session

import (
	"crypto/rand"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CookieName is the name of the session cookie.
const CookieName = "plantcatalog-session"

// stateAlphabet matches the original token format: 32 characters from
// uppercase letters and digits, about 166 bits.
const (
	stateAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	stateLength   = 32
)

// Identity is the authenticated principal of a session: the provider
// credential plus the resolved local user. The zero value is anonymous.
type Identity struct {
	// AccessToken and Subject are the provider credential of the current
	// login, empty while anonymous.
	AccessToken string
	Subject     string

	// UserID is the resolved local user, 0 while anonymous.
	UserID  uint
	Name    string
	Email   string
	Picture string
}

// Session is the state attached to one browser session. It starts anonymous,
// becomes authenticated when the authorization flow binds an identity, and
// returns to anonymous on logout.
//
// The same *Session is handed to every in-flight request carrying the cookie,
// so all state lives behind the session's own mutex.
type Session struct {
	mu        sync.Mutex
	state     string
	identity  Identity
	flashes   []string
	expiresAt time.Time
}

// State returns the pending anti-forgery token, empty when none was issued
// or it has already been consumed.
func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetState binds a fresh anti-forgery token to the session.
func (s *Session) SetState(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = token
}

// Identity returns a copy of the bound identity.
func (s *Session) Identity() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// SetIdentity binds the authenticated identity and consumes the anti-forgery
// token, so a replayed callback with the same state token is rejected.
func (s *Session) SetIdentity(id Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = id
	s.state = ""
}

// LoggedIn reports whether a local user is bound to this session.
func (s *Session) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity.UserID != 0
}

// Connected reports whether a provider credential is stored.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity.AccessToken != ""
}

// Flash queues a transient notice for the next rendered page.
func (s *Session) Flash(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flashes = append(s.flashes, msg)
}

// TakeFlashes drains and returns the queued notices.
func (s *Session) TakeFlashes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.flashes
	s.flashes = nil
	return out
}

// ClearIdentity drops the credential and identity, returning the session to
// anonymous. Flashes survive so the logout notice still shows.
func (s *Session) ClearIdentity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = Identity{}
	s.state = ""
}

// Manager maps session cookies to sessions.
type Manager struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get resolves the session for the request, minting a new one (and setting
// the cookie) when the request carries no valid session.
func (m *Manager) Get(w http.ResponseWriter, r *http.Request) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweep()

	if cookie, err := r.Cookie(CookieName); err == nil {
		if s, ok := m.sessions[cookie.Value]; ok {
			s.mu.Lock()
			s.expiresAt = m.now().Add(m.ttl)
			s.mu.Unlock()
			return s
		}
	}

	key := uuid.NewString()
	s := &Session{expiresAt: m.now().Add(m.ttl)}
	m.sessions[key] = s

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    key,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s
}

// sweep drops expired sessions. Callers must hold mu.
func (m *Manager) sweep() {
	now := m.now()
	for key, s := range m.sessions {
		s.mu.Lock()
		expired := now.After(s.expiresAt)
		s.mu.Unlock()
		if expired {
			delete(m.sessions, key)
		}
	}
}

// NewStateToken returns a fresh anti-forgery token.
func NewStateToken() string {
	max := big.NewInt(int64(len(stateAlphabet)))
	b := make([]byte, stateLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform source is broken;
			// nothing sensible to do but give up.
			panic(err)
		}
		b[i] = stateAlphabet[n.Int64()]
	}
	return string(b)
}
