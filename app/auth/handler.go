// Package auth serves the login, OAuth callback and disconnect routes.
// Authorization failures answer with their status code directly; they are
// never recovered into a redirect.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/mbelos/plantcatalog/auth"
	apperrors "github.com/mbelos/plantcatalog/errors"
	"github.com/mbelos/plantcatalog/log"
	"github.com/mbelos/plantcatalog/models"
	"github.com/mbelos/plantcatalog/session"
	"github.com/mbelos/plantcatalog/web"
)

// errInvalidState rejects a callback whose state token does not exactly
// match the one issued to this session.
var errInvalidState = apperrors.New("invalid state token", apperrors.Unauthorized())

// errNotConnected rejects a disconnect without a stored credential.
var errNotConnected = apperrors.New("current user is not connected", apperrors.Unauthorized())

// Provider is the slice of the Google client the handler consumes.
type Provider interface {
	Exchange(ctx context.Context, code string) (auth.Credential, error)
	Verify(ctx context.Context, cred auth.Credential) error
	UserInfo(ctx context.Context, accessToken string) (auth.Profile, error)
	Revoke(ctx context.Context, accessToken string) error
	ClientID() string
}

// UserResolver maps a verified identity to the local user, creating it on
// first login.
type UserResolver interface {
	ResolveUser(name, email, picture string) (models.User, error)
}

type Handler struct {
	google   Provider
	users    UserResolver
	sessions *session.Manager
	views    *web.Views
	log      log.Logger
}

func NewHandler(google Provider, users UserResolver, sessions *session.Manager, views *web.Views, logger log.Logger) *Handler {
	return &Handler{
		google:   google,
		users:    users,
		sessions: sessions,
		views:    views,
		log:      logger,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /login", h.login)
	mux.HandleFunc("POST /gconnect", h.gconnect)
	mux.HandleFunc("GET /disconnect", h.disconnect)
}

// login issues a fresh anti-forgery token, binds it to the session and
// renders the login page carrying it.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(w, r)
	state := session.NewStateToken()
	sess.SetState(state)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := h.views.Render(w, "login", web.LoginPage{
		Page: web.Page{
			LoggedIn: sess.LoggedIn(),
			UserName: sess.Identity().Name,
			Flashes:  sess.TakeFlashes(),
		},
		State:    state,
		ClientID: h.google.ClientID(),
	})
	if err != nil {
		h.log.Errorf("rendering login: %v", err)
	}
}

// gconnect handles the server-side callback of the sign-in flow. The state
// token is checked before anything touches the network; the code exchange
// and the three token cross-checks must all pass before any session or
// database mutation happens.
func (h *Handler) gconnect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := h.sessions.Get(w, r)

	state := sess.State()
	if state == "" || r.URL.Query().Get("state") != state {
		h.fail(w, errInvalidState)
		return
	}

	// The body carries only the one-time authorization code.
	code, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 4<<10))
	if err != nil {
		h.fail(w, apperrors.Because(auth.ErrExchangeFailed, err))
		return
	}

	cred, err := h.google.Exchange(ctx, string(code))
	if err != nil {
		h.fail(w, err)
		return
	}

	if err := h.google.Verify(ctx, cred); err != nil {
		h.fail(w, err)
		return
	}

	// Already logged in with the same identity: nothing to redo.
	if id := sess.Identity(); id.AccessToken != "" && id.Subject == cred.Subject {
		writeJSON(w, http.StatusOK, map[string]string{"message": "current user is already connected"})
		return
	}

	profile, err := h.google.UserInfo(ctx, cred.AccessToken)
	if err != nil {
		h.fail(w, apperrors.Because(auth.ErrProviderError, err))
		return
	}

	user, err := h.users.ResolveUser(profile.Name, profile.Email, profile.Picture)
	if err != nil {
		h.log.Errorf("resolving user: %v", err)
		h.fail(w, apperrors.New("failed to resolve user"))
		return
	}

	sess.SetIdentity(session.Identity{
		AccessToken: cred.AccessToken,
		Subject:     cred.Subject,
		UserID:      user.ID,
		Name:        profile.Name,
		Email:       profile.Email,
		Picture:     profile.Picture,
	})
	sess.Flash("You are now logged in as " + profile.Name)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<h1>Welcome, %s!</h1>", template.HTMLEscapeString(profile.Name))
}

// disconnect revokes the stored token at the provider; the session is
// cleared only when the revocation succeeds.
func (h *Handler) disconnect(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(w, r)

	if !sess.Connected() {
		h.fail(w, errNotConnected)
		return
	}

	if err := h.google.Revoke(r.Context(), sess.Identity().AccessToken); err != nil {
		h.fail(w, err)
		return
	}

	sess.ClearIdentity()
	sess.Flash("You have successfully been logged out.")
	http.Redirect(w, r, "/catalog/", http.StatusFound)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	h.log.Errorf("authorization flow: %v", err)
	writeJSON(w, apperrors.CodeOf(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
