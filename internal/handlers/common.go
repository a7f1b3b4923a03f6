package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/bookcatalog/internal/models"
	"github.com/lehigh-university-libraries/bookcatalog/internal/modes"
	"github.com/lehigh-university-libraries/bookcatalog/internal/render"
	"github.com/lehigh-university-libraries/bookcatalog/internal/router"
	"github.com/lehigh-university-libraries/bookcatalog/internal/storage"
)

const (
	SessionCookie   = "BOOKCATALOG_SESSION"
	DefaultBasePath = "/portlet"

	// Headers a fronting portal or proxy uses to pass the caller identity.
	HeaderGivenName  = "X-User-Given-Name"
	HeaderFamilyName = "X-User-Family-Name"
)

type Handler struct {
	router          *router.Router
	sessionStore    storage.Store
	renderOptions   render.Options
	basePath        string
	uploadFolder    string
	staticDir       string
	maxRequestBytes int64
}

// Options wires the HTTP layer to the router and session store.
type Options struct {
	Router          *router.Router
	Sessions        storage.Store
	Render          render.Options
	BasePath        string
	UploadFolder    string
	StaticDir       string
	MaxRequestBytes int64
}

func New(opts Options) *Handler {
	h := &Handler{
		router:          opts.Router,
		sessionStore:    opts.Sessions,
		renderOptions:   opts.Render,
		basePath:        opts.BasePath,
		uploadFolder:    opts.UploadFolder,
		staticDir:       opts.StaticDir,
		maxRequestBytes: opts.MaxRequestBytes,
	}
	if h.sessionStore == nil {
		h.sessionStore = storage.New()
	}
	if h.basePath == "" {
		h.basePath = DefaultBasePath
	}
	if h.staticDir == "" {
		h.staticDir = "static"
	}
	return h
}

// Routes registers every catalog endpoint on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc(h.basePath, h.HandleRender)
	mux.HandleFunc(h.basePath+"/action", h.HandleAction)
	mux.HandleFunc("/api/session", h.HandleSession)
	mux.HandleFunc("/toc/", h.HandleToc)
	mux.HandleFunc("/static/", h.HandleStatic)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, h.basePath, http.StatusFound)
	})
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// Session helpers

// loadSession returns the caller's session, starting a new one when the
// cookie is missing or the session expired.
func (h *Handler) loadSession(w http.ResponseWriter, r *http.Request) (*models.Session, error) {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		session, err := h.sessionStore.Get(r.Context(), c.Value)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}

	session := &models.Session{ID: uuid.NewString(), Action: modes.DefaultActionState}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	slog.Debug("Started session", "session_id", session.ID)
	return session, nil
}

func (h *Handler) saveSession(ctx context.Context, session *models.Session) {
	if err := h.sessionStore.Set(ctx, session); err != nil {
		slog.Error("Failed to save session", "session_id", session.ID, "err", err)
	}
}

func userInfo(r *http.Request) *models.UserInfo {
	given := r.Header.Get(HeaderGivenName)
	family := r.Header.Get(HeaderFamilyName)
	if given == "" && family == "" {
		return nil
	}
	return &models.UserInfo{GivenName: given, FamilyName: family}
}
