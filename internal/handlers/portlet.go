package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/bookcatalog/internal/cache"
	"github.com/lehigh-university-libraries/bookcatalog/internal/navigation"
	"github.com/lehigh-university-libraries/bookcatalog/internal/render"
	"github.com/lehigh-university-libraries/bookcatalog/internal/router"
	"github.com/lehigh-university-libraries/bookcatalog/internal/upload"
)

// HandleRender serves render requests. The validation token travels as the
// ETag; a matching If-None-Match is answered with 304 Not Modified.
func (h *Handler) HandleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := h.loadSession(w, r)
	if err != nil {
		h.writeError(w, "Failed to load session: "+err.Error(), http.StatusInternalServerError)
		return
	}

	q := r.URL.Query()
	token := etagToken(r.Header.Get("If-None-Match"))
	// The browser keys its ETag by URL, so a 304 would skip the session update
	// a request naming an action or book has to make.
	if q.Has(navigation.ParamMyAction) || q.Has(navigation.ParamISBN) {
		token = ""
	}

	resp, err := h.router.Render(r.Context(), &router.RenderRequest{
		Mode:           q.Get(navigation.ParamMode),
		WindowState:    q.Get(navigation.ParamWindowState),
		Params:         q,
		Token:          token,
		User:           userInfo(r),
		AcceptLanguage: r.Header.Get("Accept-Language"),
	}, session)
	if err != nil {
		h.writeError(w, "Failed to render catalog: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if resp.UseCached {
		w.Header().Set("ETag", quoteETag(resp.Token))
		w.Header().Set("Cache-Control", fmt.Sprintf("private, max-age=%d", int(resp.Expiration.Seconds())))
		w.WriteHeader(http.StatusNotModified)
		return
	}

	h.saveSession(r.Context(), session)

	if resp.Token != "" {
		w.Header().Set("ETag", quoteETag(resp.Token))
		w.Header().Set("Cache-Control", "private, no-cache")
	} else {
		w.Header().Set("Cache-Control", "no-store")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if r.Method == http.MethodHead {
		return
	}
	if err := render.Page(resp.Context, h.renderOptions).Render(r.Context(), w); err != nil {
		slog.Error("Failed to write catalog markup", "err", err)
	}
}

// HandleAction serves action requests and redirects to the render request
// that shows their outcome.
func (h *Handler) HandleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := h.loadSession(w, r)
	if err != nil {
		h.writeError(w, "Failed to load session: "+err.Error(), http.StatusInternalServerError)
		return
	}

	req := &router.ActionRequest{
		Name:           r.URL.Query().Get(navigation.ParamActionName),
		AcceptLanguage: r.Header.Get("Accept-Language"),
	}

	if h.maxRequestBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestBytes)
	}
	mr, err := r.MultipartReader()
	switch {
	case err == nil:
		req.Form = r.URL.Query()
		req.Upload = upload.FromMultipart(mr)
	case errors.Is(err, http.ErrNotMultipart):
		if err := r.ParseForm(); err != nil {
			h.writeError(w, "Invalid form: "+err.Error(), http.StatusBadRequest)
			return
		}
		req.Form = r.Form
	default:
		h.writeError(w, "Invalid multipart request: "+err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.router.Process(r.Context(), req, session)
	if errors.Is(err, router.ErrUnknownAction) {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.writeError(w, "Failed to process action: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.saveSession(r.Context(), session)
	http.Redirect(w, r, h.basePath+"?"+resp.RenderParams().Encode(), http.StatusSeeOther)
}

// etagToken extracts the first entity tag of an If-None-Match header.
func etagToken(header string) cache.Token {
	tag := strings.TrimSpace(strings.Split(header, ",")[0])
	tag = strings.TrimPrefix(tag, "W/")
	return cache.Token(strings.Trim(tag, `"`))
}

func quoteETag(t cache.Token) string {
	return `"` + string(t) + `"`
}
