package handlers

import (
	"net/http"
)

// HandleSession returns the caller's session as JSON, or ends it on DELETE.
func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.loadSession(w, r)
	if err != nil {
		h.writeError(w, "Failed to load session: "+err.Error(), http.StatusInternalServerError)
		return
	}

	switch r.Method {
	case "GET":
		h.writeJSON(w, session)
	case "DELETE":
		if err := h.sessionStore.Delete(r.Context(), session.ID); err != nil {
			h.writeError(w, "Failed to delete session: "+err.Error(), http.StatusInternalServerError)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
