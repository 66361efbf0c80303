package httpx

import (
	"net/http"

	"github.com/openquest/questlog/internal/domain/model"
	"github.com/openquest/questlog/internal/service"
)

// ProfileHandlers provides HTTP handlers for the caller's own profile.
type ProfileHandlers struct {
	Svc *service.ProfileService
}

// Get returns the current user's profile.
// GET /profile.
func (h *ProfileHandlers) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	profile, err := h.Svc.Get(r.Context(), user.ID)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, map[string]any{"user": profile})
}

// Update applies profile changes for the current user.
// PUT /profile.
func (h *ProfileHandlers) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req model.UpdateProfileRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	updated, err := h.Svc.Update(r.Context(), user.ID, req)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, map[string]any{"user": updated})
}
