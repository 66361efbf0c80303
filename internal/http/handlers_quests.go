package httpx

import (
	"net/http"

	"github.com/openquest/questlog/internal/service"
)

// QuestHandlers provides HTTP handlers for quest operations. All routes
// sit behind RequireAuth.
type QuestHandlers struct {
	Svc *service.QuestService
}

// List returns all quests, newest first.
// GET /quests.
func (h *QuestHandlers) List(w http.ResponseWriter, r *http.Request) {
	quests, err := h.Svc.List(r.Context())
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, map[string]any{"quests": quests})
}

// Complete marks a quest completed and applies its reward to the caller.
// POST /quests/{id}/complete.
func (h *QuestHandlers) Complete(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	result, err := h.Svc.Complete(r.Context(), r.PathValue("id"), user.ID)
	if err != nil {
		RenderError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]any{
		"quest": result.Quest,
		"user":  result.User,
	})
}
