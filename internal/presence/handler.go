package presence

import (
	"net/http"

	"github.com/gorilla/mux"

	"skillnest/internal/common"
)

type Handler struct {
	tracker *Tracker
}

func NewHandler(tracker *Tracker) *Handler {
	return &Handler{tracker: tracker}
}

// RegisterRoutes mounts the presence API on an authenticated router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/presence", h.listOnline).Methods(http.MethodGet)
	r.HandleFunc("/presence/{userID}", h.userStatus).Methods(http.MethodGet)
}

func (h *Handler) listOnline(w http.ResponseWriter, r *http.Request) {
	online := h.tracker.Online()
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"online":  online,
		"count":   len(online),
	})
}

func (h *Handler) userStatus(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"userId":      userID,
		"online":      h.tracker.IsOnline(userID),
		"connections": h.tracker.Count(userID),
	})
}
