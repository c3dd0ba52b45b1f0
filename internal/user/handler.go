package user

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"skillnest/internal/common"
)

// OnlineChecker reports live presence for a user id.
type OnlineChecker interface {
	IsOnline(userID string) bool
}

// Handler exposes the read-only profile lookups the chat UI needs to label
// participants.
type Handler struct {
	users    UserRepository
	presence OnlineChecker
	log      *slog.Logger
}

func NewHandler(users UserRepository, presence OnlineChecker, log *slog.Logger) *Handler {
	return &Handler{users: users, presence: presence, log: log.With("component", "user_http")}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/users/me", h.me).Methods(http.MethodGet)
	r.HandleFunc("/users/{userID}", h.profile).Methods(http.MethodGet)
}

type profileResponse struct {
	Success bool  `json:"success"`
	User    *User `json:"user"`
	Online  bool  `json:"online"`
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	id, ok := common.IdentityFromContext(r.Context())
	if !ok {
		common.WriteJSON(w, http.StatusUnauthorized, errorBody("Unauthorized"))
		return
	}
	h.writeProfile(w, r, id.UserID)
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	h.writeProfile(w, r, mux.Vars(r)["userID"])
}

func (h *Handler) writeProfile(w http.ResponseWriter, r *http.Request, userID string) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		common.WriteJSON(w, http.StatusBadRequest, errorBody(common.ErrInvalidUser.Error()))
		return
	}

	u, err := h.users.GetUserByID(r.Context(), oid)
	if errors.Is(err, common.ErrNotFound) {
		common.WriteJSON(w, http.StatusNotFound, errorBody("User not found"))
		return
	}
	if err != nil {
		h.log.Error("failed to load user", "user_id", userID, "error", err)
		common.WriteJSON(w, http.StatusInternalServerError, errorBody("Failed to fetch user"))
		return
	}

	common.WriteJSON(w, http.StatusOK, profileResponse{
		Success: true,
		User:    u,
		Online:  h.presence.IsOnline(userID),
	})
}

func errorBody(msg string) map[string]interface{} {
	return map[string]interface{}{"success": false, "message": msg}
}
