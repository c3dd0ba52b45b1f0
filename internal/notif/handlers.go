package notif

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"skillnest/internal/common"
)

type NotificationServiceInterface interface {
	GetUserNotifications(ctx context.Context, userID string) ([]*common.NotificationResponse, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkAsRead(ctx context.Context, notificationID uint64, userID string) (*common.NotificationResponse, error)
	MarkManyAsRead(ctx context.Context, ids []uint64, userID string) (int64, error)
	MarkAllAsRead(ctx context.Context, userID string) (int64, error)
}

// NotificationHandler serves a user's in-app inbox.
type NotificationHandler struct {
	service NotificationServiceInterface
	log     *slog.Logger
}

func NewNotificationHandler(service NotificationServiceInterface, log *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		log:     log.With("component", "notification_http"),
	}
}

type markReadRequest struct {
	IDs []uint64 `json:"ids"`
}

func (h *NotificationHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/notifications", h.list).Methods(http.MethodGet)
	r.HandleFunc("/notifications/unread-count", h.unreadCount).Methods(http.MethodGet)
	r.HandleFunc("/notifications/mark-read", h.markMany).Methods(http.MethodPost)
	r.HandleFunc("/notifications/read-all", h.markAll).Methods(http.MethodPut)
	r.HandleFunc("/notifications/{id:[0-9]+}/read", h.markOne).Methods(http.MethodPut)
}

func (h *NotificationHandler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	notifications, err := h.service.GetUserNotifications(r.Context(), userID)
	if err != nil {
		h.fail(w, "Failed to get notifications", err)
		return
	}
	common.WriteJSON(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) unreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	count, err := h.service.UnreadCount(r.Context(), userID)
	if err != nil {
		h.log.Error("unread count failed", "user_id", userID, "error", err)
		common.WriteJSON(w, http.StatusInternalServerError, map[string]interface{}{"unread": 0})
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{"unread": count})
}

func (h *NotificationHandler) markOne(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		common.WriteJSON(w, http.StatusNotFound, failure("Notification not found"))
		return
	}

	notification, err := h.service.MarkAsRead(r.Context(), id, userID)
	if errors.Is(err, common.ErrNotFound) {
		common.WriteJSON(w, http.StatusNotFound, failure("Notification not found"))
		return
	}
	if err != nil {
		h.fail(w, "Failed to mark notification as read", err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true, "notification": notification})
}

func (h *NotificationHandler) markMany(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req markReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteJSON(w, http.StatusBadRequest, failure("Invalid request body"))
		return
	}
	if len(req.IDs) == 0 {
		common.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
		return
	}
	if _, err := h.service.MarkManyAsRead(r.Context(), req.IDs, userID); err != nil {
		h.fail(w, "Failed to mark notifications as read", err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

func (h *NotificationHandler) markAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	if _, err := h.service.MarkAllAsRead(r.Context(), userID); err != nil {
		h.fail(w, "Failed to mark all notifications as read", err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *NotificationHandler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := common.IdentityFromContext(r.Context())
	if !ok {
		common.WriteJSON(w, http.StatusUnauthorized, failure("Unauthorized"))
		return "", false
	}
	return id.UserID, true
}

func (h *NotificationHandler) fail(w http.ResponseWriter, msg string, err error) {
	h.log.Error(msg, "error", err)
	common.WriteJSON(w, http.StatusInternalServerError, failure(msg))
}

func failure(msg string) map[string]interface{} {
	return map[string]interface{}{"success": false, "message": msg}
}
