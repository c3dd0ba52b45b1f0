package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"

	"skillnest/internal/chat/models"
	"skillnest/internal/chat/service"
	"skillnest/internal/common"
	"skillnest/internal/config"
)

// AttachmentStore keeps uploaded chat files.
type AttachmentStore interface {
	Upload(ctx context.Context, filename, mimeType, uploaderID string, content io.Reader) (*models.Attachment, error)
	Delete(ctx context.Context, fileID string) error
}

// HTTPHandler serves the REST side of chat: conversation list, history and
// attachment upload.
type HTTPHandler struct {
	chat    service.ChatService
	router  *Router
	storage AttachmentStore
	cfg     config.ChatConfig
	log     *slog.Logger
}

func NewHTTPHandler(chat service.ChatService, router *Router, storage AttachmentStore, cfg config.ChatConfig, log *slog.Logger) *HTTPHandler {
	return &HTTPHandler{
		chat:    chat,
		router:  router,
		storage: storage,
		cfg:     cfg,
		log:     log.With("component", "chat_http"),
	}
}

// RegisterRoutes mounts the chat API on an authenticated router.
func (h *HTTPHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/chat/conversations", h.conversations).Methods(http.MethodGet)
	r.HandleFunc("/chat/{jobId}/messages", h.messages).Methods(http.MethodGet)
	r.HandleFunc("/chat/{jobId}/upload", h.upload).Methods(http.MethodPost)
}

func (h *HTTPHandler) conversations(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	convos, err := h.chat.Conversations(r.Context(), id.UserID)
	if err != nil {
		h.writeError(w, r, err, "Failed to fetch conversations")
		return
	}
	common.WriteJSON(w, http.StatusOK, convos)
}

func (h *HTTPHandler) messages(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	history, err := h.chat.History(r.Context(), mux.Vars(r)["jobId"], id.UserID)
	if err != nil {
		h.writeError(w, r, err, "Failed to fetch messages")
		return
	}
	common.WriteJSON(w, http.StatusOK, history)
}

func (h *HTTPHandler) upload(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	jobID := mux.Vars(r)["jobId"]

	if err := h.chat.Authorize(r.Context(), jobID, id.UserID); err != nil {
		h.writeError(w, r, err, "Upload failed")
		return
	}

	// Multipart framing needs a little room above the file limit.
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			common.WriteJSON(w, http.StatusRequestEntityTooLarge, errorBody("File too large"))
			return
		}
		common.WriteJSON(w, http.StatusBadRequest, errorBody("Invalid multipart form"))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("attachment")
	if err != nil {
		common.WriteJSON(w, http.StatusBadRequest, errorBody("No file uploaded"))
		return
	}
	defer file.Close()

	if header.Size > h.cfg.MaxUploadBytes {
		common.WriteJSON(w, http.StatusRequestEntityTooLarge, errorBody("File too large"))
		return
	}
	mimeType := header.Header.Get("Content-Type")
	if _, err := common.DetectAttachmentType(mimeType); err != nil {
		h.writeError(w, r, err, "Upload failed")
		return
	}

	attachment, err := h.storage.Upload(r.Context(), filepath.Base(header.Filename), mimeType, id.UserID, file)
	if err != nil {
		h.writeError(w, r, err, "Upload failed")
		return
	}

	delivery, err := h.chat.SendMessage(r.Context(), models.Draft{
		ConversationID: jobID,
		SenderID:       id.UserID,
		Body:           r.FormValue("message"),
		Attachments:    []models.Attachment{*attachment},
	})
	if err != nil {
		// The file is unreachable without its message.
		if derr := h.storage.Delete(context.WithoutCancel(r.Context()), attachment.FileID); derr != nil {
			h.log.Warn("failed to remove orphaned attachment", "file_id", attachment.FileID, "error", derr)
		}
		h.writeError(w, r, err, "Upload failed")
		return
	}
	h.router.PublishMessage(delivery)

	common.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": delivery.View,
	})
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("chat request failed", "path", r.URL.Path, "error", err)
		common.WriteJSON(w, status, errorBody(fallback))
		return
	}
	common.WriteJSON(w, status, errorBody(err.Error()))
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrNotParticipant):
		return http.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrInvalidConversation),
		errors.Is(err, common.ErrInvalidUser),
		errors.Is(err, common.ErrEmptyBody),
		errors.Is(err, common.ErrBodyTooLong),
		errors.Is(err, common.ErrUnsupportedAttachment):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func identity(w http.ResponseWriter, r *http.Request) (*common.Identity, bool) {
	id, ok := common.IdentityFromContext(r.Context())
	if !ok {
		common.WriteJSON(w, http.StatusUnauthorized, errorBody("Unauthorized"))
	}
	return id, ok
}

func errorBody(msg string) map[string]interface{} {
	return map[string]interface{}{"success": false, "message": msg}
}
