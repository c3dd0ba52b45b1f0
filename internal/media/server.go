package media

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"skillnest/internal/chat/models"
	"skillnest/internal/common"
)

// AttachmentReader opens stored chat attachments.
type AttachmentReader interface {
	Download(ctx context.Context, fileID string) (io.ReadCloser, *models.Attachment, error)
}

type HTTPServer struct {
	storage AttachmentReader
	log     *slog.Logger
}

func NewHTTPServer(storage AttachmentReader, log *slog.Logger) *HTTPServer {
	return &HTTPServer{
		storage: storage,
		log:     log.With("component", "media"),
	}
}

// RegisterRoutes mounts GET /media/{fileId}.
func (s *HTTPServer) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/media/{fileId}", s.serveFile).Methods(http.MethodGet, http.MethodHead)
}

func (s *HTTPServer) serveFile(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["fileId"]

	reader, attachment, err := s.storage.Download(r.Context(), fileID)
	if errors.Is(err, common.ErrNotFound) {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("open attachment failed", "file_id", fileID, "error", err)
		http.Error(w, "Failed to read file", http.StatusInternalServerError)
		return
	}
	defer reader.Close()

	contentType := attachment.MimeType
	if contentType == "" {
		contentType = getContentType(attachment.Filename)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(attachment.Size, 10))
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if attachment.Filename != "" {
		w.Header().Set("Content-Disposition", `inline; filename="`+strings.ReplaceAll(attachment.Filename, `"`, "")+`"`)
	}

	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, reader); err != nil {
		s.log.Warn("error streaming file", "file_id", fileID, "error", err)
	}
}

func getContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
