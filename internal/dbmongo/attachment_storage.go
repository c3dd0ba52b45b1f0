package dbmongo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"skillnest/internal/chat/models"
	"skillnest/internal/common"
)

// AttachmentStorage keeps chat attachments in GridFS.
type AttachmentStorage struct {
	gridFS *gridfs.Bucket
}

func NewAttachmentStorage(mongoClient *MongoClient) *AttachmentStorage {
	return &AttachmentStorage{
		gridFS: mongoClient.GridFS,
	}
}

// AttachmentPath is where the media server exposes a stored file.
func AttachmentPath(fileID string) string {
	return "/media/" + fileID
}

func (as *AttachmentStorage) Upload(ctx context.Context, filename, mimeType, uploaderID string, content io.Reader) (*models.Attachment, error) {
	kind, err := common.DetectAttachmentType(mimeType)
	if err != nil {
		return nil, err
	}

	metadata := bson.M{
		"kind":        kind.String(),
		"mimetype":    mimeType,
		"uploaded_by": uploaderID,
		"uploaded_at": time.Now().UTC(),
	}

	opts := options.GridFSUpload().SetMetadata(metadata)
	stream, err := as.gridFS.OpenUploadStream(filename, opts)
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}

	size, err := io.Copy(stream, content)
	if err != nil {
		_ = stream.Abort()
		return nil, fmt.Errorf("file copy failed: %w", err)
	}
	if err := stream.Close(); err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}

	fileID := stream.FileID.(primitive.ObjectID).Hex()
	return &models.Attachment{
		FileID:   fileID,
		Filename: filename,
		Path:     AttachmentPath(fileID),
		Size:     size,
		MimeType: mimeType,
	}, nil
}

// Download opens a stored attachment. The caller closes the stream.
func (as *AttachmentStorage) Download(ctx context.Context, fileID string) (io.ReadCloser, *models.Attachment, error) {
	objectID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid file ID: %w", common.ErrNotFound)
	}

	stream, err := as.gridFS.OpenDownloadStream(objectID)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, nil, fmt.Errorf("file %s: %w", fileID, common.ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("download failed: %w", err)
	}

	file := stream.GetFile()
	var metadata bson.M
	if file.Metadata != nil {
		_ = bson.Unmarshal(file.Metadata, &metadata)
	}

	return stream, &models.Attachment{
		FileID:   fileID,
		Filename: file.Name,
		Path:     AttachmentPath(fileID),
		Size:     file.Length,
		MimeType: getStringFromMap(metadata, "mimetype"),
	}, nil
}

func (as *AttachmentStorage) Delete(ctx context.Context, fileID string) error {
	objectID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return fmt.Errorf("invalid file ID: %w", common.ErrNotFound)
	}
	return as.gridFS.Delete(objectID)
}

// Helper function for metadata extraction
func getStringFromMap(m bson.M, key string) string {
	if m == nil {
		return ""
	}
	if val, ok := m[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
