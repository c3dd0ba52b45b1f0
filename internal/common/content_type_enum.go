package common

import "strings"

// AttachmentType is the coarse kind of a chat attachment.
type AttachmentType string

const (
	AttachmentTypeImage    AttachmentType = "image"
	AttachmentTypeDocument AttachmentType = "document"
)

var allowedAttachmentMimeTypes = map[string]AttachmentType{
	"image/png":       AttachmentTypeImage,
	"image/jpeg":      AttachmentTypeImage,
	"image/jpg":       AttachmentTypeImage,
	"image/gif":       AttachmentTypeImage,
	"application/pdf": AttachmentTypeDocument,
}

// String returns the string representation
func (at AttachmentType) String() string {
	return string(at)
}

// IsValid checks if the attachment type is valid
func (at AttachmentType) IsValid() bool {
	return at == AttachmentTypeImage || at == AttachmentTypeDocument
}

// DetectAttachmentType returns the attachment kind for an allowed mime type.
// Parameters after ';' are ignored and the match is case insensitive.
func DetectAttachmentType(mimeType string) (AttachmentType, error) {
	base := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(base, ';'); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}
	kind, ok := allowedAttachmentMimeTypes[base]
	if !ok {
		return "", ErrUnsupportedAttachment
	}
	return kind, nil
}
