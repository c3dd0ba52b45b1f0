package dbmongo

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"skillnest/internal/common"
)

func TestAttachmentPath(t *testing.T) {
	assert.Equal(t, "/media/507f1f77bcf86cd799439011", AttachmentPath("507f1f77bcf86cd799439011"))
}

func TestAttachmentStorage_RejectsBeforeTouchingGridFS(t *testing.T) {
	storage := &AttachmentStorage{}
	ctx := context.Background()

	_, err := storage.Upload(ctx, "notes.txt", "text/plain", "user123", strings.NewReader("hello"))
	assert.ErrorIs(t, err, common.ErrUnsupportedAttachment)

	_, _, err = storage.Download(ctx, "invalid-objectid")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Contains(t, err.Error(), "invalid file ID")

	err = storage.Delete(ctx, "invalid-objectid")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetStringFromMap(t *testing.T) {
	testMap := bson.M{
		"string_key": "string_value",
		"int_key":    123,
		"bool_key":   true,
		"nil_key":    nil,
	}

	tests := []struct {
		name     string
		input    bson.M
		key      string
		expected string
	}{
		{"valid_string", testMap, "string_key", "string_value"},
		{"non_string_value", testMap, "int_key", ""},
		{"nil_value", testMap, "nil_key", ""},
		{"missing_key", testMap, "missing", ""},
		{"nil_map", nil, "any_key", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, getStringFromMap(tt.input, tt.key))
		})
	}
}
