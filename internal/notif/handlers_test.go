package notif

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"skillnest/internal/common"
)

const handlerUser = "64b7f0c2a1b2c3d4e5f60718"

type MockNotificationServiceForHandler struct {
	mock.Mock
}

func (m *MockNotificationServiceForHandler) GetUserNotifications(ctx context.Context, userID string) ([]*common.NotificationResponse, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.([]*common.NotificationResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockNotificationServiceForHandler) UnreadCount(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationServiceForHandler) MarkAsRead(ctx context.Context, notificationID uint64, userID string) (*common.NotificationResponse, error) {
	args := m.Called(ctx, notificationID, userID)
	if v := args.Get(0); v != nil {
		return v.(*common.NotificationResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockNotificationServiceForHandler) MarkManyAsRead(ctx context.Context, ids []uint64, userID string) (int64, error) {
	args := m.Called(ctx, ids, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationServiceForHandler) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func newTestRouter(svc NotificationServiceInterface, authed bool) *mux.Router {
	r := mux.NewRouter()
	if authed {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				ctx := common.WithIdentity(req.Context(), &common.Identity{UserID: handlerUser})
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		})
	}
	NewNotificationHandler(svc, discard).RegisterRoutes(r)
	return r
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestNotificationHandler_Unauthorized(t *testing.T) {
	svc := &MockNotificationServiceForHandler{}
	r := newTestRouter(svc, false)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/notifications"},
		{http.MethodGet, "/notifications/unread-count"},
		{http.MethodPut, "/notifications/3/read"},
		{http.MethodPost, "/notifications/mark-read"},
		{http.MethodPut, "/notifications/read-all"},
	} {
		rec := serve(r, tc.method, tc.path, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
	}
	svc.AssertNotCalled(t, "GetUserNotifications", mock.Anything, mock.Anything)
}

func TestNotificationHandler_List(t *testing.T) {
	svc := &MockNotificationServiceForHandler{}
	svc.On("GetUserNotifications", mock.Anything, handlerUser).Return([]*common.NotificationResponse{
		{ID: 1, Type: "message", Message: "New message from alice"},
	}, nil)

	rec := serve(newTestRouter(svc, true), http.MethodGet, "/notifications", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var got []common.NotificationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "New message from alice", got[0].Message)
}

func TestNotificationHandler_UnreadCount(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		svc := &MockNotificationServiceForHandler{}
		svc.On("UnreadCount", mock.Anything, handlerUser).Return(int64(3), nil)

		rec := serve(newTestRouter(svc, true), http.MethodGet, "/notifications/unread-count", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(3), decode(t, rec)["unread"])
	})

	t.Run("error reports zero", func(t *testing.T) {
		svc := &MockNotificationServiceForHandler{}
		svc.On("UnreadCount", mock.Anything, handlerUser).Return(int64(0), errors.New("db down"))

		rec := serve(newTestRouter(svc, true), http.MethodGet, "/notifications/unread-count", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, float64(0), decode(t, rec)["unread"])
	})
}

func TestNotificationHandler_MarkOne(t *testing.T) {
	tests := []struct {
		name     string
		result   *common.NotificationResponse
		err      error
		expected int
	}{
		{"marked", &common.NotificationResponse{ID: 3, Read: true}, nil, http.StatusOK},
		{"not found", nil, common.ErrNotFound, http.StatusNotFound},
		{"store error", nil, errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockNotificationServiceForHandler{}
			svc.On("MarkAsRead", mock.Anything, uint64(3), handlerUser).Return(tt.result, tt.err)

			rec := serve(newTestRouter(svc, true), http.MethodPut, "/notifications/3/read", "")
			assert.Equal(t, tt.expected, rec.Code)
			assert.Equal(t, tt.err == nil, decode(t, rec)["success"])
		})
	}
}

func TestNotificationHandler_MarkMany(t *testing.T) {
	t.Run("bulk", func(t *testing.T) {
		svc := &MockNotificationServiceForHandler{}
		svc.On("MarkManyAsRead", mock.Anything, []uint64{1, 2}, handlerUser).Return(int64(2), nil)

		rec := serve(newTestRouter(svc, true), http.MethodPost, "/notifications/mark-read", `{"ids":[1,2]}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, decode(t, rec)["ok"])
		svc.AssertExpectations(t)
	})

	t.Run("empty ids skip the store", func(t *testing.T) {
		svc := &MockNotificationServiceForHandler{}

		rec := serve(newTestRouter(svc, true), http.MethodPost, "/notifications/mark-read", `{"ids":[]}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertNotCalled(t, "MarkManyAsRead", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("bad body", func(t *testing.T) {
		svc := &MockNotificationServiceForHandler{}

		rec := serve(newTestRouter(svc, true), http.MethodPost, "/notifications/mark-read", `{"ids":"x"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestNotificationHandler_MarkAll(t *testing.T) {
	svc := &MockNotificationServiceForHandler{}
	svc.On("MarkAllAsRead", mock.Anything, handlerUser).Return(int64(5), nil)

	rec := serve(newTestRouter(svc, true), http.MethodPut, "/notifications/read-all", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["success"])
}
