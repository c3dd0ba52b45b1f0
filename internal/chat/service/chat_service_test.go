package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"

	"skillnest/internal/chat/models"
	"skillnest/internal/chat/service/mocks"
	"skillnest/internal/common"
	"skillnest/internal/config"
)

type fixture struct {
	svc      *chatService
	chats    *mocks.MockChatRepository
	jobs     *mocks.MockJobRepository
	users    *mocks.MockUserDirectory
	notifier *mocks.MockMessageNotifier
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)

	f := &fixture{
		chats:    mocks.NewMockChatRepository(ctrl),
		jobs:     mocks.NewMockJobRepository(ctrl),
		users:    mocks.NewMockUserDirectory(ctrl),
		notifier: mocks.NewMockMessageNotifier(ctrl),
		now:      time.Date(2024, 3, 9, 12, 30, 15, 123456789, time.UTC),
	}
	cfg := config.ChatConfig{HistoryLimit: 50, MaxBodyLength: 20}
	f.svc = NewChatService(f.chats, f.jobs, f.users, f.notifier, cfg, slog.New(slog.DiscardHandler)).(*chatService)
	f.svc.now = func() time.Time { return f.now }
	return f
}

var (
	jobID     = primitive.NewObjectID()
	clientID  = primitive.NewObjectID()
	hiredID   = primitive.NewObjectID()
	outsideID = primitive.NewObjectID()
)

func participants() *models.Participants {
	return &models.Participants{JobID: jobID, Client: clientID, Hired: []primitive.ObjectID{hiredID}}
}

func TestChatService_Authorize(t *testing.T) {
	tests := []struct {
		name      string
		convID    string
		userID    string
		mockSetup func(f *fixture)
		expectErr error
	}{
		{
			name:   "client is a participant",
			convID: jobID.Hex(),
			userID: clientID.Hex(),
			mockSetup: func(f *fixture) {
				f.jobs.EXPECT().Participants(gomock.Any(), jobID).Return(participants(), nil)
			},
		},
		{
			name:   "outsider is rejected",
			convID: jobID.Hex(),
			userID: outsideID.Hex(),
			mockSetup: func(f *fixture) {
				f.jobs.EXPECT().Participants(gomock.Any(), jobID).Return(participants(), nil)
			},
			expectErr: common.ErrNotParticipant,
		},
		{
			name:      "malformed conversation id",
			convID:    "J1",
			userID:    clientID.Hex(),
			mockSetup: func(f *fixture) {},
			expectErr: common.ErrInvalidConversation,
		},
		{
			name:      "malformed user id",
			convID:    jobID.Hex(),
			userID:    "",
			mockSetup: func(f *fixture) {},
			expectErr: common.ErrInvalidUser,
		},
		{
			name:   "unknown job",
			convID: jobID.Hex(),
			userID: clientID.Hex(),
			mockSetup: func(f *fixture) {
				f.jobs.EXPECT().Participants(gomock.Any(), jobID).Return(nil, common.ErrNotFound)
			},
			expectErr: common.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.mockSetup(f)

			err := f.svc.Authorize(context.Background(), tt.convID, tt.userID)
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestChatService_History(t *testing.T) {
	t.Run("reverses newest first into oldest first", func(t *testing.T) {
		f := newFixture(t)
		base := f.now
		newest := &models.Message{ID: primitive.NewObjectID(), JobID: jobID, Sender: hiredID, Body: "third", CreatedAt: base}
		middle := &models.Message{ID: primitive.NewObjectID(), JobID: jobID, Sender: clientID, Body: "second", CreatedAt: base.Add(-time.Minute)}
		oldest := &models.Message{ID: primitive.NewObjectID(), JobID: jobID, Sender: hiredID, Body: "first", CreatedAt: base.Add(-2 * time.Minute)}

		f.jobs.EXPECT().Participants(gomock.Any(), jobID).Return(participants(), nil)
		f.chats.EXPECT().FetchRecent(gomock.Any(), jobID, int64(50)).Return([]*models.Message{newest, middle, oldest}, nil)
		f.users.EXPECT().Usernames(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
				assert.Len(t, ids, 2)
				return map[primitive.ObjectID]string{hiredID: "freelancer"}, nil
			})

		views, err := f.svc.History(context.Background(), jobID.Hex(), clientID.Hex())
		require.NoError(t, err)
		require.Len(t, views, 3)
		assert.Equal(t, []string{"first", "second", "third"}, []string{views[0].Message, views[1].Message, views[2].Message})
		assert.Equal(t, "freelancer", views[0].Sender)
		assert.Equal(t, clientID.Hex(), views[1].Sender, "unknown names fall back to the id")
	})

	t.Run("non participant gets nothing", func(t *testing.T) {
		f := newFixture(t)
		f.jobs.EXPECT().Participants(gomock.Any(), jobID).Return(participants(), nil)

		views, err := f.svc.History(context.Background(), jobID.Hex(), outsideID.Hex())
		assert.ErrorIs(t, err, common.ErrNotParticipant)
		assert.Nil(t, views)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newFixture(t)
		f.jobs.EXPECT().Participants(gomock.Any(), jobID).Return(participants(), nil)
		f.chats.EXPECT().FetchRecent(gomock.Any(), jobID, int64(50)).Return(nil, errors.New("connection reset"))

		_, err := f.svc.History(context.Background(), jobID.Hex(), clientID.Hex())
		assert.Error(t, err)
	})

	t.Run("empty conversation", func(t *testing.T) {
		f := newFixture(t)
		f.jobs.EXPECT().Participants(gomock.Any(), jobID).Return(participants(), nil)
		f.chats.EXPECT().FetchRecent(gomock.Any(), jobID, int64(50)).Return([]*models.Message{}, nil)

		views, err := f.svc.History(context.Background(), jobID.Hex(), hiredID.Hex())
		require.NoError(t, err)
		assert.Empty(t, views)
	})
}

func TestChatService_SendMessage(t *testing.T) {
	tests := []struct {
		name      string
		draft     models.Draft
		mockSetup func(f *fixture)
		expectErr bool
		errIs     error
		check     func(t *testing.T, f *fixture, d *models.Delivery)
	}{
		{
			name:  "freelancer writes to client",
			draft: models.Draft{ConversationID: jobID.Hex(), SenderID: hiredID.Hex(), Body: " hello "},
			mockSetup: func(f *fixture) {
				f.jobs.EXPECT().Participants(gomock.Any(), jobID).Return(participants(), nil)
				f.chats.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
				f.users.EXPECT().Usernames(gomock.Any(), []primitive.ObjectID{hiredID}).
					Return(map[primitive.ObjectID]string{hiredID: "fran"}, nil)
				f.notifier.EXPECT().MessageReceived(gomock.Any(), "fran")
			},
			check: func(t *testing.T, f *fixture, d *models.Delivery) {
				assert.Equal(t, "hello", d.Message.Body)
				assert.Equal(t, clientID, d.Message.Receiver)
				assert.False(t, d.Message.Read)
				assert.Equal(t, f.now.Truncate(time.Millisecond), d.Message.CreatedAt)
				assert.Equal(t, d.Message.CreatedAt, d.View.CreatedAt)
				assert.Equal(t, "fran", d.View.Sender)
				assert.Equal(t, jobID.Hex(), d.View.ConversationID)
			},
		},
		{
			name:  "client writes to hired freelancer",
			draft: models.Draft{ConversationID: jobID.Hex(), SenderID: clientID.Hex(), Body: "welcome"},
			mockSetup: func(f *fixture) {
				f.jobs.EXPECT().Participants(gomock.Any(), jobID).Return(participants(), nil)
				f.chats.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
				f.users.EXPECT().Usernames(gomock.Any(), gomock.Any()).Return(map[primitive.ObjectID]string{}, nil)
				f.notifier.EXPECT().MessageReceived(gomock.Any(), "")
			},
			check: func(t *testing.T, f *fixture, d *models.Delivery) {
				assert.Equal(t, hiredID, d.Message.Receiver)
				assert.Equal(t, clientID.Hex(), d.View.Sender)
			},
		},
		{
			name:  "no counterpart falls back to sender without notifying",
			draft: models.Draft{ConversationID: jobID.Hex(), SenderID: clientID.Hex(), Body: "anyone?"},
			mockSetup: func(f *fixture) {
				f.jobs.EXPECT().Participants(gomock.Any(), jobID).
					Return(&models.Participants{JobID: jobID, Client: clientID}, nil)
				f.chats.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
				f.users.EXPECT().Usernames(gomock.Any(), gomock.Any()).Return(nil, errors.New("users down"))
			},
			check: func(t *testing.T, f *fixture, d *models.Delivery) {
				assert.Equal(t, clientID, d.Message.Receiver)
			},
		},
		{
			name:  "attachment without text",
			draft: models.Draft{ConversationID: jobID.Hex(), SenderID: hiredID.Hex(), Attachments: []models.Attachment{{FileID: "f1", MimeType: "application/pdf"}}},
			mockSetup: func(f *fixture) {
				f.jobs.EXPECT().Participants(gomock.Any(), jobID).Return(participants(), nil)
				f.chats.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
				f.users.EXPECT().Usernames(gomock.Any(), gomock.Any()).Return(map[primitive.ObjectID]string{}, nil)
				f.notifier.EXPECT().MessageReceived(gomock.Any(), gomock.Any())
			},
			check: func(t *testing.T, f *fixture, d *models.Delivery) {
				assert.Equal(t, "", d.Message.Body)
				assert.Len(t, d.View.Attachments, 1)
			},
		},
		{
			name:      "empty body is rejected before the store",
			draft:     models.Draft{ConversationID: jobID.Hex(), SenderID: hiredID.Hex(), Body: "   "},
			mockSetup: func(f *fixture) {},
			expectErr: true,
			errIs:     common.ErrEmptyBody,
		},
		{
			name:      "body over the limit",
			draft:     models.Draft{ConversationID: jobID.Hex(), SenderID: hiredID.Hex(), Body: strings.Repeat("x", 21)},
			mockSetup: func(f *fixture) {},
			expectErr: true,
			errIs:     common.ErrBodyTooLong,
		},
		{
			name:  "outsider cannot send",
			draft: models.Draft{ConversationID: jobID.Hex(), SenderID: outsideID.Hex(), Body: "spam"},
			mockSetup: func(f *fixture) {
				f.jobs.EXPECT().Participants(gomock.Any(), jobID).Return(participants(), nil)
			},
			expectErr: true,
			errIs:     common.ErrNotParticipant,
		},
		{
			name:  "store failure means no delivery",
			draft: models.Draft{ConversationID: jobID.Hex(), SenderID: hiredID.Hex(), Body: "hi"},
			mockSetup: func(f *fixture) {
				f.jobs.EXPECT().Participants(gomock.Any(), jobID).Return(participants(), nil)
				f.chats.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("not primary"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.mockSetup(f)

			d, err := f.svc.SendMessage(context.Background(), tt.draft)
			if tt.expectErr {
				assert.Error(t, err)
				assert.Nil(t, d)
				if tt.errIs != nil {
					assert.ErrorIs(t, err, tt.errIs)
				}
				return
			}
			require.NoError(t, err)
			tt.check(t, f, d)
		})
	}
}

func TestChatService_MarkRead(t *testing.T) {
	t.Run("marks messages addressed to the caller", func(t *testing.T) {
		f := newFixture(t)
		f.jobs.EXPECT().Participants(gomock.Any(), jobID).Return(participants(), nil).Times(2)
		gomock.InOrder(
			f.chats.EXPECT().MarkRead(gomock.Any(), jobID, hiredID).Return(int64(2), nil),
			f.chats.EXPECT().MarkRead(gomock.Any(), jobID, hiredID).Return(int64(0), nil),
		)

		n, err := f.svc.MarkRead(context.Background(), jobID.Hex(), hiredID.Hex())
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = f.svc.MarkRead(context.Background(), jobID.Hex(), hiredID.Hex())
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("outsider", func(t *testing.T) {
		f := newFixture(t)
		f.jobs.EXPECT().Participants(gomock.Any(), jobID).Return(participants(), nil)

		_, err := f.svc.MarkRead(context.Background(), jobID.Hex(), outsideID.Hex())
		assert.ErrorIs(t, err, common.ErrNotParticipant)
	})
}

func TestChatService_Conversations(t *testing.T) {
	f := newFixture(t)
	otherJob := primitive.NewObjectID()
	t0 := f.now

	msgs := []*models.Message{
		{JobID: jobID, Sender: hiredID, Receiver: clientID, Body: "latest from fran", CreatedAt: t0},
		{JobID: otherJob, Sender: clientID, Receiver: outsideID, Body: "to olga", CreatedAt: t0.Add(-time.Minute)},
		{JobID: jobID, Sender: clientID, Receiver: hiredID, Body: "older to fran", CreatedAt: t0.Add(-2 * time.Minute)},
		{JobID: jobID, Sender: clientID, Receiver: clientID, Body: "note to self", CreatedAt: t0.Add(-3 * time.Minute)},
	}
	f.chats.EXPECT().FetchInvolving(gomock.Any(), clientID, int64(200)).Return(msgs, nil)
	f.users.EXPECT().Usernames(gomock.Any(), gomock.Any()).
		Return(map[primitive.ObjectID]string{hiredID: "fran"}, nil)
	f.chats.EXPECT().CountUnread(gomock.Any(), jobID, clientID).Return(int64(1), nil)
	f.chats.EXPECT().CountUnread(gomock.Any(), otherJob, clientID).Return(int64(0), nil)

	convos, err := f.svc.Conversations(context.Background(), clientID.Hex())
	require.NoError(t, err)
	require.Len(t, convos, 2)

	assert.Equal(t, hiredID.Hex(), convos[0].UserID)
	assert.Equal(t, "fran", convos[0].Username)
	assert.Equal(t, "latest from fran", convos[0].LastMessage)
	assert.Equal(t, int64(1), convos[0].Unread)

	assert.Equal(t, outsideID.Hex(), convos[1].UserID)
	assert.Equal(t, "User", convos[1].Username)
	assert.Equal(t, otherJob.Hex(), convos[1].JobID)
}

func TestChatService_Conversations_InvalidUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Conversations(context.Background(), "me")
	assert.ErrorIs(t, err, common.ErrInvalidUser)
}
