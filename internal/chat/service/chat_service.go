package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"skillnest/internal/chat/models"
	"skillnest/internal/chat/repository"
	"skillnest/internal/common"
	"skillnest/internal/config"
)

const (
	conversationScanLimit = 200
	conversationListLimit = 50
)

// UserDirectory resolves display names for message senders.
type UserDirectory interface {
	Usernames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error)
}

// MessageNotifier is told about every persisted message. Implementations must
// not block.
type MessageNotifier interface {
	MessageReceived(msg *models.Message, senderName string)
}

// ChatService defines the interface exposed to the handler layer
type ChatService interface {
	// Authorize fails with ErrNotParticipant unless userID takes part in the job.
	Authorize(ctx context.Context, conversationID, userID string) error
	// History returns up to the configured limit of messages, oldest first.
	History(ctx context.Context, conversationID, userID string) ([]*models.MessageView, error)
	SendMessage(ctx context.Context, in models.Draft) (*models.Delivery, error)
	MarkRead(ctx context.Context, conversationID, userID string) (int64, error)
	Conversations(ctx context.Context, userID string) ([]*models.ConversationSummary, error)
}

type chatService struct {
	chats    repository.ChatRepository
	jobs     repository.JobRepository
	users    UserDirectory
	notifier MessageNotifier
	cfg      config.ChatConfig
	log      *slog.Logger
	now      func() time.Time
}

// Constructor used in DI/wire
func NewChatService(
	chats repository.ChatRepository,
	jobs repository.JobRepository,
	users UserDirectory,
	notifier MessageNotifier,
	cfg config.ChatConfig,
	log *slog.Logger,
) ChatService {
	return &chatService{
		chats:    chats,
		jobs:     jobs,
		users:    users,
		notifier: notifier,
		cfg:      cfg,
		log:      log.With("component", "chat_service"),
		now:      time.Now,
	}
}

type access struct {
	jobID        primitive.ObjectID
	userID       primitive.ObjectID
	participants *models.Participants
}

func (s *chatService) authorize(ctx context.Context, conversationID, userID string) (*access, error) {
	jobID, err := common.ParseObjectID(conversationID, common.ErrInvalidConversation)
	if err != nil {
		return nil, err
	}
	uid, err := common.ParseObjectID(userID, common.ErrInvalidUser)
	if err != nil {
		return nil, err
	}

	participants, err := s.jobs.Participants(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !participants.Includes(uid) {
		return nil, fmt.Errorf("user %s on job %s: %w", userID, conversationID, common.ErrNotParticipant)
	}
	return &access{jobID: jobID, userID: uid, participants: participants}, nil
}

func (s *chatService) Authorize(ctx context.Context, conversationID, userID string) error {
	_, err := s.authorize(ctx, conversationID, userID)
	return err
}

func (s *chatService) History(ctx context.Context, conversationID, userID string) ([]*models.MessageView, error) {
	acc, err := s.authorize(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}

	msgs, err := s.chats.FetchRecent(ctx, acc.jobID, int64(s.cfg.HistoryLimit))
	if err != nil {
		return nil, err
	}
	msgs = lo.Reverse(msgs)

	names := s.usernames(ctx, lo.Map(msgs, func(m *models.Message, _ int) primitive.ObjectID { return m.Sender }))
	return lo.Map(msgs, func(m *models.Message, _ int) *models.MessageView {
		return models.NewMessageView(m, names[m.Sender])
	}), nil
}

func (s *chatService) SendMessage(ctx context.Context, in models.Draft) (*models.Delivery, error) {
	body := strings.TrimSpace(in.Body)
	if body == "" && len(in.Attachments) == 0 {
		return nil, common.ErrEmptyBody
	}
	if s.cfg.MaxBodyLength > 0 && utf8.RuneCountInString(body) > s.cfg.MaxBodyLength {
		return nil, common.ErrBodyTooLong
	}

	acc, err := s.authorize(ctx, in.ConversationID, in.SenderID)
	if err != nil {
		return nil, err
	}

	receiver, ok := acc.participants.Counterpart(acc.userID)
	if !ok {
		receiver = acc.userID
	}

	msg := &models.Message{
		ID:          primitive.NewObjectID(),
		JobID:       acc.jobID,
		Sender:      acc.userID,
		Receiver:    receiver,
		Body:        body,
		Attachments: in.Attachments,
		// Mongo keeps milliseconds; truncating here keeps the broadcast equal to the stored value.
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
		Read:      false,
	}
	if err := s.chats.Save(ctx, msg); err != nil {
		return nil, err
	}

	name := s.usernames(ctx, []primitive.ObjectID{msg.Sender})[msg.Sender]
	if s.notifier != nil && receiver != acc.userID {
		s.notifier.MessageReceived(msg, name)
	}

	return &models.Delivery{Message: msg, View: models.NewMessageView(msg, name)}, nil
}

func (s *chatService) MarkRead(ctx context.Context, conversationID, userID string) (int64, error) {
	acc, err := s.authorize(ctx, conversationID, userID)
	if err != nil {
		return 0, err
	}
	return s.chats.MarkRead(ctx, acc.jobID, acc.userID)
}

func (s *chatService) Conversations(ctx context.Context, userID string) ([]*models.ConversationSummary, error) {
	uid, err := common.ParseObjectID(userID, common.ErrInvalidUser)
	if err != nil {
		return nil, err
	}

	msgs, err := s.chats.FetchInvolving(ctx, uid, conversationScanLimit)
	if err != nil {
		return nil, err
	}

	type pick struct {
		other primitive.ObjectID
		msg   *models.Message
	}
	picks := make([]pick, 0, conversationListLimit)
	seen := make(map[primitive.ObjectID]struct{})
	for _, m := range msgs {
		other := m.Sender
		if m.Sender == uid {
			other = m.Receiver
		}
		if other.IsZero() || other == uid {
			continue
		}
		if _, dup := seen[other]; dup {
			continue
		}
		seen[other] = struct{}{}
		picks = append(picks, pick{other: other, msg: m})
		if len(picks) >= conversationListLimit {
			break
		}
	}

	names := s.usernames(ctx, lo.Map(picks, func(p pick, _ int) primitive.ObjectID { return p.other }))
	out := make([]*models.ConversationSummary, 0, len(picks))
	for _, p := range picks {
		unread, err := s.chats.CountUnread(ctx, p.msg.JobID, uid)
		if err != nil {
			return nil, err
		}
		username, ok := names[p.other]
		if !ok {
			username = "User"
		}
		out = append(out, &models.ConversationSummary{
			UserID:      p.other.Hex(),
			Username:    username,
			LastMessage: p.msg.Body,
			JobID:       p.msg.JobID.Hex(),
			CreatedAt:   p.msg.CreatedAt,
			Unread:      unread,
		})
	}
	return out, nil
}

// usernames never fails; a lookup error only costs display names.
func (s *chatService) usernames(ctx context.Context, ids []primitive.ObjectID) map[primitive.ObjectID]string {
	if len(ids) == 0 {
		return map[primitive.ObjectID]string{}
	}
	names, err := s.users.Usernames(ctx, lo.Uniq(ids))
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.log.Warn("username lookup failed", "error", err)
		}
		return map[primitive.ObjectID]string{}
	}
	return names
}
