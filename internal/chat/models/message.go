package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Attachment struct {
	FileID   string `bson:"fileId" json:"fileId"`
	Filename string `bson:"filename" json:"filename"`
	Path     string `bson:"path" json:"path"`
	Size     int64  `bson:"size" json:"size"`
	MimeType string `bson:"mimetype" json:"mimetype"`
}

// Message is a stored chat message. Only Read ever changes after insert.
type Message struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	JobID       primitive.ObjectID `bson:"jobId"`
	Sender      primitive.ObjectID `bson:"sender"`
	Receiver    primitive.ObjectID `bson:"receiver"`
	Body        string             `bson:"message"`
	Attachments []Attachment       `bson:"attachments,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
	Read        bool               `bson:"read"`
}

// MessageView is the wire shape of a message in chatMessage and recentMessages.
type MessageView struct {
	ID             string       `json:"id"`
	ConversationID string       `json:"conversationId"`
	Message        string       `json:"message"`
	Sender         string       `json:"sender"`
	SenderID       string       `json:"senderId"`
	Attachments    []Attachment `json:"attachments,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
}

func NewMessageView(m *Message, senderName string) *MessageView {
	if senderName == "" {
		senderName = m.Sender.Hex()
	}
	return &MessageView{
		ID:             m.ID.Hex(),
		ConversationID: m.JobID.Hex(),
		Message:        m.Body,
		Sender:         senderName,
		SenderID:       m.Sender.Hex(),
		Attachments:    m.Attachments,
		CreatedAt:      m.CreatedAt,
	}
}

// Draft is an outgoing message before the store assigns it an id and receiver.
type Draft struct {
	ConversationID string
	SenderID       string
	Body           string
	Attachments    []Attachment
}

// Delivery is a persisted message plus what the relay needs to fan it out.
type Delivery struct {
	Message *Message
	View    *MessageView
}

type ConversationSummary struct {
	UserID      string    `json:"userId"`
	Username    string    `json:"username"`
	LastMessage string    `json:"lastMessage"`
	JobID       string    `json:"jobId"`
	CreatedAt   time.Time `json:"createdAt"`
	Unread      int64     `json:"unread"`
}
