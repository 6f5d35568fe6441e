package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrEmptyMessage = errors.New("message text empty")

// ChatMessage is immutable once created and scoped to exactly one
// call.
type ChatMessage struct {
	ID         string    `json:"id"`
	CallID     CallID    `json:"callId"`
	SenderSID  string    `json:"senderSocketId"`
	SenderID   UserID    `json:"senderId"`
	SenderName string    `json:"sender"`
	IsAdmin    bool      `json:"isAdmin"`
	Text       string    `json:"text"`
	SentAt     time.Time `json:"timestamp"`
}

// NewChatMessage rejects empty and whitespace-only text before
// anything is stored or broadcast. The sender is a value snapshot of
// the identity at send time.
func NewChatMessage(callID CallID, senderSID string, sender User, text string) (ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ChatMessage{}, ErrEmptyMessage
	}
	return ChatMessage{
		ID:         uuid.NewString(),
		CallID:     callID,
		SenderSID:  senderSID,
		SenderID:   sender.ID,
		SenderName: sender.Name,
		IsAdmin:    sender.Role.IsAdmin(),
		Text:       text,
		SentAt:     time.Now(),
	}, nil
}
