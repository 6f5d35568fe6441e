// Package protocol defines the wire events exchanged over the signal
// websocket: one struct per inbound and outbound event name, tagged by
// the "type" field of the envelope.
package protocol

import (
	"time"

	"github.com/pion/webrtc/v4"

	"github.com/dkeye/commcall/internal/core"
	"github.com/dkeye/commcall/internal/domain"
)

// Inbound event names.
const (
	EvtUserJoin        = "user_join"
	EvtAdminStartCall  = "admin_start_call"
	EvtJoinCall        = "join_call"
	EvtLeaveCall       = "leave_call"
	EvtAdminEndCall    = "admin_end_call"
	EvtSendMessage     = "send_message"
	EvtWebRTCOffer     = "webrtc_offer"
	EvtWebRTCAnswer    = "webrtc_answer"
	EvtWebRTCCandidate = "webrtc_ice_candidate"
	EvtPing            = "ping"
)

// Outbound event names.
const (
	EvtCallStarted        = "call_started"
	EvtParticipantsUpdate = "call_participants_update"
	EvtUserJoinedCall     = "user_joined_call"
	EvtUserLeftCall       = "user_left_call"
	EvtCallEnded          = "call_ended"
	EvtNewMessage         = "new_message"
	EvtUserOnline         = "user_online"
	EvtAdminAway          = "admin_away"
	EvtNewParticipant     = "webrtc_new_participant"
	EvtChatHistory        = "chat_history"
	EvtError              = "error"
	EvtPong               = "pong"
)

// --- inbound ---

type UserJoin struct {
	UserID   string `json:"userId" validate:"required"`
	UserName string `json:"userName" validate:"required"`
	Role     string `json:"role"`
}

type AdminStartCall struct {
	WithAudio bool `json:"withAudio"`
}

type JoinCall struct {
	CallID   string `json:"callId" validate:"required"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	IsAdmin  *bool  `json:"isAdmin"`
}

type LeaveCall struct {
	CallID string `json:"callId" validate:"required"`
}

type AdminEndCall struct {
	CallID string `json:"callId" validate:"required"`
}

type SendMessage struct {
	CallID string `json:"callId" validate:"required"`
	Text   string `json:"text"`
	// Sender fields are informational; the server trusts the identity
	// bound to the connection, not the payload.
	Sender    string `json:"sender"`
	IsAdmin   bool   `json:"isAdmin"`
	Timestamp string `json:"timestamp"`
}

// WebRTCOffer also covers answers; both carry a session description.
type WebRTCOffer struct {
	TargetSocketID string                    `json:"targetSocketId" validate:"required"`
	Payload        webrtc.SessionDescription `json:"payload"`
	SenderName     string                    `json:"senderName"`
}

type WebRTCCandidate struct {
	TargetSocketID string                  `json:"targetSocketId" validate:"required"`
	Payload        webrtc.ICECandidateInit `json:"payload"`
	SenderName     string                  `json:"senderName"`
}

// --- outbound ---

type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewError(msg string) Error { return Error{Type: EvtError, Message: msg} }

type CallStarted struct {
	Type      string    `json:"type"`
	CallID    string    `json:"callId"`
	AdminName string    `json:"adminName"`
	StartTime time.Time `json:"startTime"`
	WithAudio bool      `json:"withAudio"`
}

func NewCallStarted(call *domain.Call) CallStarted {
	return CallStarted{
		Type:      EvtCallStarted,
		CallID:    string(call.ID),
		AdminName: call.AdminName,
		StartTime: call.StartedAt,
		WithAudio: call.WithAudio,
	}
}

type ParticipantsUpdate struct {
	Type         string                `json:"type"`
	CallID       string                `json:"callId"`
	Participants []core.ParticipantDTO `json:"participants"`
}

func NewParticipantsUpdate(callID domain.CallID, participants []core.ParticipantDTO) ParticipantsUpdate {
	return ParticipantsUpdate{Type: EvtParticipantsUpdate, CallID: string(callID), Participants: participants}
}

type UserJoinedCall struct {
	Type             string      `json:"type"`
	UserName         string      `json:"userName"`
	UserID           string      `json:"userId"`
	Role             domain.Role `json:"role"`
	SocketID         string      `json:"socketId"`
	ParticipantCount int         `json:"participantCount"`
}

type UserLeftCall struct {
	Type             string `json:"type"`
	UserName         string `json:"userName"`
	SocketID         string `json:"socketId"`
	ParticipantCount int    `json:"participantCount"`
}

type CallEnded struct {
	Type    string `json:"type"`
	CallID  string `json:"callId"`
	Message string `json:"message"`
	EndedBy string `json:"endedBy"`
}

type NewMessage struct {
	Type      string      `json:"type"`
	ID        string      `json:"id"`
	Sender    string      `json:"sender"`
	SenderID  string      `json:"senderId"`
	Text      string      `json:"text"`
	Timestamp time.Time   `json:"timestamp"`
	IsAdmin   bool        `json:"isAdmin"`
	CallID    string      `json:"callId"`
	UserID    string      `json:"userId"`
	UserName  string      `json:"userName"`
	UserRole  domain.Role `json:"userRole"`
}

func NewNewMessage(m domain.ChatMessage) NewMessage {
	role := domain.RoleStudent
	if m.IsAdmin {
		role = domain.RoleAdmin
	}
	return NewMessage{
		Type:      EvtNewMessage,
		ID:        m.ID,
		Sender:    m.SenderName,
		SenderID:  string(m.SenderID),
		Text:      m.Text,
		Timestamp: m.SentAt,
		IsAdmin:   m.IsAdmin,
		CallID:    string(m.CallID),
		UserID:    string(m.SenderID),
		UserName:  m.SenderName,
		UserRole:  role,
	}
}

type UserOnline struct {
	Type     string      `json:"type"`
	UserID   string      `json:"userId"`
	UserName string      `json:"userName"`
	Role     domain.Role `json:"role"`
	SocketID string      `json:"socketId"`
}

type AdminAway struct {
	Type    string `json:"type"`
	CallID  string `json:"callId"`
	Message string `json:"message"`
}

type NewParticipant struct {
	Type     string `json:"type"`
	SocketID string `json:"socketId"`
	UserName string `json:"userName"`
}

type ChatHistory struct {
	Type     string       `json:"type"`
	Messages []NewMessage `json:"messages"`
}

func NewChatHistory(msgs []domain.ChatMessage) ChatHistory {
	out := ChatHistory{Type: EvtChatHistory, Messages: make([]NewMessage, 0, len(msgs))}
	for _, m := range msgs {
		out.Messages = append(out.Messages, NewNewMessage(m))
	}
	return out
}

// ForwardedSignal is a 1:1 relayed offer/answer/candidate with the
// sender's socket id attached so the target can answer back.
type ForwardedSignal struct {
	Type           string `json:"type"`
	Payload        any    `json:"payload"`
	SenderSocketID string `json:"senderSocketId"`
	SenderName     string `json:"senderName,omitempty"`
}

type Pong struct {
	Type string `json:"type"`
}
