package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Mode string `json:"mode,omitempty" validate:"omitempty,oneof=general quiz"`
}

type SessionResponse struct {
	Id           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Mode         string    `json:"mode"`
	Busy         bool      `json:"busy"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ChatMessageDTO mirrors the shape the web client renders: `type` selects
// between the `text` and `quiz` payloads.
type ChatMessageDTO struct {
	Id        uuid.UUID `json:"id"`
	Kind      string    `json:"type"`
	Text      string    `json:"text,omitempty"`
	Quiz      *QuizDTO  `json:"quiz,omitempty"`
	Sender    string    `json:"sender"`
	CreatedAt time.Time `json:"timestamp"`
}

type QuizDTO struct {
	Id              uuid.UUID     `json:"id"`
	Title           string        `json:"title"`
	DocumentSources []string      `json:"document_source"`
	Questions       []QuestionDTO `json:"questions"`
}

type QuestionDTO struct {
	Id       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type SendChatRequest struct {
	ChatSessionId uuid.UUID `json:"session_id" validate:"required"`
	Chat          string    `json:"chat" validate:"required"`
}

type SendQuizRequest struct {
	ChatSessionId uuid.UUID `json:"session_id" validate:"required"`
	Prompt        string    `json:"prompt" validate:"required"`
	Documents     []string  `json:"documents" validate:"required,min=1,dive,required"`
}

// SendChatResponse acknowledges the user turn. The agent reply arrives
// asynchronously; Busy stays true until it lands.
type SendChatResponse struct {
	ChatSessionId    uuid.UUID       `json:"session_id"`
	ChatSessionTitle string          `json:"title"`
	Mode             string          `json:"mode"`
	Busy             bool            `json:"busy"`
	Sent             *ChatMessageDTO `json:"sent"`
}

type SelectSessionRequest struct {
	ChatSessionId uuid.UUID `json:"session_id" validate:"required"`
}

type DeleteSessionRequest struct {
	ChatSessionId uuid.UUID `json:"session_id" validate:"required"`
}

type SwitchModeRequest struct {
	ChatSessionId uuid.UUID `json:"session_id" validate:"required"`
	Mode          string    `json:"mode" validate:"required,oneof=general quiz"`
}

// StoreSnapshotResponse is what the shell re-renders from: the full session
// list by recency plus the active pointer. Also the WebSocket push payload.
type StoreSnapshotResponse struct {
	ActiveSessionId uuid.UUID          `json:"active_session_id"`
	Sessions        []*SessionResponse `json:"sessions"`
}
