package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is a single utterance inside a session. Exactly one of
// Text/Quiz is populated, matching Kind. Messages are immutable once
// appended; a session only grows.
type ChatMessage struct {
	Id        uuid.UUID
	Kind      string // constant.ChatMessageKindText | constant.ChatMessageKindQuiz
	Text      string
	Quiz      *Quiz
	Sender    string // constant.ChatMessageSenderUser | constant.ChatMessageSenderAgent
	Seq       int64
	CreatedAt time.Time
}
