package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatSession is one conversation thread. Messages is append-only and never
// empty: every session is born with a welcome message from the agent.
// Busy is true while a responder invocation is outstanding for this session.
type ChatSession struct {
	Id        uuid.UUID
	Title     string
	Mode      string // constant.ChatModeGeneral | constant.ChatModeQuiz
	Messages  []ChatMessage
	Busy      bool
	Seq       int64 // insertion order, assigned by the store
	CreatedAt time.Time
	UpdatedAt time.Time
}
