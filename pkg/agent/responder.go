package agent

import (
	"context"

	"edubridge-chat-be/internal/entity"

	"github.com/google/uuid"
)

// Submission is one user turn handed to a responder. Documents is only set
// for quiz-mode submissions.
type Submission struct {
	SessionId uuid.UUID
	Prompt    string
	Documents []string
}

// Reply carries exactly one agent payload: Text or Quiz.
type Reply struct {
	Text string
	Quiz *entity.Quiz
}

// Responder produces the next agent reply for a submission. The engine
// guarantees at most one outstanding invocation per session and cancels the
// context when the session is deleted mid-flight. Implementations simulate
// the turnaround today; a real agent backend slots in behind this interface.
type Responder interface {
	Respond(ctx context.Context, sub Submission) (*Reply, error)
}
