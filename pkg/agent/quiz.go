package agent

import (
	"context"
	"fmt"
	"time"

	"edubridge-chat-be/internal/entity"

	"github.com/google/uuid"
)

const defaultQuizLatency = 2000 * time.Millisecond

// Fixed question bank. The generator currently ignores the prompt; swapping
// in a prompt-aware implementation only requires another Responder.
var quizQuestionBank = []entity.Question{
	{
		Id:      "q1",
		Prompt:  "What is the sum of the interior angles of a triangle?",
		Options: []string{"90°", "180°", "270°", "360°"},
	},
	{
		Id:      "q2",
		Prompt:  "Which formula is used to calculate the area of a circle?",
		Options: []string{"πr²", "2πr", "πd", "r²/2"},
	},
	{
		Id:      "q3",
		Prompt:  "What is the name of a quadrilateral with exactly one pair of parallel sides?",
		Options: []string{"Rectangle", "Trapezoid", "Rhombus", "Square"},
	},
	{
		Id:      "q4",
		Prompt:  "In a right triangle, what is the side opposite the right angle called?",
		Options: []string{"Adjacent", "Opposite", "Hypotenuse", "Median"},
	},
	{
		Id:      "q5",
		Prompt:  "If two angles are complementary, what is their sum?",
		Options: []string{"45°", "90°", "180°", "360°"},
	},
}

// QuizResponder builds a quiz from the submitted document set after a
// simulated latency. DocumentSources always echoes the submission exactly.
type QuizResponder struct {
	latency time.Duration
}

func NewQuizResponder(latency time.Duration) *QuizResponder {
	if latency <= 0 {
		latency = defaultQuizLatency
	}
	return &QuizResponder{latency: latency}
}

func (r *QuizResponder) Respond(ctx context.Context, sub Submission) (*Reply, error) {
	if len(sub.Documents) == 0 {
		return nil, fmt.Errorf("quiz submission requires at least one document")
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(r.latency):
	}

	questions := make([]entity.Question, len(quizQuestionBank))
	copy(questions, quizQuestionBank)

	sources := make([]string, len(sub.Documents))
	copy(sources, sub.Documents)

	return &Reply{
		Quiz: &entity.Quiz{
			Id:              uuid.New(),
			Title:           "Quiz: Geometry  Basics",
			DocumentSources: sources,
			Questions:       questions,
		},
	}, nil
}
