package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuizResponderEchoesDocumentSources(t *testing.T) {
	r := NewQuizResponder(5 * time.Millisecond)
	documents := []string{"Geometry 101.pdf", "Algebra Fundamentals.docx"}

	reply, err := r.Respond(context.Background(), Submission{
		Prompt:    "10 MCQs on chapter 3",
		Documents: documents,
	})
	require.NoError(t, err)
	require.NotNil(t, reply.Quiz)
	assert.Empty(t, reply.Text)
	assert.Equal(t, documents, reply.Quiz.DocumentSources)
}

func TestQuizResponderQuestionsAreWellFormed(t *testing.T) {
	r := NewQuizResponder(5 * time.Millisecond)

	reply, err := r.Respond(context.Background(), Submission{
		Prompt:    "short quiz",
		Documents: []string{"Geometry 101.pdf"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, reply.Quiz.Questions)
	for _, q := range reply.Quiz.Questions {
		assert.NotEmpty(t, q.Id)
		assert.NotEmpty(t, q.Prompt)
		assert.GreaterOrEqual(t, len(q.Options), 2)
	}
}

func TestQuizResponderRequiresDocuments(t *testing.T) {
	r := NewQuizResponder(5 * time.Millisecond)

	reply, err := r.Respond(context.Background(), Submission{Prompt: "no docs"})
	assert.Nil(t, reply)
	assert.Error(t, err)
}

func TestQuizResponderHonorsCancellation(t *testing.T) {
	r := NewQuizResponder(time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reply, err := r.Respond(ctx, Submission{Documents: []string{"Geometry 101.pdf"}})
	assert.Nil(t, reply)
	assert.ErrorIs(t, err, context.Canceled)
}
