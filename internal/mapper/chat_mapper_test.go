package mapper

import (
	"testing"
	"time"

	"edubridge-chat-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToSessionResponse(t *testing.T) {
	now := time.Now()
	session := &entity.ChatSession{
		Id:    uuid.New(),
		Title: "What is active learning?",
		Mode:  "general",
		Busy:  true,
		Messages: []entity.ChatMessage{
			{Id: uuid.New(), Kind: "text", Sender: "agent"},
			{Id: uuid.New(), Kind: "text", Sender: "user"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	res := ToSessionResponse(session)
	assert.Equal(t, session.Id, res.Id)
	assert.Equal(t, session.Title, res.Title)
	assert.Equal(t, session.Mode, res.Mode)
	assert.True(t, res.Busy)
	assert.Equal(t, 2, res.MessageCount)
}

func TestToChatMessageDTOWithQuiz(t *testing.T) {
	quiz := &entity.Quiz{
		Id:              uuid.New(),
		Title:           "Quiz: Geometry  Basics",
		DocumentSources: []string{"Geometry 101.pdf"},
		Questions: []entity.Question{
			{Id: "q1", Prompt: "What is the sum of the interior angles of a triangle?", Options: []string{"90°", "180°"}},
		},
	}
	message := &entity.ChatMessage{
		Id:        uuid.New(),
		Kind:      "quiz",
		Quiz:      quiz,
		Sender:    "agent",
		CreatedAt: time.Now(),
	}

	res := ToChatMessageDTO(message)
	assert.Equal(t, "quiz", res.Kind)
	require.NotNil(t, res.Quiz)
	assert.Equal(t, quiz.Title, res.Quiz.Title)
	assert.Equal(t, quiz.DocumentSources, res.Quiz.DocumentSources)
	require.Len(t, res.Quiz.Questions, 1)
	assert.Equal(t, "q1", res.Quiz.Questions[0].Id)
	assert.Equal(t, quiz.Questions[0].Prompt, res.Quiz.Questions[0].Question)
}

func TestToChatMessageDTOWithoutQuiz(t *testing.T) {
	message := &entity.ChatMessage{
		Id:     uuid.New(),
		Kind:   "text",
		Text:   "Hello",
		Sender: "user",
	}

	res := ToChatMessageDTO(message)
	assert.Nil(t, res.Quiz)
	assert.Equal(t, "Hello", res.Text)
}

func TestToChatMessageDTOsPreservesOrder(t *testing.T) {
	messages := []entity.ChatMessage{
		{Id: uuid.New(), Kind: "text", Text: "one", Sender: "agent"},
		{Id: uuid.New(), Kind: "text", Text: "two", Sender: "user"},
		{Id: uuid.New(), Kind: "text", Text: "three", Sender: "agent"},
	}

	res := ToChatMessageDTOs(messages)
	require.Len(t, res, 3)
	for i := range messages {
		assert.Equal(t, messages[i].Id, res[i].Id)
		assert.Equal(t, messages[i].Text, res[i].Text)
	}
}
