package entity

import (
	"github.com/google/uuid"
)

// Question is one multiple-choice item. Options always has at least two
// entries. No correct-answer field exists; quizzes are ungraded.
type Question struct {
	Id      string
	Prompt  string
	Options []string
}

type Quiz struct {
	Id              uuid.UUID
	Title           string
	DocumentSources []string
	Questions       []Question
}
