package mapper

import (
	"edubridge-chat-be/internal/dto"
	"edubridge-chat-be/internal/entity"
)

func ToSessionResponse(session *entity.ChatSession) *dto.SessionResponse {
	return &dto.SessionResponse{
		Id:           session.Id,
		Title:        session.Title,
		Mode:         session.Mode,
		Busy:         session.Busy,
		MessageCount: len(session.Messages),
		CreatedAt:    session.CreatedAt,
		UpdatedAt:    session.UpdatedAt,
	}
}

func ToChatMessageDTO(message *entity.ChatMessage) *dto.ChatMessageDTO {
	return &dto.ChatMessageDTO{
		Id:        message.Id,
		Kind:      message.Kind,
		Text:      message.Text,
		Quiz:      ToQuizDTO(message.Quiz),
		Sender:    message.Sender,
		CreatedAt: message.CreatedAt,
	}
}

func ToChatMessageDTOs(messages []entity.ChatMessage) []*dto.ChatMessageDTO {
	result := make([]*dto.ChatMessageDTO, 0, len(messages))
	for i := range messages {
		result = append(result, ToChatMessageDTO(&messages[i]))
	}
	return result
}

func ToQuizDTO(quiz *entity.Quiz) *dto.QuizDTO {
	if quiz == nil {
		return nil
	}

	questions := make([]dto.QuestionDTO, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questions = append(questions, dto.QuestionDTO{
			Id:       q.Id,
			Question: q.Prompt,
			Options:  q.Options,
		})
	}

	return &dto.QuizDTO{
		Id:              quiz.Id,
		Title:           quiz.Title,
		DocumentSources: quiz.DocumentSources,
		Questions:       questions,
	}
}
