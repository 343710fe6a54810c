package controller

import (
	"errors"

	"edubridge-chat-be/internal/dto"
	"edubridge-chat-be/internal/pkg/serverutils"
	"edubridge-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	GetAllSessions(ctx *fiber.Ctx) error
	SelectSession(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	GetChatHistory(ctx *fiber.Ctx) error
	SendChat(ctx *fiber.Ctx) error
	SendQuiz(ctx *fiber.Ctx) error
	SwitchMode(ctx *fiber.Ctx) error
	GetDocuments(ctx *fiber.Ctx) error
	GetSnapshot(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("session", c.CreateSession)
	h.Get("sessions", c.GetAllSessions)
	h.Post("session/select", c.SelectSession)
	h.Delete("session", c.DeleteSession)
	h.Get("session/:id/history", c.GetChatHistory)
	h.Put("session/mode", c.SwitchMode)
	h.Post("chat", c.SendChat)
	h.Post("quiz", c.SendQuiz)
	h.Get("documents", c.GetDocuments)
	h.Get("snapshot", c.GetSnapshot)
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return err
		}
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.CreateSession(ctx.Context(), req.Mode)
	if err != nil {
		return chatError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create chat session", res))
}

func (c *chatController) GetAllSessions(ctx *fiber.Ctx) error {
	res, err := c.chatService.GetAllSessions(ctx.Context())
	if err != nil {
		return chatError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list chat sessions", res))
}

func (c *chatController) SelectSession(ctx *fiber.Ctx) error {
	var req dto.SelectSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.chatService.SelectSession(ctx.Context(), req.ChatSessionId); err != nil {
		return chatError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success select chat session", nil))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	var req dto.DeleteSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.chatService.DeleteSession(ctx.Context(), req.ChatSessionId); err != nil {
		return chatError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete chat session", nil))
}

func (c *chatController) GetChatHistory(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	res, err := c.chatService.GetChatHistory(ctx.Context(), id)
	if err != nil {
		return chatError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show chat history", res))
}

func (c *chatController) SendChat(ctx *fiber.Ctx) error {
	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.SendChat(ctx.Context(), &req)
	if err != nil {
		return chatError(err)
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Chat accepted", res))
}

func (c *chatController) SendQuiz(ctx *fiber.Ctx) error {
	var req dto.SendQuizRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.SendQuizRequest(ctx.Context(), &req)
	if err != nil {
		return chatError(err)
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Quiz request accepted", res))
}

func (c *chatController) SwitchMode(ctx *fiber.Ctx) error {
	var req dto.SwitchModeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.SwitchMode(ctx.Context(), &req)
	if err != nil {
		return chatError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success switch chat mode", res))
}

func (c *chatController) GetDocuments(ctx *fiber.Ctx) error {
	res := c.chatService.GetAvailableDocuments(ctx.Context())
	return ctx.JSON(serverutils.SuccessResponse("Success list documents", res))
}

func (c *chatController) GetSnapshot(ctx *fiber.Ctx) error {
	res := c.chatService.Snapshot(ctx.Context())
	return ctx.JSON(serverutils.SuccessResponse("Success snapshot chat store", res))
}

// chatError maps engine errors onto HTTP statuses for the error middleware.
func chatError(err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSessionBusy):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrNoDocuments),
		errors.Is(err, service.ErrInvalidMode):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return err
	}
}
