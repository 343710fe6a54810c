package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"edubridge-chat-be/internal/constant"
	"edubridge-chat-be/internal/dto"
	"edubridge-chat-be/internal/entity"
	"edubridge-chat-be/internal/mapper"
	"edubridge-chat-be/internal/pkg/logger"
	"edubridge-chat-be/internal/repository/contract"
	"edubridge-chat-be/pkg/agent"
	"edubridge-chat-be/pkg/catalog"
	"edubridge-chat-be/pkg/events"
	pktNats "edubridge-chat-be/pkg/nats"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("chat session not found")
	ErrSessionBusy     = errors.New("a response is already being generated for this session")
	ErrEmptyMessage    = errors.New("message text must not be empty")
	ErrNoDocuments     = errors.New("quiz request requires at least one document")
	ErrInvalidMode     = errors.New("unknown chat mode")
)

// IChatService is the conversation-state engine. All mutations run under a
// single writer lock; responder turnaround happens in a goroutine whose
// completion re-checks session existence before appending.
type IChatService interface {
	CreateSession(ctx context.Context, mode string) (*dto.SessionResponse, error)
	GetAllSessions(ctx context.Context) ([]*dto.SessionResponse, error)
	GetChatHistory(ctx context.Context, sessionId uuid.UUID) ([]*dto.ChatMessageDTO, error)
	SendChat(ctx context.Context, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	SendQuizRequest(ctx context.Context, request *dto.SendQuizRequest) (*dto.SendChatResponse, error)
	SwitchMode(ctx context.Context, request *dto.SwitchModeRequest) (*dto.SessionResponse, error)
	SelectSession(ctx context.Context, sessionId uuid.UUID) error
	DeleteSession(ctx context.Context, sessionId uuid.UUID) error
	Snapshot(ctx context.Context) *dto.StoreSnapshotResponse
	GetAvailableDocuments(ctx context.Context) []string
}

type chatService struct {
	store            contract.ISessionStore
	generalResponder agent.Responder
	quizResponder    agent.Responder
	docCatalog       *catalog.Catalog
	publisher        IPublisherService
	natsPub          *pktNats.Publisher
	logger           logger.ILogger

	mu      sync.Mutex
	pending map[uuid.UUID]context.CancelFunc
	msgSeq  int64
}

// NewChatService wires the engine and seeds the store with one default
// session so the shell never observes an empty store.
func NewChatService(
	store contract.ISessionStore,
	generalResponder agent.Responder,
	quizResponder agent.Responder,
	docCatalog *catalog.Catalog,
	publisher IPublisherService,
	natsPub *pktNats.Publisher,
	sysLogger logger.ILogger,
) IChatService {
	cs := &chatService{
		store:            store,
		generalResponder: generalResponder,
		quizResponder:    quizResponder,
		docCatalog:       docCatalog,
		publisher:        publisher,
		natsPub:          natsPub,
		logger:           sysLogger,
		pending:          make(map[uuid.UUID]context.CancelFunc),
	}

	cs.mu.Lock()
	if cs.store.Len() == 0 {
		cs.createSessionLocked(constant.ChatModeGeneral)
	}
	cs.mu.Unlock()

	return cs
}

// CreateSession appends a fresh session seeded with the welcome message and
// makes it active. Never fails.
func (cs *chatService) CreateSession(ctx context.Context, mode string) (*dto.SessionResponse, error) {
	mode, err := normalizeMode(mode)
	if err != nil {
		return nil, err
	}

	cs.mu.Lock()
	session := cs.createSessionLocked(mode)
	response := mapper.ToSessionResponse(session)
	cs.mu.Unlock()

	cs.publishStateChanged()
	cs.publishLifecycle(ctx, events.NewSessionCreated(session.Id, mode))

	cs.logger.Info("ChatService", "Session created", map[string]interface{}{
		"session_id": session.Id.String(),
		"mode":       mode,
	})

	return response, nil
}

// GetAllSessions lists sessions by UpdatedAt descending, insertion order
// breaking ties.
func (cs *chatService) GetAllSessions(ctx context.Context) ([]*dto.SessionResponse, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	sessions := cs.listByRecencyLocked()
	response := make([]*dto.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		response = append(response, mapper.ToSessionResponse(s))
	}
	return response, nil
}

func (cs *chatService) GetChatHistory(ctx context.Context, sessionId uuid.UUID) ([]*dto.ChatMessageDTO, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	session, found := cs.store.Get(sessionId)
	if !found {
		return nil, ErrSessionNotFound
	}
	return mapper.ToChatMessageDTOs(session.Messages), nil
}

// SendChat appends the user message, flips the session busy and hands the
// turn to the general responder. Returns immediately; the reply lands
// asynchronously.
func (cs *chatService) SendChat(ctx context.Context, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	text := strings.TrimSpace(request.Chat)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	cs.mu.Lock()
	session, found := cs.store.Get(request.ChatSessionId)
	if !found {
		cs.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	if session.Busy {
		cs.mu.Unlock()
		return nil, ErrSessionBusy
	}

	if session.Title == constant.ChatTitleSentinel {
		session.Title = generalTitle(text)
	}

	now := time.Now()
	userMessage := cs.newMessageLocked(constant.ChatMessageSenderUser, text, nil, now)
	session.Messages = append(session.Messages, userMessage)
	session.Busy = true
	session.UpdatedAt = now
	cs.store.Save(session)

	responderCtx, cancel := context.WithCancel(context.Background())
	cs.pending[session.Id] = cancel

	response := &dto.SendChatResponse{
		ChatSessionId:    session.Id,
		ChatSessionTitle: session.Title,
		Mode:             session.Mode,
		Busy:             session.Busy,
		Sent:             mapper.ToChatMessageDTO(&userMessage),
	}
	cs.mu.Unlock()

	cs.publishStateChanged()

	go cs.awaitReply(responderCtx, session.Id, cs.generalResponder, agent.Submission{
		SessionId: session.Id,
		Prompt:    text,
	})

	return response, nil
}

// SendQuizRequest is the quiz-mode counterpart of SendChat. The user turn is
// rendered the way the client renders it, documents included.
func (cs *chatService) SendQuizRequest(ctx context.Context, request *dto.SendQuizRequest) (*dto.SendChatResponse, error) {
	prompt := strings.TrimSpace(request.Prompt)
	if prompt == "" {
		return nil, ErrEmptyMessage
	}

	documents := make([]string, 0, len(request.Documents))
	for _, d := range request.Documents {
		if d = strings.TrimSpace(d); d != "" {
			documents = append(documents, d)
		}
	}
	if len(documents) == 0 {
		return nil, ErrNoDocuments
	}

	cs.mu.Lock()
	session, found := cs.store.Get(request.ChatSessionId)
	if !found {
		cs.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	if session.Busy {
		cs.mu.Unlock()
		return nil, ErrSessionBusy
	}

	if session.Title == constant.ChatTitleSentinel {
		session.Title = quizTitle(documents)
	}

	text := "[Quiz Request]\nDocuments: " + strings.Join(documents, ", ") + "\n\n" + prompt

	now := time.Now()
	userMessage := cs.newMessageLocked(constant.ChatMessageSenderUser, text, nil, now)
	session.Messages = append(session.Messages, userMessage)
	session.Busy = true
	session.UpdatedAt = now
	cs.store.Save(session)

	responderCtx, cancel := context.WithCancel(context.Background())
	cs.pending[session.Id] = cancel

	response := &dto.SendChatResponse{
		ChatSessionId:    session.Id,
		ChatSessionTitle: session.Title,
		Mode:             session.Mode,
		Busy:             session.Busy,
		Sent:             mapper.ToChatMessageDTO(&userMessage),
	}
	cs.mu.Unlock()

	cs.publishStateChanged()

	go cs.awaitReply(responderCtx, session.Id, cs.quizResponder, agent.Submission{
		SessionId: session.Id,
		Prompt:    prompt,
		Documents: documents,
	})

	return response, nil
}

// SwitchMode flips the responder strategy for a session. Switching to the
// current mode is a no-op; a real switch appends one announcement message.
func (cs *chatService) SwitchMode(ctx context.Context, request *dto.SwitchModeRequest) (*dto.SessionResponse, error) {
	mode, err := normalizeMode(request.Mode)
	if err != nil {
		return nil, err
	}

	cs.mu.Lock()
	session, found := cs.store.Get(request.ChatSessionId)
	if !found {
		cs.mu.Unlock()
		return nil, ErrSessionNotFound
	}

	if session.Mode == mode {
		response := mapper.ToSessionResponse(session)
		cs.mu.Unlock()
		return response, nil
	}

	announcement := constant.ChatModeSwitchGeneralMessage
	if mode == constant.ChatModeQuiz {
		announcement = constant.ChatModeSwitchQuizMessage
	}

	now := time.Now()
	session.Mode = mode
	session.Messages = append(session.Messages, cs.newMessageLocked(constant.ChatMessageSenderAgent, announcement, nil, now))
	session.UpdatedAt = now
	cs.store.Save(session)
	response := mapper.ToSessionResponse(session)
	cs.mu.Unlock()

	cs.publishStateChanged()

	return response, nil
}

// SelectSession moves the active pointer. Unknown ids are ignored.
func (cs *chatService) SelectSession(ctx context.Context, sessionId uuid.UUID) error {
	cs.mu.Lock()
	_, found := cs.store.Get(sessionId)
	if found {
		cs.store.SetActive(sessionId)
	}
	cs.mu.Unlock()

	if found {
		cs.publishStateChanged()
	}
	return nil
}

// DeleteSession removes a session and cancels any outstanding responder call
// for it. If the active session goes away, activation falls over to the most
// recently updated survivor; deleting the last session creates and activates
// a fresh default one in the same critical section, so the store is never
// observed empty.
func (cs *chatService) DeleteSession(ctx context.Context, sessionId uuid.UUID) error {
	cs.mu.Lock()
	session, found := cs.store.Get(sessionId)
	if !found {
		cs.mu.Unlock()
		return nil
	}

	if cancel, ok := cs.pending[sessionId]; ok {
		cancel()
		delete(cs.pending, sessionId)
	}

	activeId, hasActive := cs.store.Active()
	cs.store.Delete(sessionId)

	if hasActive && activeId == sessionId {
		if remaining := cs.listByRecencyLocked(); len(remaining) > 0 {
			cs.store.SetActive(remaining[0].Id)
		}
	}
	if cs.store.Len() == 0 {
		cs.createSessionLocked(constant.ChatModeGeneral)
	}
	cs.mu.Unlock()

	cs.publishStateChanged()
	cs.publishLifecycle(ctx, events.NewSessionDeleted(session.Id))

	cs.logger.Info("ChatService", "Session deleted", map[string]interface{}{
		"session_id": sessionId.String(),
	})

	return nil
}

// Snapshot renders the whole store for the shell: recency-ordered sessions
// plus the active pointer.
func (cs *chatService) Snapshot(ctx context.Context) *dto.StoreSnapshotResponse {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.snapshotLocked()
}

func (cs *chatService) GetAvailableDocuments(ctx context.Context) []string {
	return cs.docCatalog.List()
}

// awaitReply runs in its own goroutine. It blocks on the responder, then
// re-enters the lock; a session deleted mid-flight makes the reply a no-op.
func (cs *chatService) awaitReply(ctx context.Context, sessionId uuid.UUID, responder agent.Responder, sub agent.Submission) {
	reply, err := responder.Respond(ctx, sub)

	cs.mu.Lock()
	delete(cs.pending, sessionId)

	session, found := cs.store.Get(sessionId)
	if !found {
		cs.mu.Unlock()
		cs.logger.Info("ChatService", "Discarding reply for deleted session", map[string]interface{}{
			"session_id": sessionId.String(),
		})
		return
	}

	now := time.Now()
	switch {
	case err != nil:
		cs.logger.Error("ChatService", "Responder failed", map[string]interface{}{
			"session_id": sessionId.String(),
			"error":      err.Error(),
		})
		session.Messages = append(session.Messages, cs.newMessageLocked(constant.ChatMessageSenderAgent, constant.ChatResponderFailureMessage, nil, now))
	case reply.Quiz != nil:
		session.Messages = append(session.Messages, cs.newMessageLocked(constant.ChatMessageSenderAgent, "", reply.Quiz, now))
	default:
		session.Messages = append(session.Messages, cs.newMessageLocked(constant.ChatMessageSenderAgent, reply.Text, nil, now))
	}
	session.Busy = false
	session.UpdatedAt = now
	cs.store.Save(session)
	cs.mu.Unlock()

	cs.publishStateChanged()
}

// createSessionLocked builds, stores and activates a session holding only
// the welcome message. Callers hold cs.mu.
func (cs *chatService) createSessionLocked(mode string) *entity.ChatSession {
	now := time.Now()
	session := &entity.ChatSession{
		Id:        uuid.New(),
		Title:     constant.ChatTitleSentinel,
		Mode:      mode,
		CreatedAt: now,
		UpdatedAt: now,
	}
	session.Messages = append(session.Messages, cs.newMessageLocked(constant.ChatMessageSenderAgent, constant.ChatWelcomeMessage, nil, now))

	cs.store.Save(session)
	cs.store.SetActive(session.Id)
	return session
}

func (cs *chatService) newMessageLocked(sender, text string, quiz *entity.Quiz, at time.Time) entity.ChatMessage {
	cs.msgSeq++
	kind := constant.ChatMessageKindText
	if quiz != nil {
		kind = constant.ChatMessageKindQuiz
	}
	return entity.ChatMessage{
		Id:        uuid.New(),
		Kind:      kind,
		Text:      text,
		Quiz:      quiz,
		Sender:    sender,
		Seq:       cs.msgSeq,
		CreatedAt: at,
	}
}

func (cs *chatService) listByRecencyLocked() []*entity.ChatSession {
	sessions := cs.store.All() // insertion order
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions
}

func (cs *chatService) snapshotLocked() *dto.StoreSnapshotResponse {
	sessions := cs.listByRecencyLocked()
	response := &dto.StoreSnapshotResponse{
		Sessions: make([]*dto.SessionResponse, 0, len(sessions)),
	}
	if activeId, ok := cs.store.Active(); ok {
		response.ActiveSessionId = activeId
	}
	for _, s := range sessions {
		response.Sessions = append(response.Sessions, mapper.ToSessionResponse(s))
	}
	return response
}

func (cs *chatService) publishStateChanged() {
	if cs.publisher == nil {
		return
	}

	cs.mu.Lock()
	snapshot := cs.snapshotLocked()
	cs.mu.Unlock()

	if err := cs.publisher.PublishStateChanged(snapshot); err != nil {
		cs.logger.Warn("ChatService", "Failed to publish state change", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (cs *chatService) publishLifecycle(ctx context.Context, event events.Event) {
	if cs.natsPub == nil {
		return
	}
	if err := cs.natsPub.Publish(ctx, event); err != nil {
		cs.logger.Warn("ChatService", "Failed to publish lifecycle event", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}

func normalizeMode(mode string) (string, error) {
	switch mode {
	case "":
		return constant.ChatModeGeneral, nil
	case constant.ChatModeGeneral, constant.ChatModeQuiz:
		return mode, nil
	default:
		return "", ErrInvalidMode
	}
}

// generalTitle derives the one-time session title from the first user
// message: everything up to 30 runes verbatim, longer texts cut to 27 runes
// plus an ellipsis.
func generalTitle(text string) string {
	runes := []rune(text)
	if len(runes) > 30 {
		return string(runes[:27]) + "…"
	}
	return text
}

// quizTitle derives the title from the first selected document name.
func quizTitle(documents []string) string {
	name := "Untitled"
	if len(documents) > 0 && documents[0] != "" {
		runes := []rune(documents[0])
		if len(runes) > 20 {
			runes = runes[:20]
		}
		name = string(runes)
	}
	return "Quiz: " + name + "…"
}
