package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"edubridge-chat-be/internal/constant"
	"edubridge-chat-be/internal/dto"
	"edubridge-chat-be/internal/repository/memory"
	"edubridge-chat-be/pkg/agent"
	"edubridge-chat-be/pkg/catalog"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type nopPublisher struct{}

func (nopPublisher) PublishStateChanged(snapshot *dto.StoreSnapshotResponse) error { return nil }

// stubResponder lets tests control latency and inject failures.
type stubResponder struct {
	reply *agent.Reply
	err   error
	delay time.Duration
}

func (s *stubResponder) Respond(ctx context.Context, sub agent.Submission) (*agent.Reply, error) {
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.reply != nil {
		return s.reply, nil
	}
	return &agent.Reply{Text: "ok"}, nil
}

func newTestEngine(general, quiz agent.Responder) IChatService {
	if general == nil {
		general = agent.NewGeneralResponder(5 * time.Millisecond)
	}
	if quiz == nil {
		quiz = agent.NewQuizResponder(5 * time.Millisecond)
	}
	return NewChatService(
		memory.NewSessionRepository(),
		general,
		quiz,
		catalog.NewStaticCatalog(),
		nopPublisher{},
		nil,
		nopLogger{},
	)
}

func activeSessionId(t *testing.T, svc IChatService) uuid.UUID {
	t.Helper()
	snapshot := svc.Snapshot(context.Background())
	require.NotEqual(t, uuid.Nil, snapshot.ActiveSessionId)
	return snapshot.ActiveSessionId
}

func sessionById(t *testing.T, svc IChatService, id uuid.UUID) *dto.SessionResponse {
	t.Helper()
	sessions, err := svc.GetAllSessions(context.Background())
	require.NoError(t, err)
	for _, s := range sessions {
		if s.Id == id {
			return s
		}
	}
	return nil
}

func waitIdle(t *testing.T, svc IChatService, id uuid.UUID) {
	t.Helper()
	require.Eventually(t, func() bool {
		sessions, err := svc.GetAllSessions(context.Background())
		if err != nil {
			return false
		}
		for _, s := range sessions {
			if s.Id == id {
				return !s.Busy
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)
}

func TestEngineSeedsDefaultSession(t *testing.T) {
	svc := newTestEngine(nil, nil)

	snapshot := svc.Snapshot(context.Background())
	require.Len(t, snapshot.Sessions, 1)

	s := snapshot.Sessions[0]
	assert.Equal(t, snapshot.ActiveSessionId, s.Id)
	assert.Equal(t, constant.ChatTitleSentinel, s.Title)
	assert.Equal(t, constant.ChatModeGeneral, s.Mode)
	assert.False(t, s.Busy)

	history, err := svc.GetChatHistory(context.Background(), s.Id)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, constant.ChatMessageSenderAgent, history[0].Sender)
	assert.Equal(t, constant.ChatWelcomeMessage, history[0].Text)
}

func TestCreateSessionActivates(t *testing.T) {
	svc := newTestEngine(nil, nil)

	created, err := svc.CreateSession(context.Background(), constant.ChatModeQuiz)
	require.NoError(t, err)
	assert.Equal(t, constant.ChatModeQuiz, created.Mode)
	assert.Equal(t, constant.ChatTitleSentinel, created.Title)
	assert.Equal(t, 1, created.MessageCount)

	snapshot := svc.Snapshot(context.Background())
	assert.Equal(t, created.Id, snapshot.ActiveSessionId)
	assert.Len(t, snapshot.Sessions, 2)
}

func TestCreateSessionRejectsUnknownMode(t *testing.T) {
	svc := newTestEngine(nil, nil)

	_, err := svc.CreateSession(context.Background(), "oracle")
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestDeleteUnknownSessionIsNoop(t *testing.T) {
	svc := newTestEngine(nil, nil)
	before := svc.Snapshot(context.Background())

	require.NoError(t, svc.DeleteSession(context.Background(), uuid.New()))

	after := svc.Snapshot(context.Background())
	assert.Equal(t, before.ActiveSessionId, after.ActiveSessionId)
	assert.Len(t, after.Sessions, len(before.Sessions))
}

func TestDeleteActiveSessionFallsOverToMostRecent(t *testing.T) {
	svc := newTestEngine(nil, nil)

	first, err := svc.CreateSession(context.Background(), "")
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	second, err := svc.CreateSession(context.Background(), "")
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	third, err := svc.CreateSession(context.Background(), "")
	require.NoError(t, err)

	require.Equal(t, third.Id, activeSessionId(t, svc))
	require.NoError(t, svc.DeleteSession(context.Background(), third.Id))

	// Most recently updated survivor takes over.
	assert.Equal(t, second.Id, activeSessionId(t, svc))
	assert.NotNil(t, sessionById(t, svc, first.Id))
	assert.Nil(t, sessionById(t, svc, third.Id))
}

func TestDeleteLastSessionRecreatesDefault(t *testing.T) {
	svc := newTestEngine(nil, nil)
	original := activeSessionId(t, svc)

	require.NoError(t, svc.DeleteSession(context.Background(), original))

	snapshot := svc.Snapshot(context.Background())
	require.Len(t, snapshot.Sessions, 1)
	replacement := snapshot.Sessions[0]
	assert.NotEqual(t, original, replacement.Id)
	assert.Equal(t, replacement.Id, snapshot.ActiveSessionId)
	assert.Equal(t, constant.ChatModeGeneral, replacement.Mode)
	assert.Equal(t, 1, replacement.MessageCount)
}

func TestSelectSessionIgnoresUnknownId(t *testing.T) {
	svc := newTestEngine(nil, nil)
	active := activeSessionId(t, svc)

	require.NoError(t, svc.SelectSession(context.Background(), uuid.New()))
	assert.Equal(t, active, activeSessionId(t, svc))
}

func TestSelectSessionMovesActivePointer(t *testing.T) {
	svc := newTestEngine(nil, nil)
	first := activeSessionId(t, svc)

	second, err := svc.CreateSession(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, second.Id, activeSessionId(t, svc))

	require.NoError(t, svc.SelectSession(context.Background(), first))
	assert.Equal(t, first, activeSessionId(t, svc))
}

func TestAutoTitleFiresExactlyOnce(t *testing.T) {
	svc := newTestEngine(nil, nil)
	id := activeSessionId(t, svc)

	res, err := svc.SendChat(context.Background(), &dto.SendChatRequest{
		ChatSessionId: id,
		Chat:          "What is active learning?",
	})
	require.NoError(t, err)
	assert.Equal(t, "What is active learning?", res.ChatSessionTitle)
	waitIdle(t, svc, id)

	res, err = svc.SendChat(context.Background(), &dto.SendChatRequest{
		ChatSessionId: id,
		Chat:          "Tell me more",
	})
	require.NoError(t, err)
	assert.Equal(t, "What is active learning?", res.ChatSessionTitle)
	waitIdle(t, svc, id)
}

func TestGeneralTitle(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "short text kept verbatim",
			text: "What is active learning?",
			want: "What is active learning?",
		},
		{
			name: "exactly thirty runes kept verbatim",
			text: "123456789012345678901234567890",
			want: "123456789012345678901234567890",
		},
		{
			name: "long text truncated with ellipsis",
			text: "Explain the difference between speed and velocity",
			want: "Explain the difference betw…",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, generalTitle(tt.text))
		})
	}
}

func TestQuizTitle(t *testing.T) {
	tests := []struct {
		name      string
		documents []string
		want      string
	}{
		{
			name:      "short document name",
			documents: []string{"Geometry 101.pdf"},
			want:      "Quiz: Geometry 101.pdf…",
		},
		{
			name:      "long document name truncated",
			documents: []string{"World History - 20th Century.pdf"},
			want:      "Quiz: World History - 20th…",
		},
		{
			name:      "no documents falls back",
			documents: nil,
			want:      "Quiz: Untitled…",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, quizTitle(tt.documents))
		})
	}
}

func TestSwitchModeIsIdempotentForSameMode(t *testing.T) {
	svc := newTestEngine(nil, nil)
	id := activeSessionId(t, svc)

	before, err := svc.GetChatHistory(context.Background(), id)
	require.NoError(t, err)

	res, err := svc.SwitchMode(context.Background(), &dto.SwitchModeRequest{
		ChatSessionId: id,
		Mode:          constant.ChatModeGeneral,
	})
	require.NoError(t, err)
	assert.Equal(t, constant.ChatModeGeneral, res.Mode)

	after, err := svc.GetChatHistory(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}

func TestSwitchModeAppendsAnnouncement(t *testing.T) {
	svc := newTestEngine(nil, nil)
	id := activeSessionId(t, svc)

	res, err := svc.SwitchMode(context.Background(), &dto.SwitchModeRequest{
		ChatSessionId: id,
		Mode:          constant.ChatModeQuiz,
	})
	require.NoError(t, err)
	assert.Equal(t, constant.ChatModeQuiz, res.Mode)

	history, err := svc.GetChatHistory(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, history, 2)
	last := history[len(history)-1]
	assert.Equal(t, constant.ChatMessageSenderAgent, last.Sender)
	assert.Equal(t, constant.ChatModeSwitchQuizMessage, last.Text)

	// Switching back announces the general assistant.
	_, err = svc.SwitchMode(context.Background(), &dto.SwitchModeRequest{
		ChatSessionId: id,
		Mode:          constant.ChatModeGeneral,
	})
	require.NoError(t, err)

	history, err = svc.GetChatHistory(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, constant.ChatModeSwitchGeneralMessage, history[len(history)-1].Text)
}

func TestSendChatRejectsInvalidSubmissions(t *testing.T) {
	svc := newTestEngine(nil, nil)
	id := activeSessionId(t, svc)

	_, err := svc.SendChat(context.Background(), &dto.SendChatRequest{ChatSessionId: id, Chat: "   "})
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = svc.SendChat(context.Background(), &dto.SendChatRequest{ChatSessionId: uuid.New(), Chat: "hi"})
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// No state mutated by the rejected submissions.
	history, err := svc.GetChatHistory(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestSendQuizRejectsMissingDocuments(t *testing.T) {
	svc := newTestEngine(nil, nil)
	id := activeSessionId(t, svc)

	_, err := svc.SendQuizRequest(context.Background(), &dto.SendQuizRequest{
		ChatSessionId: id,
		Prompt:        "10 MCQs on chapter 3",
		Documents:     []string{" ", ""},
	})
	assert.ErrorIs(t, err, ErrNoDocuments)

	history, err := svc.GetChatHistory(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestSendChatAppendsUserThenAgentReply(t *testing.T) {
	svc := newTestEngine(nil, nil)
	id := activeSessionId(t, svc)

	res, err := svc.SendChat(context.Background(), &dto.SendChatRequest{
		ChatSessionId: id,
		Chat:          "How do low-stakes quizzes help?",
	})
	require.NoError(t, err)
	assert.True(t, res.Busy)
	require.NotNil(t, res.Sent)
	assert.Equal(t, constant.ChatMessageSenderUser, res.Sent.Sender)
	assert.Equal(t, "How do low-stakes quizzes help?", res.Sent.Text)

	waitIdle(t, svc, id)

	history, err := svc.GetChatHistory(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, history, 3) // welcome, user, agent
	assert.Equal(t, constant.ChatMessageSenderUser, history[1].Sender)
	assert.Equal(t, constant.ChatMessageSenderAgent, history[2].Sender)
	assert.Equal(t, constant.ChatMessageKindText, history[2].Kind)
	assert.NotEmpty(t, history[2].Text)
}

func TestQuizSubmissionProducesQuizMessage(t *testing.T) {
	svc := newTestEngine(nil, nil)
	id := activeSessionId(t, svc)

	_, err := svc.SwitchMode(context.Background(), &dto.SwitchModeRequest{
		ChatSessionId: id,
		Mode:          constant.ChatModeQuiz,
	})
	require.NoError(t, err)

	res, err := svc.SendQuizRequest(context.Background(), &dto.SendQuizRequest{
		ChatSessionId: id,
		Prompt:        "10 MCQs on chapter 3",
		Documents:     []string{"Geometry 101.pdf"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Quiz: Geometry 101.pdf…", res.ChatSessionTitle)
	require.NotNil(t, res.Sent)
	assert.Contains(t, res.Sent.Text, "10 MCQs on chapter 3")
	assert.Contains(t, res.Sent.Text, "Geometry 101.pdf")

	waitIdle(t, svc, id)

	history, err := svc.GetChatHistory(context.Background(), id)
	require.NoError(t, err)
	last := history[len(history)-1]
	assert.Equal(t, constant.ChatMessageSenderAgent, last.Sender)
	assert.Equal(t, constant.ChatMessageKindQuiz, last.Kind)
	require.NotNil(t, last.Quiz)
	assert.Equal(t, []string{"Geometry 101.pdf"}, last.Quiz.DocumentSources)
	assert.GreaterOrEqual(t, len(last.Quiz.Questions), 1)
	for _, q := range last.Quiz.Questions {
		assert.GreaterOrEqual(t, len(q.Options), 2)
	}
}

func TestBusySessionRejectsSecondSubmission(t *testing.T) {
	slow := &stubResponder{delay: 100 * time.Millisecond}
	svc := newTestEngine(slow, nil)
	id := activeSessionId(t, svc)

	_, err := svc.SendChat(context.Background(), &dto.SendChatRequest{ChatSessionId: id, Chat: "first"})
	require.NoError(t, err)

	_, err = svc.SendChat(context.Background(), &dto.SendChatRequest{ChatSessionId: id, Chat: "second"})
	assert.ErrorIs(t, err, ErrSessionBusy)

	waitIdle(t, svc, id)

	// Only the first turn made it through: welcome, user, agent.
	history, err := svc.GetChatHistory(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestBusySessionDoesNotBlockOtherSessions(t *testing.T) {
	slow := &stubResponder{delay: 100 * time.Millisecond}
	svc := newTestEngine(slow, nil)
	first := activeSessionId(t, svc)

	second, err := svc.CreateSession(context.Background(), "")
	require.NoError(t, err)

	_, err = svc.SendChat(context.Background(), &dto.SendChatRequest{ChatSessionId: first, Chat: "slow one"})
	require.NoError(t, err)

	_, err = svc.SendChat(context.Background(), &dto.SendChatRequest{ChatSessionId: second.Id, Chat: "independent"})
	assert.NoError(t, err)

	waitIdle(t, svc, first)
	waitIdle(t, svc, second.Id)
}

func TestDeleteSessionDiscardsPendingReply(t *testing.T) {
	slow := &stubResponder{delay: 50 * time.Millisecond}
	svc := newTestEngine(slow, nil)
	id := activeSessionId(t, svc)

	_, err := svc.SendChat(context.Background(), &dto.SendChatRequest{ChatSessionId: id, Chat: "doomed"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSession(context.Background(), id))

	// Give the cancelled responder time to run its completion path.
	time.Sleep(120 * time.Millisecond)

	snapshot := svc.Snapshot(context.Background())
	require.Len(t, snapshot.Sessions, 1)
	replacement := snapshot.Sessions[0]
	assert.NotEqual(t, id, replacement.Id)
	assert.False(t, replacement.Busy)
	assert.Equal(t, 1, replacement.MessageCount) // welcome only, reply discarded
}

func TestResponderFailureAppendsErrorMessage(t *testing.T) {
	failing := &stubResponder{err: errors.New("model unavailable")}
	svc := newTestEngine(failing, nil)
	id := activeSessionId(t, svc)

	_, err := svc.SendChat(context.Background(), &dto.SendChatRequest{ChatSessionId: id, Chat: "anyone there?"})
	require.NoError(t, err)

	waitIdle(t, svc, id)

	history, err := svc.GetChatHistory(context.Background(), id)
	require.NoError(t, err)
	last := history[len(history)-1]
	assert.Equal(t, constant.ChatMessageSenderAgent, last.Sender)
	assert.Equal(t, constant.ChatResponderFailureMessage, last.Text)
}

func TestHistoryIsAppendOnly(t *testing.T) {
	svc := newTestEngine(nil, nil)
	id := activeSessionId(t, svc)

	before, err := svc.GetChatHistory(context.Background(), id)
	require.NoError(t, err)

	_, err = svc.SendChat(context.Background(), &dto.SendChatRequest{ChatSessionId: id, Chat: "grow"})
	require.NoError(t, err)
	waitIdle(t, svc, id)

	after, err := svc.GetChatHistory(context.Background(), id)
	require.NoError(t, err)
	require.Greater(t, len(after), len(before))
	for i := range before {
		assert.Equal(t, before[i].Id, after[i].Id)
	}
}

func TestListSessionsByRecency(t *testing.T) {
	svc := newTestEngine(nil, nil)
	first := activeSessionId(t, svc)

	time.Sleep(2 * time.Millisecond)
	second, err := svc.CreateSession(context.Background(), "")
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	third, err := svc.CreateSession(context.Background(), "")
	require.NoError(t, err)

	// Touch the oldest session so it jumps to the front.
	time.Sleep(2 * time.Millisecond)
	_, err = svc.SendChat(context.Background(), &dto.SendChatRequest{ChatSessionId: first, Chat: "bump"})
	require.NoError(t, err)
	waitIdle(t, svc, first)

	sessions, err := svc.GetAllSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, first, sessions[0].Id)
	assert.Equal(t, third.Id, sessions[1].Id)
	assert.Equal(t, second.Id, sessions[2].Id)
}

func TestGetAvailableDocuments(t *testing.T) {
	svc := newTestEngine(nil, nil)

	docs := svc.GetAvailableDocuments(context.Background())
	assert.NotEmpty(t, docs)
	assert.Contains(t, docs, "Geometry 101.pdf")
}
