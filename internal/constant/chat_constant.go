package constant

const (
	ChatMessageSenderUser  = "user"
	ChatMessageSenderAgent = "agent"

	ChatMessageKindText = "text"
	ChatMessageKindQuiz = "quiz"

	ChatModeGeneral = "general"
	ChatModeQuiz    = "quiz"

	// A fresh session keeps this title until the auto-titling rename fires.
	ChatTitleSentinel = "New Chat"

	ChatWelcomeMessage = "Hello! I'm your EduBridge assistant. How can I help you today?"

	ChatModeSwitchGeneralMessage = "Switched to General Assistant. How can I help?"
	ChatModeSwitchQuizMessage    = "Switched to Quiz Generator. Select documents and describe the quiz you need."

	// Appended as a single agent message when a responder invocation fails,
	// so the session never ends a turn silently.
	ChatResponderFailureMessage = "Sorry, something went wrong while generating a response. Please try again."
)
