package contract

import (
	"edubridge-chat-be/internal/entity"

	"github.com/google/uuid"
)

// ISessionStore owns all chat sessions plus the active-session pointer.
// Unknown-id operations are no-ops; the service layer enforces the
// never-empty and active-always-valid invariants on top of this contract.
type ISessionStore interface {
	Save(session *entity.ChatSession)
	Get(id uuid.UUID) (*entity.ChatSession, bool)
	Delete(id uuid.UUID)
	All() []*entity.ChatSession
	Len() int
	SetActive(id uuid.UUID)
	Active() (uuid.UUID, bool)
}
