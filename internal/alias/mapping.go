package alias

import (
	"time"

	"github.com/google/uuid"
)

// Mapping pairs a raw bank text pattern with the description the operator
// prefers. Patterns are unique regardless of case.
type Mapping struct {
	ID                   uuid.UUID
	RawPattern           string
	PreferredDescription string
	CreatedAt            time.Time
}
