// Package audit keeps the append-only access log. Entries are emitted as a
// side effect of handling requests; a write failure never fails the
// operation that triggered it.
package audit

import (
	"time"

	"github.com/google/uuid"

	id "mobywatel/pkg/domain"
)

// Entry is one recorded access. ActorID is nil for unauthenticated calls
// such as registration and login attempts.
type Entry struct {
	ID          uuid.UUID
	ActorID     *id.UserID
	Timestamp   time.Time
	Description string
	Method      string
	Path        string
	Status      int
	UserAgent   string
}
