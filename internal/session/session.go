// Package session provides the per-run conversation identifier for solace chat.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	idPrefix     = "session"
	suffixLength = 9
)

// ID is an opaque token correlating every request of one client run with
// the server-side conversation state. It is not a credential.
type ID string

// String returns the raw token.
func (id ID) String() string {
	return string(id)
}

// Generator builds session IDs. The zero value uses the wall clock and
// random UUIDs; tests swap both sources.
type Generator struct {
	Now    func() time.Time
	Random func() uuid.UUID
}

// New creates a session ID in format: session_<unix-millis>_<9-char-suffix>
func New() ID {
	return Generator{}.New()
}

// New creates a session ID from the generator's sources.
func (g Generator) New() ID {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	random := uuid.New
	if g.Random != nil {
		random = g.Random
	}

	u := random()
	suffix := strings.ReplaceAll(u.String(), "-", "")[:suffixLength]

	return ID(fmt.Sprintf("%s_%d_%s", idPrefix, now().UnixMilli(), suffix))
}
