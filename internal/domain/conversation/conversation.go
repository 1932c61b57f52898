// Package conversation holds prior chat turns passed along with a new message.
package conversation

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/docrag/internal/domain"
)

// Role is the speaker of a turn.
type Role string

// Turn roles.
const (
	User      Role = "user"
	Assistant Role = "assistant"
)

// Turn is one message of a conversation.
type Turn struct {
	Role    Role
	Content string
}

// NewTurn normalises the role and validates the turn.
func NewTurn(role, content string) (Turn, error) {
	r := Role(strings.ToLower(strings.TrimSpace(role)))
	if r == "" {
		r = User
	}
	if r != User && r != Assistant {
		return Turn{}, fmt.Errorf("role %q: %w", role, domain.ErrInvalidInput)
	}
	return Turn{Role: r, Content: content}, nil
}

// Label returns the capitalised role used in prompts.
func (t Turn) Label() string {
	if t.Role == Assistant {
		return "Assistant"
	}
	return "User"
}

// Last returns at most n trailing turns. n <= 0 returns nil.
func Last(turns []Turn, n int) []Turn {
	if n <= 0 || len(turns) == 0 {
		return nil
	}
	if len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}
