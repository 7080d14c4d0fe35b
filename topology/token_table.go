package topology

import (
	"fmt"

	"github.com/bobuhiro11/dyntables/acpi"
	"github.com/bobuhiro11/dyntables/aml"
	"github.com/bobuhiro11/dyntables/platform"
)

// tokenTable gives each distinct token a dense index, in the order the
// tokens are first added.
type tokenTable struct {
	tokens   []platform.Token
	capacity int
}

func newTokenTable(capacity uint32) (*tokenTable, error) {
	if capacity == 0 || capacity > aml.MaxIndexName {
		return nil, fmt.Errorf("token table capacity %d: %w", capacity, acpi.ErrInvalidParameter)
	}

	return &tokenTable{
		tokens:   make([]platform.Token, 0, capacity),
		capacity: int(capacity),
	}, nil
}

// add returns the index of token, adding it if it was never seen.
func (t *tokenTable) add(token platform.Token) (uint32, error) {
	for i, v := range t.tokens {
		if v == token {
			return uint32(i), nil
		}
	}

	if len(t.tokens) >= t.capacity {
		return 0, fmt.Errorf("token table full (%d) adding %#x: %w", t.capacity, token, acpi.ErrInternal)
	}

	t.tokens = append(t.tokens, token)

	return uint32(len(t.tokens) - 1), nil
}

func (t *tokenTable) len() int {
	if t == nil {
		return 0
	}

	return len(t.tokens)
}

func (t *tokenTable) token(index int) platform.Token {
	return t.tokens[index]
}

func (t *tokenTable) free() {
	if t == nil {
		return
	}

	t.tokens = nil
	t.capacity = 0
}
