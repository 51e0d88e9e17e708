// Package pagination implements keyset paging over (created_at, id).
// Cursor tokens are opaque to clients; the encoding can change between
// releases as long as in-flight tokens keep parsing.
package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultLimit applies when a request omits the limit.
	DefaultLimit = 25
	// MaxLimit caps the page size regardless of what was requested.
	MaxLimit = 100
)

// Params carries the raw paging inputs from a request.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor marks the last row of the previous page.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// Clamp folds a requested limit into [1, MaxLimit], substituting
// DefaultLimit for zero or negative values.
func Clamp(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// Probe is Clamp plus one row, so a repository can tell whether another
// page follows without a second query.
func Probe(limit int) int {
	return Clamp(limit) + 1
}

// Token serializes the cursor for the client.
func (c Cursor) Token() string {
	payload := fmt.Sprintf("%d:%s", c.CreatedAt.UTC().UnixNano(), c.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// Decode parses a client-supplied token. An empty token means the first
// page and decodes to nil without error.
func Decode(token string) (*Cursor, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	nanos, idPart, ok := strings.Cut(string(raw), ":")
	if !ok {
		return nil, fmt.Errorf("malformed cursor")
	}

	var unixNano int64
	if _, err := fmt.Sscanf(nanos, "%d", &unixNano); err != nil {
		return nil, fmt.Errorf("cursor timestamp: %w", err)
	}
	id, err := uuid.Parse(idPart)
	if err != nil {
		return nil, fmt.Errorf("cursor id: %w", err)
	}
	return &Cursor{CreatedAt: time.Unix(0, unixNano).UTC(), ID: id}, nil
}
