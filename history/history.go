// Package history keeps a ledger of tool invocations.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/petal-labs/cursortools/tool"
)

// Record is one tool invocation. Args are stored masked.
type Record struct {
	ID         string         `json:"id"`
	Tool       string         `json:"tool"`
	Args       map[string]any `json:"args,omitempty"`
	Result     string         `json:"result,omitempty"`
	Error      string         `json:"error,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	DurationMS int64          `json:"duration_ms"`
}

// Succeeded reports whether the invocation returned without error.
func (r Record) Succeeded() bool {
	return r.Error == ""
}

// Store persists invocation records.
type Store interface {
	Append(ctx context.Context, rec Record) error
	// List returns the most recent records first, at most limit of them.
	// A limit <= 0 returns every record.
	List(ctx context.Context, limit int) ([]Record, error)
	Close() error
}

// NewRecord builds a record for an invocation of t that started at
// startedAt. Sensitive args are masked using the tool's parameter specs.
func NewRecord(t tool.Tool, args map[string]any, result any, err error, startedAt time.Time) Record {
	rec := Record{
		ID:         uuid.New().String(),
		StartedAt:  startedAt.UTC(),
		DurationMS: time.Since(startedAt).Milliseconds(),
	}
	if t != nil {
		rec.Tool = t.Name()
		rec.Args = tool.MaskArgs(t.Parameters(), args)
	} else {
		rec.Args = args
	}
	if err != nil {
		rec.Error = err.Error()
		return rec
	}
	rec.Result = FormatResult(result)
	return rec
}

// FormatResult renders a tool result as text. Strings and fmt.Stringers are
// used as-is, everything else is encoded as JSON.
func FormatResult(result any) string {
	switch v := result.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprint(result)
	}
	return string(data)
}
