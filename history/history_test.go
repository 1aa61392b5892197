package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/petal-labs/cursortools/tool"
)

type secretTool struct {
	tool.Base
}

func (*secretTool) Parameters() map[string]tool.ParamSpec {
	return map[string]tool.ParamSpec{
		"query": {Type: tool.TypeString, Required: true},
		"token": {Type: tool.TypeString, Sensitive: true},
	}
}

func (*secretTool) Execute(context.Context, map[string]any) (any, error) {
	return "ok", nil
}

func newSQLiteHistoryStore(t *testing.T) *SQLiteStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "nested", "history.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestNewRecordMasksSensitiveArgs(t *testing.T) {
	st := &secretTool{Base: tool.NewBase("search", "")}
	rec := NewRecord(st, map[string]any{"query": "go", "token": "s3cr3t"}, "ok", nil, time.Now())

	if rec.ID == "" {
		t.Fatal("ID is empty")
	}
	if rec.Tool != "search" {
		t.Fatalf("Tool = %q, want search", rec.Tool)
	}
	if rec.Args["token"] != tool.MaskedSecretValue {
		t.Fatalf("token = %v, want masked", rec.Args["token"])
	}
	if rec.Args["query"] != "go" {
		t.Fatalf("query = %v, want go", rec.Args["query"])
	}
	if rec.Result != "ok" || !rec.Succeeded() {
		t.Fatalf("record = %+v, want successful ok", rec)
	}
}

func TestNewRecordKeepsErrorMessage(t *testing.T) {
	rec := NewRecord(nil, nil, "ignored", errors.New("Invalid API key"), time.Now())
	if rec.Succeeded() {
		t.Fatal("Succeeded() = true, want false")
	}
	if rec.Error != "Invalid API key" || rec.Result != "" {
		t.Fatalf("record = %+v", rec)
	}
}

func TestFormatResult(t *testing.T) {
	if got := FormatResult("Echo: hello"); got != "Echo: hello" {
		t.Fatalf("FormatResult(string) = %q", got)
	}
	if got := FormatResult(map[string]int{"n": 1}); got != `{"n":1}` {
		t.Fatalf("FormatResult(map) = %q", got)
	}
	if got := FormatResult(nil); got != "" {
		t.Fatalf("FormatResult(nil) = %q", got)
	}
}

func TestSQLiteStoreAppendListRoundTrip(t *testing.T) {
	store := newSQLiteHistoryStore(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)

	first := Record{
		ID:         "first",
		Tool:       "example_tool",
		Args:       map[string]any{"message": "hello"},
		Result:     "Echo: hello",
		StartedAt:  base,
		DurationMS: 3,
	}
	second := Record{
		ID:        "second",
		Tool:      "weather",
		Error:     "Invalid API key",
		StartedAt: base.Add(500 * time.Millisecond),
	}
	for _, rec := range []Record{first, second} {
		if err := store.Append(ctx, rec); err != nil {
			t.Fatalf("Append(%s) error = %v", rec.ID, err)
		}
	}

	got, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List() len = %d, want 2", len(got))
	}
	if got[0].ID != "second" || got[1].ID != "first" {
		t.Fatalf("List() order = %s, %s, want newest first", got[0].ID, got[1].ID)
	}
	if got[1].Args["message"] != "hello" || got[1].Result != "Echo: hello" || got[1].DurationMS != 3 {
		t.Fatalf("first record = %+v", got[1])
	}
	if !got[1].StartedAt.Equal(base) {
		t.Fatalf("StartedAt = %v, want %v", got[1].StartedAt, base)
	}
	if got[0].Args != nil || got[0].Error != "Invalid API key" {
		t.Fatalf("second record = %+v", got[0])
	}

	limited, err := store.List(ctx, 1)
	if err != nil {
		t.Fatalf("List(1) error = %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "second" {
		t.Fatalf("List(1) = %+v, want [second]", limited)
	}
}

func TestSQLiteStoreRejectsMissingID(t *testing.T) {
	store := newSQLiteHistoryStore(t)
	if err := store.Append(context.Background(), Record{Tool: "x"}); err == nil {
		t.Fatal("Append() error = nil, want missing id")
	}
}

func TestSQLiteStoreHonorsCanceledContext(t *testing.T) {
	store := newSQLiteHistoryStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.List(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("List() error = %v, want context.Canceled", err)
	}
}

func TestNewSQLiteStoreRequiresDSN(t *testing.T) {
	if _, err := NewSQLiteStore("  "); err == nil {
		t.Fatal("NewSQLiteStore() error = nil, want dsn required")
	}
}
