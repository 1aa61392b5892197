package tool

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type recordingObserver struct {
	mu          sync.Mutex
	invocations []InvokeObservation
	discoveries []DiscoveryObservation
}

func (o *recordingObserver) ObserveInvoke(observation InvokeObservation) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.invocations = append(o.invocations, observation)
}

func (o *recordingObserver) ObserveDiscovery(observation DiscoveryObservation) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.discoveries = append(o.discoveries, observation)
}

func TestInvokeValidatesBeforeExecute(t *testing.T) {
	observer := &recordingObserver{}
	SetObserver(observer)
	defer SetObserver(nil)

	tl := newStubTool("weather", map[string]ParamSpec{
		"city": {Type: TypeString, Required: true},
	})

	_, err := Invoke(context.Background(), tl, nil, InvokeOptions{})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Invoke() error = %v, want *ValidationError", err)
	}
	if tl.calls != 0 {
		t.Fatalf("Execute calls = %d, want 0", tl.calls)
	}
	if len(observer.invocations) != 1 || observer.invocations[0].ErrorCode != ErrorCodeInvalidParams {
		t.Fatalf("observations = %+v, want one INVALID_PARAMS", observer.invocations)
	}
}

func TestInvokeSkipValidationCallsTool(t *testing.T) {
	tl := newStubTool("weather", map[string]ParamSpec{
		"city": {Type: TypeString, Required: true},
	})
	tl.result = "ok"

	got, err := Invoke(context.Background(), tl, nil, InvokeOptions{SkipValidation: true})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if got != "ok" || tl.calls != 1 {
		t.Fatalf("Invoke() = %v (calls %d), want ok (1)", got, tl.calls)
	}
}

func TestInvokeReportsToolErrorCode(t *testing.T) {
	observer := &recordingObserver{}
	SetObserver(observer)
	defer SetObserver(nil)

	tl := newStubTool("weather", nil)
	tl.err = Errorf(ErrorCodeTimeout, "Request timed out")

	_, err := Invoke(context.Background(), tl, map[string]any{}, InvokeOptions{})
	if err == nil || err.Error() != "Request timed out" {
		t.Fatalf("Invoke() error = %v, want Request timed out", err)
	}
	if len(observer.invocations) != 1 {
		t.Fatalf("observations = %d, want 1", len(observer.invocations))
	}
	got := observer.invocations[0]
	if got.Success || got.ErrorCode != ErrorCodeTimeout || got.ToolName != "weather" {
		t.Fatalf("observation = %+v, want failed TIMEOUT for weather", got)
	}
}

func TestInvokeGenericErrorFallsBackToInvocationFailed(t *testing.T) {
	observer := &recordingObserver{}
	SetObserver(observer)
	defer SetObserver(nil)

	tl := newStubTool("broken", nil)
	tl.err = errors.New("boom")

	if _, err := Invoke(context.Background(), tl, nil, InvokeOptions{}); err == nil {
		t.Fatal("Invoke() error = nil, want boom")
	}
	if observer.invocations[0].ErrorCode != ErrorCodeInvocationFailed {
		t.Fatalf("ErrorCode = %q, want %q", observer.invocations[0].ErrorCode, ErrorCodeInvocationFailed)
	}
}

func TestInvokeNilTool(t *testing.T) {
	if _, err := Invoke(context.Background(), nil, nil, InvokeOptions{}); err == nil {
		t.Fatal("Invoke(nil) error = nil, want error")
	}
}
