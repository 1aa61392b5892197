package tool

import (
	"context"
	"errors"
	"time"
)

// InvokeOptions controls Invoke.
type InvokeOptions struct {
	// SkipValidation leaves required-parameter checking to the tool itself.
	SkipValidation bool
}

// Invoke validates args against the tool's parameters, executes it and
// reports the outcome to the process observer. It never retries.
func Invoke(ctx context.Context, t Tool, args map[string]any, opts InvokeOptions) (any, error) {
	if t == nil {
		return nil, errors.New("tool: nil tool")
	}
	if args == nil {
		args = map[string]any{}
	}

	start := time.Now()
	if !opts.SkipValidation {
		if err := Validate(t, args); err != nil {
			emitInvokeObservation(InvokeObservation{
				ToolName:   t.Name(),
				DurationMS: elapsedMS(start),
				ErrorCode:  ErrorCodeInvalidParams,
			})
			return nil, err
		}
	}

	result, err := t.Execute(ctx, args)
	observation := InvokeObservation{
		ToolName:   t.Name(),
		DurationMS: elapsedMS(start),
		Success:    err == nil,
	}
	if err != nil {
		observation.ErrorCode = codeOrDefault(err)
	}
	emitInvokeObservation(observation)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func elapsedMS(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
