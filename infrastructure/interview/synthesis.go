package interview

import (
	"context"
	"errors"

	"github.com/ahrav/go-parley/internal/ports"
)

// synthesisSpec describes one generate-then-validate-then-fallback pass.
// Both the answer judge and the feedback aggregator synthesize structured
// content this way: ask the backend, parse, check completeness, and fall
// back to a deterministic result when the generated one is unusable.
type synthesisSpec[T any] struct {
	// prompt and system are sent to the backend.
	prompt string
	system string

	// options carries sampling parameters for the backend call.
	options map[string]any

	// parse converts raw model output into the target type. A parse error
	// triggers the fallback.
	parse func(raw string) (T, error)

	// valid reports whether the parsed result is structurally complete.
	valid func(result T) bool

	// fallback builds the deterministic replacement result.
	fallback func() T
}

// synthesize runs one generate-validate-fallback pass against the
// backend. The returned boolean
// reports whether the result came from generation (true) or the fallback
// (false). Only backend unavailability propagates as an error; every
// quality problem resolves to the fallback.
func synthesize[T any](ctx context.Context, backend ports.ModelBackend, spec synthesisSpec[T]) (T, bool, error) {
	options := make(map[string]any, len(spec.options)+1)
	for k, v := range spec.options {
		options[k] = v
	}
	if spec.system != "" {
		options["system"] = spec.system
	}

	raw, err := backend.Generate(ctx, spec.prompt, options)
	if err != nil {
		if errors.Is(err, ports.ErrModelNotLoaded) {
			var zero T
			return zero, false, err
		}
		return spec.fallback(), false, nil
	}

	result, err := spec.parse(raw)
	if err != nil || !spec.valid(result) {
		return spec.fallback(), false, nil
	}
	return result, true, nil
}
