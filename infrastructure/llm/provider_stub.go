package llm

import (
	"context"
	"hash/fnv"
	"sync"
)

func init() {
	RegisterProviderFactory("stub", func(config BackendConfig) (CoreModel, error) {
		return NewStubProvider(config), nil
	})
}

// stubBank holds canned interview questions the stub cycles through.
// Each entry satisfies the downstream question validator so the stub can
// drive the full pipeline offline.
var stubBank = []string{
	"Can you walk me through how you approached that problem?",
	"What trade-offs did you consider when you made that decision?",
	"How would you handle a failure in that part of your system?",
	"Could you share an example of when that approach worked well for you?",
	"What would you do differently if you had to build it again?",
	"How did you measure whether your solution was successful?",
	"Tell me more about how your team divided that work, would you?",
	"What was the hardest bug you encountered there, and how did you fix it?",
}

// StubProvider is a deterministic CoreModel used by tests and the offline
// simulator. The same prompt always yields the same response. Responses can
// be scripted per instance to exercise specific pipeline paths.
type StubProvider struct {
	BaseProvider

	mu       sync.Mutex
	scripted []string
	next     int

	// Err, when set, is returned by every DoGenerate call.
	Err error

	calls int
}

// NewStubProvider creates a stub provider. Without a script it answers from
// a canned question bank keyed off the prompt.
func NewStubProvider(config BackendConfig) *StubProvider {
	return &StubProvider{BaseProvider: NewBaseProvider(config.Model)}
}

// Script queues responses to be returned in order. Once the script is
// exhausted the stub falls back to the canned bank.
func (p *StubProvider) Script(responses ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scripted = append(p.scripted, responses...)
}

// Calls returns how many generate requests the stub has served.
func (p *StubProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// DoGenerate returns the next scripted response, or a bank entry selected
// by prompt hash. Token counts use the simple 4-chars-per-token estimate.
func (p *StubProvider) DoGenerate(
	ctx context.Context,
	prompt string,
	options map[string]any,
) (string, int, int, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, 0, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++

	if p.Err != nil {
		return "", 0, 0, p.Err
	}

	var response string
	if p.next < len(p.scripted) {
		response = p.scripted[p.next]
		p.next++
	} else {
		h := fnv.New32a()
		h.Write([]byte(prompt))
		response = stubBank[int(h.Sum32())%len(stubBank)]
	}

	return response, (len(prompt) + 3) / 4, (len(response) + 3) / 4, nil
}
