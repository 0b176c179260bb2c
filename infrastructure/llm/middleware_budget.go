package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/ahrav/go-parley/internal/ports"
)

// SessionBudget tracks cumulative token consumption against a hard limit.
// It is shared across the middleware of every backend participating in one
// interview session.
type SessionBudget struct {
	mu       sync.Mutex
	limit    int
	consumed int
}

// NewSessionBudget creates a budget with the given token limit. A limit of
// zero or less disables enforcement.
func NewSessionBudget(limit int) *SessionBudget {
	return &SessionBudget{limit: limit}
}

// Consumed returns the total tokens recorded so far.
func (b *SessionBudget) Consumed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.consumed
}

// Remaining returns tokens left before the limit, or -1 when unlimited.
func (b *SessionBudget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.limit <= 0 {
		return -1
	}
	r := b.limit - b.consumed
	if r < 0 {
		r = 0
	}
	return r
}

func (b *SessionBudget) record(tokens int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consumed += tokens
}

func (b *SessionBudget) exhausted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.limit > 0 && b.consumed >= b.limit
}

// BudgetMiddleware rejects requests once the session budget is exhausted
// and records actual token usage after each successful request. Checks
// happen before the request so an exhausted session fails fast instead of
// burning provider quota.
func BudgetMiddleware(budget *SessionBudget) Middleware {
	return func(next CoreModel) CoreModel {
		return &budgetModel{next: next, budget: budget}
	}
}

type budgetModel struct {
	next   CoreModel
	budget *SessionBudget
}

func (m *budgetModel) DoGenerate(
	ctx context.Context,
	prompt string,
	opts map[string]any,
) (string, int, int, error) {
	if m.budget.exhausted() {
		return "", 0, 0, fmt.Errorf("%w: session budget consumed %d tokens",
			ports.ErrTokenLimitExceeded, m.budget.Consumed())
	}

	response, tokensIn, tokensOut, err := m.next.DoGenerate(ctx, prompt, opts)
	if err != nil {
		return "", 0, 0, err
	}

	m.budget.record(tokensIn + tokensOut)
	return response, tokensIn, tokensOut, nil
}

func (m *budgetModel) GetModel() string      { return m.next.GetModel() }
func (m *budgetModel) SetModel(model string) { m.next.SetModel(model) }
