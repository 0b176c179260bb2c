package llm

import "sync"

// BaseProvider supplies the model bookkeeping every provider adapter needs.
// Providers embed it and implement DoGenerate on top.
type BaseProvider struct {
	mu    sync.RWMutex
	model string
}

// NewBaseProvider creates the common provider state.
func NewBaseProvider(model string) BaseProvider {
	return BaseProvider{model: model}
}

// GetModel returns the currently configured model name.
func (p *BaseProvider) GetModel() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.model
}

// SetModel updates the model used for subsequent requests.
func (p *BaseProvider) SetModel(model string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.model = model
}
