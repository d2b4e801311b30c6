package llm

import (
	"context"
	"fmt"
	"startup_academy_backend/internal/config"
	"sync"
)

// NewProvider 按配置创建 Provider。未配置 API Key 时返回 (nil, nil)，即离线模式
func NewProvider(ctx context.Context, cfg config.AIConfig) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "mock":
		return NewMockProvider(), nil
	case "", "gemini", "anthropic", "openai":
		if cfg.APIKey == "" {
			return nil, nil
		}
	default:
		return nil, fmt.Errorf("unknown AI provider: %q", cfg.Provider)
	}

	switch cfg.Provider {
	case "", "gemini":
		base, err = NewGeminiProvider(ctx, cfg.APIKey, cfg.Model)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.APIKey, cfg.BaseURL, cfg.Model)
	case "openai":
		base, err = NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithLogging(base), nil
}

// Holder 持有当前 Provider，配置热更新时整体替换
type Holder struct {
	mu       sync.RWMutex
	provider Provider
}

func NewHolder(p Provider) *Holder {
	return &Holder{provider: p}
}

// Current 离线模式下返回 nil
func (h *Holder) Current() Provider {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.provider
}

func (h *Holder) Set(p Provider) {
	h.mu.Lock()
	h.provider = p
	h.mu.Unlock()
}

// Generate 离线时返回 ErrOffline
func (h *Holder) Generate(ctx context.Context, req Request) (*Response, error) {
	p := h.Current()
	if p == nil {
		return nil, ErrOffline
	}
	return p.Generate(ctx, req)
}
