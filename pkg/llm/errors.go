package llm

import (
	"errors"
	"fmt"
	"time"
)

// ErrOffline 未配置 API Key，调用方应直接使用兜底数据
var ErrOffline = errors.New("ai provider not configured")

type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse 模型输出中没有合法 JSON，或不满足 schema
type ErrInvalidResponse struct {
	Content string
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid AI response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("AI provider unavailable: %v", e.Err)
	}
	return "AI provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// Outcome 把错误归类成监控标签
func Outcome(err error) string {
	var rl *ErrRateLimit
	var inv *ErrInvalidResponse
	var un *ErrProviderUnavailable
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrOffline):
		return "offline"
	case errors.As(err, &rl):
		return "rate_limited"
	case errors.As(err, &inv):
		return "invalid_response"
	case errors.As(err, &un):
		return "unavailable"
	default:
		return "error"
	}
}
