package llm

import (
	"context"
)

// Provider 生成式 AI 后端的统一抽象
type Provider interface {
	// Generate 发送提示词并返回模型文本
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

type Request struct {
	System   string
	Messages []Message

	// JSONMode 要求模型只输出 JSON（Gemini responseMimeType / OpenAI json_object）
	JSONMode bool

	MaxTokens   int
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema 用于校验模型返回的 JSON
type Schema struct {
	Name       string
	Definition map[string]any
}

type Response struct {
	Text       string
	Usage      Usage
	Model      string
	StopReason string // end | max_tokens
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// UserPrompt 单轮请求的便捷构造
func UserPrompt(text string) []Message {
	return []Message{{Role: RoleUser, Content: text}}
}
