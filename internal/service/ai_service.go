package service

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand/v2"
	"startup_academy_backend/pkg/llm"
	"startup_academy_backend/pkg/monitoring"
	"time"
)

const (
	FeatureCoaching        = "coaching"
	FeatureEvaluation      = "evaluation"
	FeatureSocialListening = "social_listening"
)

// AIService 三个 AI 功能共用的调用封装。Provider 为空或调用失败时由各功能返回兜底数据
type AIService struct {
	Provider *llm.Holder
	Timeout  time.Duration

	// intn 兜底数据的随机源，测试中可替换
	intn func(n int) int
}

func NewAIService(provider *llm.Holder, timeout time.Duration) *AIService {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &AIService{Provider: provider, Timeout: timeout, intn: rand.IntN}
}

// generateJSON 调用模型、截取并校验 JSON 后解码到 out，同时记录监控指标
func (s *AIService) generateJSON(ctx context.Context, feature string, req llm.Request, schema *llm.Schema, out any) error {
	ctx = llm.WithFeature(ctx, feature)
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	start := time.Now()
	var err error
	if s.Provider == nil {
		err = llm.ErrOffline
	} else {
		var resp *llm.Response
		resp, err = s.Provider.Generate(ctx, req)
		if err == nil {
			err = llm.Decode(resp.Text, schema, out)
		}
	}
	monitoring.ObserveAI(feature, llm.Outcome(err), start)
	return err
}

func (s *AIService) randomInt(n int) int {
	if s.intn == nil {
		return rand.IntN(n)
	}
	return s.intn(n)
}

// prettyJSON 两空格缩进；空值按 fallback 输出
func prettyJSON(raw []byte, fallback string) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return fallback
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

func compactJSON(raw []byte) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
