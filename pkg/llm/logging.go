package llm

import (
	"context"
	"startup_academy_backend/pkg/logger"
	"startup_academy_backend/pkg/tracing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type featureKey struct{}

// WithFeature 标记调用来源（coaching / evaluation / social_listening），用于日志与 span
func WithFeature(ctx context.Context, feature string) context.Context {
	return context.WithValue(ctx, featureKey{}, feature)
}

func FeatureFrom(ctx context.Context) string {
	if v, ok := ctx.Value(featureKey{}).(string); ok {
		return v
	}
	return "unknown"
}

// LoggingProvider 为每次调用记录 zap 日志并开 otel span
type LoggingProvider struct {
	inner Provider
}

func WithLogging(p Provider) Provider {
	return &LoggingProvider{inner: p}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	feature := FeatureFrom(ctx)
	ctx, span := tracing.StartSpan(ctx, "llm.generate",
		attribute.String("llm.model", l.inner.ModelID()),
		attribute.String("llm.feature", feature),
	)

	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	if err == nil {
		span.SetAttributes(attribute.Int("llm.output_tokens", resp.Usage.OutputTokens))
	}
	tracing.EndSpan(span, err)

	fields := []zap.Field{
		zap.String("feature", feature),
		zap.String("model", l.inner.ModelID()),
		zap.Duration("latency", time.Since(start)),
	}
	if err != nil {
		logger.Log.Warn("AI request failed", append(fields, zap.Error(err))...)
		return nil, err
	}

	logger.Log.Debug("AI request completed", append(fields,
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.String("stop_reason", resp.StopReason),
	)...)
	return resp, nil
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
