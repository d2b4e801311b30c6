package service

import (
	"context"
	"encoding/json"
	"fmt"
	"startup_academy_backend/internal/model"
	"startup_academy_backend/internal/repository"
	"startup_academy_backend/internal/util"
	"startup_academy_backend/pkg/llm"
	"startup_academy_backend/pkg/logger"
	"strings"

	"go.uber.org/zap"
)

var coachingSchema = &llm.Schema{
	Name: "coaching_reply",
	Definition: map[string]any{
		"type":     "object",
		"required": []string{"message", "probeQuestions"},
		"properties": map[string]any{
			"message":        map[string]any{"type": "string", "minLength": 1},
			"probeQuestions": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"hints":          map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"encouragement":  map[string]any{"type": "string"},
		},
	},
}

const coachingRules = `Your role as an AI coach:
1. Ask probing questions that deepen strategic thinking
2. Challenge assumptions with evidence-based reasoning
3. Provide examples from successful founders when relevant
4. Guide toward first principles thinking
5. Be supportive but maintain high standards
6. NEVER give direct answers - help them discover insights`

const coachingFormat = `Respond in JSON format:
{
  "message": "your_coaching_message",
  "probeQuestions": ["question1", "question2"],
  "hints": ["optional_hint"],
  "encouragement": "positive_reinforcement"
}`

// 离线或模型失败时轮换使用的教练回复
var fallbackCoachingReplies = []model.CoachingReply{
	{
		Message: "That's a good start! Let's dig deeper into this. What evidence do you have that this is actually a pain point for your customers?",
		ProbeQuestions: []string{
			"How did you discover this pain?",
			"What are customers currently doing to work around this problem?",
			"How much time or money are they spending on workarounds?",
		},
		Hints: []string{
			"Look for direct customer quotes that express frustration",
			"Consider the urgency - is this a 'nice to have' or 'must solve'?",
		},
		Encouragement: "You're on the right track. Keep pushing for specificity!",
	},
	{
		Message: "Interesting perspective. Now let's think about this strategically - what assumptions are you making here?",
		ProbeQuestions: []string{
			"What would need to be true for this to work?",
			"What could cause this approach to fail?",
			"Have you seen similar solutions succeed or fail? Why?",
		},
		Hints: []string{
			"Challenge your own thinking - play devil's advocate",
			"Think about second-order effects",
		},
		Encouragement: "Great progress! Strategic thinking is about questioning assumptions.",
	},
}

type CoachingRequest struct {
	ExerciseInstanceID  string           `json:"exerciseInstanceId"`
	UserMessage         string           `json:"userMessage"`
	ConversationHistory []model.ChatTurn `json:"conversationHistory"`
	CurrentResponse     json.RawMessage  `json:"currentResponse"`
}

type CoachingService struct {
	AI           *AIService
	ExerciseRepo *repository.ExerciseRepository
}

func NewCoachingService(ai *AIService, exerciseRepo *repository.ExerciseRepository) *CoachingService {
	return &CoachingService{AI: ai, ExerciseRepo: exerciseRepo}
}

// BuildCoachingPrompt 模板提示词、练习结构、当前作答与对话历史拼成一条用户消息
func BuildCoachingPrompt(instance *model.ExerciseInstance, req CoachingRequest) string {
	template := instance.Template

	var b strings.Builder
	b.WriteString(template.AICoachingPromptTemplate)
	b.WriteString("\n\nEXERCISE: ")
	b.WriteString(template.Name)
	if instance.InstancePrompt != "" {
		b.WriteString("\nEXERCISE PROMPT: ")
		b.WriteString(instance.InstancePrompt)
	}
	b.WriteString("\nTEMPLATE STRUCTURE: ")
	b.WriteString(compactJSON(template.TemplateConfig))
	b.WriteString("\n\n")
	b.WriteString(coachingRules)
	b.WriteString("\n\nCURRENT PROGRESS:\n")
	b.WriteString(prettyJSON(req.CurrentResponse, "{}"))
	b.WriteString("\n\nCONVERSATION SO FAR:\n")
	turns := make([]string, 0, len(req.ConversationHistory))
	for _, turn := range req.ConversationHistory {
		turns = append(turns, fmt.Sprintf("%s: %s", turn.Role, turn.Content))
	}
	b.WriteString(strings.Join(turns, "\n"))
	b.WriteString("\n\nUser: ")
	b.WriteString(req.UserMessage)
	b.WriteString("\n\n")
	b.WriteString(coachingFormat)
	return b.String()
}

// Coach 练习不存在返回错误；模型不可用或回复不合规时返回兜底回复
func (s *CoachingService) Coach(ctx context.Context, req CoachingRequest) (*model.CoachingReply, error) {
	if req.ExerciseInstanceID == "" {
		return nil, util.ErrExerciseNotFound
	}
	instance, err := s.ExerciseRepo.FindInstance(req.ExerciseInstanceID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrExerciseNotFound)
	}

	llmReq := llm.Request{
		Messages:    llm.UserPrompt(BuildCoachingPrompt(instance, req)),
		JSONMode:    true,
		MaxTokens:   1000,
		Temperature: 0.7,
	}

	var reply model.CoachingReply
	if err := s.AI.generateJSON(ctx, FeatureCoaching, llmReq, coachingSchema, &reply); err != nil {
		logger.Log.Warn("AI coaching failed, using fallback reply",
			zap.String("instanceID", req.ExerciseInstanceID),
			zap.Error(err))
		return s.fallbackReply(), nil
	}
	if reply.ProbeQuestions == nil {
		reply.ProbeQuestions = []string{}
	}
	return &reply, nil
}

func (s *CoachingService) fallbackReply() *model.CoachingReply {
	reply := fallbackCoachingReplies[s.AI.randomInt(len(fallbackCoachingReplies))]
	return &reply
}
