package service

import (
	"context"
	"fmt"
	"startup_academy_backend/internal/model"
	"startup_academy_backend/internal/util"
	"startup_academy_backend/pkg/llm"
	"startup_academy_backend/pkg/logger"
	"strings"

	"go.uber.org/zap"
)

var stringArray = map[string]any{"type": "array", "items": map[string]any{"type": "string"}}

var marketAnalysisSchema = &llm.Schema{
	Name: "market_analysis",
	Definition: map[string]any{
		"type": "object",
		"required": []string{
			"topPainPoints", "idealCustomerProfile", "competitorGaps",
			"opportunityScore", "recommendations", "rawInsights",
		},
		"properties": map[string]any{
			"topPainPoints": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []string{"theme", "frequency", "urgency"},
					"properties": map[string]any{
						"theme":     map[string]any{"type": "string"},
						"frequency": map[string]any{"type": "integer"},
						"urgency":   map[string]any{"enum": []string{"high", "medium", "low"}},
						"examples":  stringArray,
						"sources":   stringArray,
					},
				},
			},
			"idealCustomerProfile": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"demographics": stringArray,
					"behaviors":    stringArray,
					"motivations":  stringArray,
				},
			},
			"competitorGaps":   stringArray,
			"opportunityScore": map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
			"recommendations":  stringArray,
			"rawInsights":      map[string]any{"type": "string"},
		},
	},
}

const socialListeningTask = `Your task:
1. Identify the TOP 3-5 recurring pain points people mention about this topic
2. For each pain point:
   - Describe the theme/pattern
   - Estimate frequency (how often it's mentioned: high/medium/low as a number 10-100)
   - Rate urgency (high/medium/low based on emotional language)
   - Provide 2-3 realistic example quotes (write these as if they're from real people)
   - List likely sources (subreddits, Twitter hashtags, forums)

3. Build an Ideal Customer Profile:
   - Demographics (who's talking about this?)
   - Behaviors (what are they doing?)
   - Motivations (what drives them?)

4. Identify competitor gaps:
   - What existing solutions are people complaining about?
   - What features/aspects are they saying are missing?

5. Calculate an opportunity score (0-100) based on:
   - Volume of complaints (more = higher score)
   - Urgency of pain (higher urgency = higher score)
   - Competition gaps (bigger gaps = higher score)
   - Willingness to pay signals (mentioned cost/price = higher score)

6. Provide 3-5 strategic recommendations for a founder

Respond ONLY with valid JSON in this exact format:
{
  "topPainPoints": [
    {
      "theme": "string",
      "frequency": number,
      "urgency": "high" | "medium" | "low",
      "examples": ["quote1", "quote2"],
      "sources": ["source1", "source2"]
    }
  ],
  "idealCustomerProfile": {
    "demographics": ["item1", "item2"],
    "behaviors": ["item1", "item2"],
    "motivations": ["item1", "item2"]
  },
  "competitorGaps": ["gap1", "gap2"],
  "opportunityScore": number,
  "recommendations": ["rec1", "rec2"],
  "rawInsights": "brief summary paragraph"
}`

type SocialListeningRequest struct {
	Topic     string   `json:"topic"`
	Platforms []string `json:"platforms"`
	Depth     string   `json:"depth"` // quick | comprehensive
}

type SocialListeningService struct {
	AI *AIService
}

func NewSocialListeningService(ai *AIService) *SocialListeningService {
	return &SocialListeningService{AI: ai}
}

func BuildSocialListeningPrompt(req SocialListeningRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert at Sales Safari customer research analysis. Analyze conversations about: %q\n\n", req.Topic)
	fmt.Fprintf(&b, "Platforms to consider: %s\n\n", strings.Join(req.Platforms, ", "))
	if req.Depth == "comprehensive" {
		b.WriteString("Analysis depth: comprehensive. Cover the long tail of pain points as well as the most frequent ones.\n\n")
	}
	b.WriteString(socialListeningTask)
	return b.String()
}

// Analyze 主题或平台为空返回校验错误；离线或模型失败时返回示例分析
func (s *SocialListeningService) Analyze(ctx context.Context, req SocialListeningRequest) (*model.MarketAnalysis, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" || len(req.Platforms) == 0 {
		return nil, util.ErrTopicRequired
	}

	llmReq := llm.Request{
		Messages:    llm.UserPrompt(BuildSocialListeningPrompt(req)),
		JSONMode:    true,
		MaxTokens:   3000,
		Temperature: 0.7,
	}

	var analysis model.MarketAnalysis
	if err := s.AI.generateJSON(ctx, FeatureSocialListening, llmReq, marketAnalysisSchema, &analysis); err != nil {
		logger.Log.Warn("AI social listening failed, using sample analysis",
			zap.String("topic", req.Topic),
			zap.Error(err))
		return SampleMarketAnalysis(req.Topic), nil
	}
	return &analysis, nil
}

// SampleMarketAnalysis 离线示例数据，引用处带入主题
func SampleMarketAnalysis(topic string) *model.MarketAnalysis {
	return &model.MarketAnalysis{
		TopPainPoints: []model.PainPoint{
			{
				Theme:     "Existing solutions are too expensive for small teams",
				Frequency: 47,
				Urgency:   "high",
				Examples: []string{
					fmt.Sprintf("Why does every %s tool assume I have a $500/month budget? I'm bootstrapping!", topic),
					"Love the features but $99/mo is insane for a 2-person team. Switching back to spreadsheets.",
				},
				Sources: []string{"r/SaaS", "Twitter #startups", "IndieHackers forums"},
			},
			{
				Theme:     "Tools are too complex and have steep learning curves",
				Frequency: 38,
				Urgency:   "medium",
				Examples: []string{
					fmt.Sprintf("Spent 3 hours trying to figure out %s. Gave up. Just need something simple.", topic),
					"Why do these tools require a PhD to use? I just want to [solve problem].",
				},
				Sources: []string{"ProductHunt comments", "r/Entrepreneur", "Twitter"},
			},
			{
				Theme:     "Missing key integration with [specific tool]",
				Frequency: 29,
				Urgency:   "high",
				Examples: []string{
					"Would be perfect if it integrated with [tool]. Deal breaker without it.",
					"Seriously? No [integration]? That's like the first thing you should build.",
				},
				Sources: []string{"Feature request forums", "Reddit threads", "Twitter DMs"},
			},
		},
		IdealCustomerProfile: model.CustomerProfile{
			Demographics: []string{
				"Solo founders or teams of 2-5 people",
				"Bootstrapped/pre-revenue or early revenue ($0-$50K MRR)",
				"Tech-savvy but not developers",
				"Age 25-45, often with day jobs",
			},
			Behaviors: []string{
				"Active in online communities (Reddit, Twitter, IndieHackers)",
				"Research extensively before buying",
				"Price-sensitive, look for affordable options",
				"Prefer simple tools over feature-rich complexity",
				"Share wins and frustrations publicly",
			},
			Motivations: []string{
				"Want to build sustainable business without VC",
				"Seeking efficiency and automation",
				"Frustrated with enterprise-focused expensive tools",
				"Looking for community and peer support",
			},
		},
		CompetitorGaps: []string{
			"Most tools are priced for enterprise/VC-funded startups, not bootstrappers",
			"Onboarding is too complex - need simple setup in under 10 minutes",
			"Missing affordable tier for early-stage users ($10-20/month)",
			"No community or peer support built into the product",
			"Customer support is slow or non-existent for cheaper plans",
		},
		OpportunityScore: 73,
		Recommendations: []string{
			"Build for bootstrappers first - price at $19-29/month with generous limits",
			"Focus on simplicity over features - onboarding should take <5 minutes",
			"Launch with 1-2 key integrations that competitors are missing",
			"Build community into the product from day 1 (Discord, in-app chat)",
			"Offer founding member lifetime discounts to validate and build word-of-mouth",
		},
		RawInsights: fmt.Sprintf("Based on analysis of conversations about %q, there's a clear opportunity for a bootstrapper-friendly solution. The market is dominated by expensive enterprise tools, leaving solo founders underserved. High urgency around pricing and complexity. Strong willingness-to-pay signals if solution addresses these gaps.", topic),
	}
}
