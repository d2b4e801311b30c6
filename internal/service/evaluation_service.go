package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"startup_academy_backend/internal/model"
	"startup_academy_backend/internal/repository"
	"startup_academy_backend/internal/util"
	"startup_academy_backend/pkg/llm"
	"startup_academy_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

var evaluationSchema = &llm.Schema{
	Name: "exercise_evaluation",
	Definition: map[string]any{
		"type":     "object",
		"required": []string{"criteriaScores", "feedback"},
		"properties": map[string]any{
			"criteriaScores": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"type": "number"},
			},
			"overallScore": map[string]any{"type": "number"},
			"feedback":     map[string]any{"type": "string"},
			"strengths":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"improvements": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"nextSteps":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
	},
}

const evaluationFormat = `Respond in JSON format:
{
  "criteriaScores": { "criterion_name": score },
  "overallScore": weighted_average,
  "feedback": "detailed_feedback",
  "strengths": ["strength1", "strength2"],
  "improvements": ["improvement1", "improvement2"],
  "nextSteps": ["step1", "step2"]
}`

const (
	fallbackScoreMin   = 70
	fallbackScoreRange = 20
)

const fallbackFeedback = "Great work on completing this exercise! Your responses show solid understanding of the framework. To take your strategic thinking to the next level, focus on providing more specific evidence and connecting your insights to measurable business outcomes."

var (
	fallbackStrengths = []string{
		"Clear understanding of the framework structure",
		"Thoughtful consideration of multiple perspectives",
		"Good use of specific examples",
	}
	fallbackImprovements = []string{
		"Include more quantitative evidence to support claims",
		"Connect insights more explicitly to business outcomes",
		"Consider second-order effects and tradeoffs",
	}
	fallbackNextSteps = []string{
		"Validate your assumptions with customer interviews",
		"Create a prioritization matrix for next actions",
		"Review successful case studies in your industry",
	}
)

// evaluationReply 模型原始回复，分数可能带小数
type evaluationReply struct {
	CriteriaScores map[string]float64 `json:"criteriaScores"`
	OverallScore   float64            `json:"overallScore"`
	Feedback       string             `json:"feedback"`
	Strengths      []string           `json:"strengths"`
	Improvements   []string           `json:"improvements"`
	NextSteps      []string           `json:"nextSteps"`
}

type EvaluationService struct {
	AI              *AIService
	SubmissionRepo  *repository.SubmissionRepository
	ExerciseRepo    *repository.ExerciseRepository
	LessonRepo      *repository.LessonRepository
	CourseRepo      *repository.CourseRepository
	ProgressService *ProgressService
}

func NewEvaluationService(
	ai *AIService,
	submissionRepo *repository.SubmissionRepository,
	exerciseRepo *repository.ExerciseRepository,
	lessonRepo *repository.LessonRepository,
	courseRepo *repository.CourseRepository,
	progressService *ProgressService,
) *EvaluationService {
	return &EvaluationService{
		AI:              ai,
		SubmissionRepo:  submissionRepo,
		ExerciseRepo:    exerciseRepo,
		LessonRepo:      lessonRepo,
		CourseRepo:      courseRepo,
		ProgressService: progressService,
	}
}

func clampScore(v float64) int {
	return int(math.Round(math.Max(0, math.Min(100, v))))
}

// WeightedOverall round(Σ score·weight / Σ weight)；权重全为 0 时按等权计算
func WeightedOverall(criteria []model.RubricCriterion, scores map[string]int) int {
	if len(criteria) == 0 {
		return 0
	}
	var sum, weight float64
	for _, c := range criteria {
		sum += float64(scores[c.Name]) * c.Weight
		weight += c.Weight
	}
	if weight <= 0 {
		sum, weight = 0, 0
		for _, c := range criteria {
			sum += float64(scores[c.Name])
			weight++
		}
	}
	return int(math.Round(sum / weight))
}

func BuildEvaluationPrompt(template model.ExerciseTemplate, responseData []byte) string {
	criteria, _ := json.MarshalIndent(template.EvaluationRubric.Data().Criteria, "", "  ")
	return fmt.Sprintf(`You are evaluating a founder's strategic thinking exercise.

EXERCISE: %s

CONTEXT:
%s

STUDENT RESPONSE:
%s

EVALUATION RUBRIC:
%s

Provide a detailed evaluation with:
1. Score for each criterion (0-100)
2. Overall weighted score
3. Detailed feedback on strategic thinking quality
4. 3-5 specific strengths
5. 2-4 areas for improvement with actionable guidance
6. 2-3 next steps to deepen their thinking

Be supportive but maintain high standards. Focus on strategic depth, not just completion.

%s`, template.Name, template.AICoachingPromptTemplate, prettyJSON(responseData, "{}"), string(criteria), evaluationFormat)
}

// FallbackEvaluation 每项评分取 [70,90) 的随机整数，文字为固定模板
func (s *EvaluationService) FallbackEvaluation(rubric model.Rubric) *model.Evaluation {
	scores := make(map[string]int, len(rubric.Criteria))
	for _, c := range rubric.Criteria {
		scores[c.Name] = fallbackScoreMin + s.AI.randomInt(fallbackScoreRange)
	}
	overall := WeightedOverall(rubric.Criteria, scores)
	if len(rubric.Criteria) == 0 {
		overall = fallbackScoreMin + s.AI.randomInt(fallbackScoreRange)
	}
	return &model.Evaluation{
		OverallScore:   overall,
		CriteriaScores: scores,
		Feedback:       fallbackFeedback,
		Strengths:      append([]string(nil), fallbackStrengths...),
		Improvements:   append([]string(nil), fallbackImprovements...),
		NextSteps:      append([]string(nil), fallbackNextSteps...),
	}
}

// fromReply 只保留评分表内的评分项，缺失项随机补齐，总分按权重重算
func (s *EvaluationService) fromReply(rubric model.Rubric, reply evaluationReply) *model.Evaluation {
	scores := make(map[string]int, len(rubric.Criteria))
	for _, c := range rubric.Criteria {
		if v, ok := reply.CriteriaScores[c.Name]; ok {
			scores[c.Name] = clampScore(v)
		} else {
			scores[c.Name] = fallbackScoreMin + s.AI.randomInt(fallbackScoreRange)
		}
	}
	overall := WeightedOverall(rubric.Criteria, scores)
	if len(rubric.Criteria) == 0 {
		overall = clampScore(reply.OverallScore)
	}
	return &model.Evaluation{
		OverallScore:   overall,
		CriteriaScores: scores,
		Feedback:       reply.Feedback,
		Strengths:      nonNil(reply.Strengths),
		Improvements:   nonNil(reply.Improvements),
		NextSteps:      nonNil(reply.NextSteps),
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

// Evaluate 评估已提交的记录并写回结果，草稿返回 ErrNotSubmitted；首次评估时更新能力分与练习统计
func (s *EvaluationService) Evaluate(ctx context.Context, submissionID string) (*model.Evaluation, error) {
	submission, err := s.SubmissionRepo.FindByID(submissionID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrSubmissionNotFound)
	}
	if submission.Status != model.SubmissionSubmitted && submission.Status != model.SubmissionEvaluated {
		return nil, util.ErrNotSubmitted
	}
	instance, err := s.ExerciseRepo.FindInstance(submission.ExerciseInstanceID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrExerciseNotFound)
	}
	rubric := instance.Template.EvaluationRubric.Data()

	llmReq := llm.Request{
		Messages:    llm.UserPrompt(BuildEvaluationPrompt(instance.Template, submission.ResponseData)),
		JSONMode:    true,
		MaxTokens:   2000,
		Temperature: 0.3,
	}

	var evaluation *model.Evaluation
	var reply evaluationReply
	if err := s.AI.generateJSON(ctx, FeatureEvaluation, llmReq, evaluationSchema, &reply); err != nil {
		logger.Log.Warn("AI evaluation failed, using fallback evaluation",
			zap.String("submissionID", submissionID),
			zap.Error(err))
		evaluation = s.FallbackEvaluation(rubric)
	} else {
		evaluation = s.fromReply(rubric, reply)
	}

	feedback, err := json.Marshal(evaluation)
	if err != nil {
		return nil, err
	}

	first, err := s.SubmissionRepo.SaveEvaluation(submission.ID, datatypes.JSON(feedback), evaluation.OverallScore, time.Now())
	if err != nil {
		logger.Log.Error("Failed to save evaluation",
			zap.String("submissionID", submissionID),
			zap.Error(err))
		return nil, err
	}

	// 并发评估同一提交时只有完成状态迁移的一方计入进度
	if first {
		s.recordProgress(submission, instance, evaluation.OverallScore)
	}
	return evaluation, nil
}

// recordProgress 次要效果，失败只记录日志
func (s *EvaluationService) recordProgress(submission *model.Submission, instance *model.ExerciseInstance, score int) {
	if s.ProgressService == nil {
		return
	}

	var competencies []string
	lesson, err := s.LessonRepo.FindByID(instance.LessonID)
	if err == nil {
		var course *model.Course
		course, err = s.CourseRepo.FindByID(lesson.CourseID)
		if err == nil {
			competencies = course.Competencies
		}
	}
	if err != nil {
		logger.Log.Warn("Failed to resolve course competencies",
			zap.String("instanceID", instance.ID),
			zap.Error(err))
	}

	session := model.Session{UserID: submission.UserID}
	if err := s.ProgressService.RecordExerciseEvaluated(session, competencies, score); err != nil {
		logger.Log.Warn("Failed to record exercise progress",
			zap.String("submissionID", submission.ID),
			zap.Error(err))
	}
}
