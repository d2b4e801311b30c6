package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// RubricCriterion 评分项，Weight 之和约定为 1.0
type RubricCriterion struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Weight          float64 `json:"weight"`
	ScoringGuidance string  `json:"scoringGuidance,omitempty"`
}

type Rubric struct {
	Criteria     []RubricCriterion `json:"criteria"`
	PassingScore int               `json:"passingScore"`
}

type ExerciseTemplate struct {
	UUIDBase
	Name                     string                     `gorm:"size:255;not null" json:"name"`
	FrameworkType            string                     `gorm:"size:100" json:"frameworkType"`
	Description              string                     `gorm:"type:text" json:"description"`
	TemplateConfig           datatypes.JSON             `json:"templateConfig"`
	AICoachingPromptTemplate string                     `gorm:"type:text" json:"aiCoachingPromptTemplate"`
	EvaluationRubric         datatypes.JSONType[Rubric] `json:"evaluationRubric"`
}

func (ExerciseTemplate) TableName() string {
	return "exercise_templates"
}

type ExerciseInstance struct {
	UUIDBase
	TemplateID       string           `gorm:"type:varchar(36);not null;index" json:"templateId"`
	LessonID         string           `gorm:"type:varchar(36);not null;index" json:"lessonId"`
	InstancePrompt   string           `gorm:"type:text" json:"instancePrompt"`
	EstimatedMinutes int              `json:"estimatedMinutes"`
	Template         ExerciseTemplate `gorm:"foreignKey:TemplateID" json:"template"`
}

func (ExerciseInstance) TableName() string {
	return "exercise_instances"
}

type SubmissionStatus string

const (
	SubmissionDraft     SubmissionStatus = "draft"
	SubmissionSubmitted SubmissionStatus = "submitted"
	SubmissionEvaluated SubmissionStatus = "evaluated"
	// SubmissionRevised 仅声明，当前流程不会产生
	SubmissionRevised SubmissionStatus = "revised"
)

type Submission struct {
	UUIDBase
	UserID             string           `gorm:"type:varchar(36);not null;index:idx_submission_user_instance" json:"userId"`
	ExerciseInstanceID string           `gorm:"type:varchar(36);not null;index:idx_submission_user_instance" json:"exerciseInstanceId"`
	ResponseData       datatypes.JSON   `json:"responseData"`
	Status             SubmissionStatus `gorm:"size:20;default:draft;index" json:"status"`
	SubmittedAt        *time.Time       `json:"submittedAt"`
	Score              *int             `json:"score"`
	AIFeedback         datatypes.JSON   `json:"aiFeedback"`
	EvaluatedAt        *time.Time       `json:"evaluatedAt"`
}

func (Submission) TableName() string {
	return "submissions"
}

// Evaluation 解析 AIFeedback，未评估时返回 nil
func (s *Submission) Evaluation() *Evaluation {
	if len(s.AIFeedback) == 0 || string(s.AIFeedback) == "null" {
		return nil
	}
	var ev Evaluation
	if err := json.Unmarshal(s.AIFeedback, &ev); err != nil {
		return nil
	}
	return &ev
}
