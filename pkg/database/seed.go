package database

import (
	"encoding/json"
	"startup_academy_backend/internal/model"

	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const painDiscoveryConfig = `{
  "sections": [
    {"id": "customer", "label": "Who is your customer?", "description": "Describe the specific person experiencing the pain.", "inputType": "text", "placeholder": "e.g. Solo founders running B2B SaaS under $10k MRR"},
    {"id": "pains", "label": "Top pains", "description": "List the pains in their own words.", "inputType": "multiline", "maxItems": 5, "placeholder": "A pain, quoted if possible"},
    {"id": "workarounds", "label": "Current workarounds", "description": "What do they do today instead?", "inputType": "list", "maxItems": 5, "placeholder": "Workaround"}
  ],
  "followUp": {"label": "What surprised you?", "description": "Anything that challenged your assumptions.", "inputType": "multiline", "maxItems": 3}
}`

// Seed 开发环境示例数据，课程表非空时跳过
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Course{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		title := "Finding Your First Customers"
		course := &model.Course{
			Slug:           slug.Make(title),
			Title:          title,
			Subtitle:       "Validate real pain before you build",
			Description:    "A hands-on course on customer discovery for early-stage founders.",
			Price:          0,
			Tier:           model.TierFoundation,
			TargetStage:    model.StageIdea,
			Competencies:   datatypes.JSONSlice[string]{"SC1", "SC2"},
			Prerequisites:  datatypes.JSONSlice[string]{},
			EstimatedHours: 3,
			Status:         model.CoursePublished,
		}
		if err := tx.Create(course).Error; err != nil {
			return err
		}

		lessons := []model.Lesson{
			{CourseID: course.ID, LessonOrder: 1, Title: "Why pain beats ideas", ContentType: model.ContentVideo, EstimatedMinutes: 12,
				Objectives: datatypes.JSONSlice[string]{"Separate problems from solutions"},
				Content:    datatypes.JSONMap{"videoUrl": "", "transcript": ""}},
			{CourseID: course.ID, LessonOrder: 2, Title: "Customer pain discovery", ContentType: model.ContentInteractive, EstimatedMinutes: 30,
				Objectives: datatypes.JSONSlice[string]{"Document a customer's top pains", "Identify current workarounds"},
				Content:    datatypes.JSONMap{"body": "Interview three prospects and capture their pains."}},
			{CourseID: course.ID, LessonOrder: 3, Title: "Case study: the spreadsheet killer", ContentType: model.ContentCaseStudy, EstimatedMinutes: 15,
				Objectives: datatypes.JSONSlice[string]{"Recognize willingness-to-pay signals"},
				Content:    datatypes.JSONMap{"body": ""}},
		}
		if err := tx.Create(&lessons).Error; err != nil {
			return err
		}

		rubric := model.Rubric{
			Criteria: []model.RubricCriterion{
				{Name: "Evidence", Description: "Pains are backed by real customer evidence", Weight: 0.5, ScoringGuidance: "Quotes and observed behaviour score highest"},
				{Name: "Specificity", Description: "The customer and pains are specific", Weight: 0.3},
				{Name: "Insight", Description: "Workarounds reveal an opportunity", Weight: 0.2},
			},
			PassingScore: 70,
		}
		template := &model.ExerciseTemplate{
			Name:                     "Customer Pain Discovery",
			FrameworkType:            "sales-safari",
			Description:              "Capture who hurts, how, and what they do about it today.",
			TemplateConfig:           datatypes.JSON(json.RawMessage(painDiscoveryConfig)),
			AICoachingPromptTemplate: "You are a customer discovery coach helping a founder sharpen their understanding of customer pain.",
			EvaluationRubric:         datatypes.NewJSONType(rubric),
		}
		if err := tx.Create(template).Error; err != nil {
			return err
		}

		return tx.Create(&model.ExerciseInstance{
			TemplateID:       template.ID,
			LessonID:         lessons[1].ID,
			InstancePrompt:   "Interview three prospects this week and record their top pains.",
			EstimatedMinutes: 30,
		}).Error
	})
}
