package model

import (
	"gorm.io/datatypes"
)

type CourseTier string

const (
	TierFoundation CourseTier = "foundation"
	TierGrowth     CourseTier = "growth"
	TierScale      CourseTier = "scale"
	TierMastery    CourseTier = "mastery"
)

type CourseStatus string

const (
	CourseDraft     CourseStatus = "draft"
	CoursePublished CourseStatus = "published"
	CourseArchived  CourseStatus = "archived"
)

// 目标创业阶段
const (
	StageIdea      = "idea"
	StagePreLaunch = "pre-launch"
	Stage0To10k    = "0-10k"
	Stage10kTo100k = "10k-100k"
	StageScaling   = "scaling"
)

var ValidStages = []string{StageIdea, StagePreLaunch, Stage0To10k, Stage10kTo100k, StageScaling}

type Course struct {
	UUIDBase
	Slug             string                      `gorm:"size:160;uniqueIndex" json:"slug"`
	Title            string                      `gorm:"size:255;not null" json:"title"`
	Subtitle         string                      `gorm:"size:255" json:"subtitle"`
	Description      string                      `gorm:"type:text" json:"description"`
	Price            float64                     `gorm:"default:0" json:"price"`
	Tier             CourseTier                  `gorm:"size:20" json:"tier"`
	TargetStage      string                      `gorm:"size:20;index" json:"targetStage"`
	Competencies     datatypes.JSONSlice[string] `json:"competencies"`
	Prerequisites    datatypes.JSONSlice[string] `json:"prerequisites"`
	EstimatedHours   int                         `json:"estimatedHours"`
	ThumbnailURL     string                      `gorm:"size:512" json:"thumbnailUrl"`
	Status           CourseStatus                `gorm:"size:20;default:draft;index" json:"status"`
	EnrolledStudents int                         `gorm:"default:0" json:"enrolledStudents"`
	Lessons          []Lesson                    `gorm:"foreignKey:CourseID" json:"lessons,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

type ContentType string

const (
	ContentVideo       ContentType = "video"
	ContentArticle     ContentType = "article"
	ContentInteractive ContentType = "interactive"
	ContentCaseStudy   ContentType = "case-study"
	ContentAssessment  ContentType = "assessment"
)

// LessonResource 课时附带资料，ObjectKey 存储在对象存储中，URL 由 StorageService 生成
type LessonResource struct {
	Title     string `json:"title"`
	Type      string `json:"type"`
	ObjectKey string `json:"objectKey,omitempty"`
	URL       string `json:"url,omitempty"`
}

type Lesson struct {
	UUIDBase
	CourseID         string                              `gorm:"type:varchar(36);not null;uniqueIndex:idx_course_lesson_order" json:"courseId"`
	LessonOrder      int                                 `gorm:"not null;uniqueIndex:idx_course_lesson_order" json:"lessonOrder"`
	Title            string                              `gorm:"size:255;not null" json:"title"`
	Description      string                              `gorm:"type:text" json:"description"`
	ContentType      ContentType                         `gorm:"size:20" json:"contentType"`
	Content          datatypes.JSONMap                   `json:"content"`
	Objectives       datatypes.JSONSlice[string]         `json:"objectives"`
	EstimatedMinutes int                                 `json:"estimatedMinutes"`
	Resources        datatypes.JSONSlice[LessonResource] `json:"resources"`
}

func (Lesson) TableName() string {
	return "lessons"
}
