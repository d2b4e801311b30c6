package model

import (
	"time"

	"gorm.io/datatypes"
)

// CourseProgress 每个用户每门课程一行，(user_id, course_id) 唯一
type CourseProgress struct {
	UUIDBase
	UserID               string                      `gorm:"type:varchar(36);not null;uniqueIndex:idx_progress_user_course" json:"userId"`
	CourseID             string                      `gorm:"type:varchar(36);not null;uniqueIndex:idx_progress_user_course" json:"courseId"`
	CompletedLessons     datatypes.JSONSlice[string] `json:"completedLessons"`
	CurrentLessonID      *string                     `gorm:"type:varchar(36)" json:"currentLessonId"`
	CompletionPercentage int                         `gorm:"default:0" json:"completionPercentage"`
	TimeSpentMinutes     int                         `gorm:"default:0" json:"timeSpentMinutes"`
	StartedAt            time.Time                   `json:"startedAt"`
	LastAccessedAt       time.Time                   `json:"lastAccessedAt"`
	CompletedAt          *time.Time                  `json:"completedAt"`
}

func (CourseProgress) TableName() string {
	return "user_progress"
}

func (p *CourseProgress) HasLesson(lessonID string) bool {
	for _, id := range p.CompletedLessons {
		if id == lessonID {
			return true
		}
	}
	return false
}
