package model

import (
	"time"

	"gorm.io/datatypes"
)

type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "free"
	TierCore    SubscriptionTier = "core"
	TierPremium SubscriptionTier = "premium"
	TierElite   SubscriptionTier = "elite"
)

// User 学员档案。ID 与托管认证服务的 subject 一致，学习统计直接挂在用户行上
type User struct {
	UUIDBase
	Email            string           `gorm:"size:255;index" json:"email"`
	FullName         string           `gorm:"size:255" json:"fullName"`
	AvatarURL        string           `gorm:"size:512" json:"avatarUrl"`
	SubscriptionTier SubscriptionTier `gorm:"size:20;default:free" json:"subscriptionTier"`

	EnrolledCourses  datatypes.JSONSlice[string] `json:"enrolledCourses"`
	CompletedLessons datatypes.JSONSlice[string] `json:"completedLessons"`

	CurrentStreak      int    `gorm:"default:0" json:"currentStreak"`
	LongestStreak      int    `gorm:"default:0" json:"longestStreak"`
	LastActivityDate   string `gorm:"size:10" json:"lastActivityDate"`
	TotalPoints        int    `gorm:"default:0" json:"totalPoints"`
	CurrentLevel       int    `gorm:"default:1" json:"currentLevel"`
	CoursesCompleted   int    `gorm:"default:0" json:"coursesCompleted"`
	ExercisesCompleted int    `gorm:"default:0" json:"exercisesCompleted"`

	CompetencyScores datatypes.JSONType[map[string]int] `json:"competencyScores"`

	LastSeenAt *time.Time `json:"lastSeenAt,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsEnrolled(courseID string) bool {
	for _, id := range u.EnrolledCourses {
		if id == courseID {
			return true
		}
	}
	return false
}

func (u *User) HasCompletedLesson(lessonID string) bool {
	for _, id := range u.CompletedLessons {
		if id == lessonID {
			return true
		}
	}
	return false
}

// Competencies 返回能力分副本，保证非 nil
func (u *User) Competencies() map[string]int {
	scores := make(map[string]int)
	for k, v := range u.CompetencyScores.Data() {
		scores[k] = v
	}
	return scores
}
