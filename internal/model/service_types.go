package model

import "time"

// Evaluation AI 评估结果，同时作为 submissions.ai_feedback 的存储格式
type Evaluation struct {
	OverallScore   int            `json:"overallScore"`
	CriteriaScores map[string]int `json:"criteriaScores"`
	Feedback       string         `json:"feedback"`
	Strengths      []string       `json:"strengths"`
	Improvements   []string       `json:"improvements"`
	NextSteps      []string       `json:"nextSteps"`
}

// ChatTurn 教练对话中的一轮
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type CoachingReply struct {
	Message        string   `json:"message"`
	ProbeQuestions []string `json:"probeQuestions"`
	Hints          []string `json:"hints,omitempty"`
	Encouragement  string   `json:"encouragement,omitempty"`
}

type PainPoint struct {
	Theme     string   `json:"theme"`
	Frequency int      `json:"frequency"`
	Urgency   string   `json:"urgency"`
	Examples  []string `json:"examples"`
	Sources   []string `json:"sources"`
}

type CustomerProfile struct {
	Demographics []string `json:"demographics"`
	Behaviors    []string `json:"behaviors"`
	Motivations  []string `json:"motivations"`
}

type MarketAnalysis struct {
	TopPainPoints        []PainPoint     `json:"topPainPoints"`
	IdealCustomerProfile CustomerProfile `json:"idealCustomerProfile"`
	CompetitorGaps       []string        `json:"competitorGaps"`
	OpportunityScore     int             `json:"opportunityScore"`
	Recommendations      []string        `json:"recommendations"`
	RawInsights          string          `json:"rawInsights"`
}

// UserStats 学习统计概览
type UserStats struct {
	TotalPoints        int            `json:"totalPoints"`
	CurrentLevel       int            `json:"currentLevel"`
	PointsToNextLevel  int            `json:"pointsToNextLevel"`
	CurrentStreak      int            `json:"currentStreak"`
	LongestStreak      int            `json:"longestStreak"`
	LastActivityDate   string         `json:"lastActivityDate"`
	CoursesEnrolled    int            `json:"coursesEnrolled"`
	CoursesCompleted   int            `json:"coursesCompleted"`
	LessonsCompleted   int            `json:"lessonsCompleted"`
	ExercisesCompleted int            `json:"exercisesCompleted"`
	CompetencyScores   map[string]int `json:"competencyScores"`
	AchievementCount   int64          `json:"achievementCount"`
}

type EnrolledCourse struct {
	Course   Course          `json:"course"`
	Progress *CourseProgress `json:"progress"`
}

type Dashboard struct {
	Stats              UserStats         `json:"stats"`
	Courses            []EnrolledCourse  `json:"courses"`
	RecentAchievements []UserAchievement `json:"recentAchievements"`
	GeneratedAt        time.Time         `json:"generatedAt"`
}

// CourseDetail 课程详情 + 按顺序排列的课时
type CourseDetail struct {
	Course   Course          `json:"course"`
	Lessons  []Lesson        `json:"lessons"`
	Progress *CourseProgress `json:"progress,omitempty"`
}

// LessonView 课时播放页
type LessonView struct {
	Course       Course            `json:"course"`
	Lesson       Lesson            `json:"lesson"`
	TotalLessons int64             `json:"totalLessons"`
	Completed    bool              `json:"completed"`
	Exercise     *ExerciseInstance `json:"exercise,omitempty"`
	Progress     *CourseProgress   `json:"progress,omitempty"`
}

// CompletionResult 完成课时后的进度变化
type CompletionResult struct {
	AlreadyCompleted     bool     `json:"alreadyCompleted"`
	CompletionPercentage int      `json:"completionPercentage"`
	CourseCompleted      bool     `json:"courseCompleted"`
	PointsAwarded        int      `json:"pointsAwarded"`
	TotalPoints          int      `json:"totalPoints"`
	CurrentLevel         int      `json:"currentLevel"`
	NewAchievements      []string `json:"newAchievements,omitempty"`
}

// Session 进度相关操作的调用上下文。Today 为调用方本地日历日期
type Session struct {
	UserID string
	Email  string
	Today  string
}
