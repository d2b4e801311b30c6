package repository

import (
	"startup_academy_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

// ListPublished 已发布课程，按创建时间倒序；stage 为空时不过滤
func (r *CourseRepository) ListPublished(stage string) ([]model.Course, error) {
	var courses []model.Course
	query := r.DB.Where("status = ?", model.CoursePublished)
	if stage != "" {
		query = query.Where("target_stage = ?", stage)
	}
	err := query.Order("created_at desc").Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *CourseRepository) FindPublishedBySlug(slug string) (*model.Course, error) {
	var course model.Course
	err := r.DB.Where("slug = ? AND status = ?", slug, model.CoursePublished).First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) FindByID(id string) (*model.Course, error) {
	var course model.Course
	err := r.DB.Where("id = ?", id).First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) FindByIDs(ids []string) ([]model.Course, error) {
	var courses []model.Course
	if len(ids) == 0 {
		return courses, nil
	}
	err := r.DB.Where("id IN ?", ids).Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) IncrementEnrolled(id string) error {
	return r.DB.Model(&model.Course{}).
		Where("id = ?", id).
		Update("enrolled_students", gorm.Expr("enrolled_students + 1")).
		Error
}

type LessonRepository struct {
	DB *gorm.DB
}

func NewLessonRepository(db *gorm.DB) *LessonRepository {
	return &LessonRepository{DB: db}
}

func (r *LessonRepository) ListByCourse(courseID string) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.DB.Where("course_id = ?", courseID).Order("lesson_order asc").Find(&lessons).Error
	if err != nil {
		return nil, err
	}
	return lessons, nil
}

func (r *LessonRepository) CountByCourse(courseID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Lesson{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

func (r *LessonRepository) FindByOrder(courseID string, order int) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.Where("course_id = ? AND lesson_order = ?", courseID, order).First(&lesson).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *LessonRepository) FindByID(id string) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.Where("id = ?", id).First(&lesson).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *LessonRepository) Create(lesson *model.Lesson) error {
	return r.DB.Create(lesson).Error
}
