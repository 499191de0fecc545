package repository

import (
	"edupath_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.Preload("Subjects.Modules").First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) ListPublished() ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("is_published = ?", true).Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) FindSubjectByID(id uint) (*model.Subject, error) {
	var subject model.Subject
	err := r.DB.Preload("Modules").First(&subject, id).Error
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *CourseRepository) Enroll(userID, courseID uint) error {
	enrollment := &model.CourseEnrollment{
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now(),
	}
	return r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).
		FirstOrCreate(enrollment).Error
}

func (r *CourseRepository) ListEnrolledCourses(userID uint) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Preload("Subjects.Modules").
		Joins("JOIN course_enrollments ON course_enrollments.course_id = courses.id").
		Where("course_enrollments.user_id = ? AND course_enrollments.deleted_at IS NULL", userID).
		Find(&courses).Error
	return courses, err
}

// AssignedModuleIDs 用户当前已分配模块集合：来自所有已选课程的启用模块
func (r *CourseRepository) AssignedModuleIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Module{}).
		Joins("JOIN subjects ON subjects.id = modules.subject_id").
		Joins("JOIN course_enrollments ON course_enrollments.course_id = subjects.course_id").
		Where("course_enrollments.user_id = ? AND modules.is_active = ? AND course_enrollments.deleted_at IS NULL", userID, true).
		Distinct().Pluck("modules.id", &ids).Error
	return ids, err
}

func (r *CourseRepository) FindModulesByIDs(ids []uint) ([]model.Module, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var modules []model.Module
	err := r.DB.Where("id IN ?", ids).Find(&modules).Error
	return modules, err
}
