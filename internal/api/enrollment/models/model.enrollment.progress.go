// Package models - Progress thuộc domain Enrollment.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuizScore - Điểm bài trắc nghiệm của một bài học
type QuizScore struct {
	LessonIndex int     `json:"lessonIndex" bson:"lessonIndex"` // Index bài học theo thứ tự chuẩn
	Score       float64 `json:"score" bson:"score"`             // Phần trăm câu đúng (0-100)
	Passed      bool    `json:"passed" bson:"passed"`           // Score >= passingScore của quiz
	SubmittedAt int64   `json:"submittedAt" bson:"submittedAt"`
}

// Progress - Tiến độ học tập của một người dùng trong một khóa học.
// Mỗi cặp (userId, courseId) chỉ có một bản ghi.
type Progress struct {
	ID               primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID           primitive.ObjectID `json:"userId" bson:"userId" index:"compound:progress_userId_courseId_unique"`
	CourseID         primitive.ObjectID `json:"courseId" bson:"courseId" index:"compound:progress_userId_courseId_unique"`
	CompletedLessons []int              `json:"completedLessons" bson:"completedLessons"` // Index bài học đã hoàn thành (thứ tự chuẩn)
	QuizScores       []QuizScore        `json:"quizScores,omitempty" bson:"quizScores,omitempty"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
