// Package models - Enrollment thuộc domain Enrollment.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trạng thái ghi danh
const (
	EnrollmentStatusActive   = "active"
	EnrollmentStatusRefunded = "refunded"
)

// Enrollment - Ghi danh của một người dùng vào một khóa học.
// Mỗi cặp (userId, courseId) chỉ có một bản ghi.
type Enrollment struct {
	ID       primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID   primitive.ObjectID `json:"userId" bson:"userId" index:"compound:userId_courseId_unique"`
	CourseID primitive.ObjectID `json:"courseId" bson:"courseId" index:"compound:userId_courseId_unique;single:1"`
	Price    float64            `json:"price" bson:"price"` // Giá tại thời điểm ghi danh
	Status   string             `json:"status" bson:"status" default:"active"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
