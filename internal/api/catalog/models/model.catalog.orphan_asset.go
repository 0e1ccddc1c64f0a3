// Package models - OrphanAsset thuộc domain Catalog.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrphanAsset - Tài nguyên media xóa thất bại, chờ worker dọn dẹp lại.
// Mỗi lần xóa asset non-fatal thất bại đều được ghi lại ở đây để không
// rò rỉ tài nguyên trên kho media.
type OrphanAsset struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	PublicID     string             `json:"publicId" bson:"publicId" index:"unique"` // Định danh trên kho media
	ResourceType string             `json:"resourceType" bson:"resourceType"`        // image hoặc video
	CourseID     primitive.ObjectID `json:"courseId,omitempty" bson:"courseId,omitempty" index:"single:1"`
	Reason       string             `json:"reason" bson:"reason"` // Ngữ cảnh phát sinh (update cleanup, delete course, upload rollback)
	Attempts     int                `json:"attempts" bson:"attempts"` // Số lần worker đã retry
	LastError    string             `json:"lastError,omitempty" bson:"lastError,omitempty"`
	CreatedAt    int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt    int64              `json:"updatedAt" bson:"updatedAt"`
}
