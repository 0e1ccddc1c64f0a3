// Package catalogdto chứa DTO cho domain Catalog (course, category).
package catalogdto

import (
	catalogmodels "academy/internal/api/catalog/models"
)

// LessonVideoInput - Tham chiếu tới video đã tồn tại trên kho media.
// Dùng khi bài học tái sử dụng video đã upload (không gửi lại payload).
type LessonVideoInput struct {
	PublicID string  `json:"publicId" validate:"required"`
	URL      string  `json:"url" validate:"required,url"`
	Duration float64 `json:"duration" validate:"gte=0"`
	Format   string  `json:"format,omitempty"`
}

// LessonLinkInput - Tài liệu tham khảo đính kèm bài học
type LessonLinkInput struct {
	Title string `json:"title" validate:"required"`
	URL   string `json:"url" validate:"required,url"`
}

// QuizQuestionInput - Câu hỏi trắc nghiệm trong bài học
type QuizQuestionInput struct {
	Question    string   `json:"question" validate:"required"`
	Options     []string `json:"options" validate:"required,min=2"`
	AnswerIndex int      `json:"answerIndex" validate:"gte=0"`
}

// LessonInput - Bài học trong request tạo/cập nhật khóa học.
// Mỗi bài học phải có ĐÚNG MỘT trong hai: Video (tham chiếu asset đã tồn tại)
// hoặc VideoBase64 (payload data URI để upload). Cả hai hoặc không có gì đều
// là lỗi Validation, không có fallback tự sửa.
type LessonInput struct {
	Title        string              `json:"title" validate:"required,no_xss"`
	Description  string              `json:"description,omitempty"`
	VideoSection string              `json:"videoSection,omitempty"`
	Suggestion   string              `json:"suggestion,omitempty"`
	Order        int                 `json:"order"`
	Video        *LessonVideoInput   `json:"video,omitempty"`
	VideoBase64  string              `json:"videoBase64,omitempty"`
	FreePreview  bool                `json:"freePreview"`
	IsLocked     *bool               `json:"isLocked,omitempty"` // Không gửi → mặc định true
	Links        []LessonLinkInput   `json:"links,omitempty" validate:"omitempty,dive"`
	Quiz         []QuizQuestionInput `json:"quiz,omitempty" validate:"omitempty,dive"`
	PassingScore *int                `json:"passingScore,omitempty" validate:"omitempty,gte=0,lte=100"` // Không gửi → mặc định 70
}

// CourseCreateInput đầu vào tạo khóa học
type CourseCreateInput struct {
	Name           string        `json:"name" validate:"required,no_xss" maxLength:"200"`
	Description    string        `json:"description" validate:"required,min=20"`
	CategoryID     string        `json:"categoryId" validate:"required"`
	Level          string        `json:"level" validate:"required,course_level"`
	Language       string        `json:"language,omitempty"`
	Price          float64       `json:"price" validate:"gte=0"`
	EstimatedPrice float64       `json:"estimatedPrice" validate:"gte=0"`
	Tags           []string      `json:"tags,omitempty"` // Trim + khử trùng lặp trước khi lưu
	Benefits       []string      `json:"benefits,omitempty"`
	Prerequisites  []string      `json:"prerequisites,omitempty"`
	Thumbnail      string        `json:"thumbnail" validate:"required,data_uri"` // Ảnh đại diện dạng data URI base64
	CourseData     []LessonInput `json:"courseData" validate:"required,min=1,dive"`
}

// CourseUpdateInput đầu vào cập nhật khóa học — mọi trường đều tùy chọn,
// chỉ trường được gửi mới bị ghi đè (partial update).
// CourseData khi gửi sẽ thay thế TOÀN BỘ danh sách bài học hiện có.
// Thumbnail chỉ gửi khi muốn thay ảnh đại diện.
type CourseUpdateInput struct {
	Name           *string       `json:"name,omitempty" validate:"omitempty,no_xss" maxLength:"200"`
	Description    *string       `json:"description,omitempty" validate:"omitempty,min=20"`
	CategoryID     *string       `json:"categoryId,omitempty"`
	Level          *string       `json:"level,omitempty" validate:"omitempty,course_level"`
	Language       *string       `json:"language,omitempty"`
	Price          *float64      `json:"price,omitempty" validate:"omitempty,gte=0"`
	EstimatedPrice *float64      `json:"estimatedPrice,omitempty" validate:"omitempty,gte=0"`
	Tags           []string      `json:"tags,omitempty"` // nil = giữ nguyên, mảng rỗng = xóa hết tag
	Benefits       []string      `json:"benefits,omitempty"`
	Prerequisites  []string      `json:"prerequisites,omitempty"`
	Thumbnail      string        `json:"thumbnail,omitempty" validate:"omitempty,data_uri"`
	CourseData     []LessonInput `json:"courseData,omitempty" validate:"omitempty,min=1,dive"`
}

// CourseDeleteInput đầu vào xóa khóa học
type CourseDeleteInput struct {
	ID string `json:"id" validate:"required"`
}

// CourseMutationResponse kết quả tạo/cập nhật/xóa khóa học.
// AssetsNotCleanedUp liệt kê public ID của các tài nguyên media xóa thất bại
// (đã ghi vào catalog_orphan_assets chờ worker dọn lại) — không bao giờ làm
// request thất bại.
type CourseMutationResponse struct {
	Course             *catalogmodels.Course `json:"course,omitempty"`
	AssetsNotCleanedUp []string              `json:"assetsNotCleanedUp,omitempty"`
}
