// Package models - Course thuộc domain Catalog.
package models

import (
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Thumbnail - Ảnh đại diện khóa học lưu trên kho media (crop 800x450)
type Thumbnail struct {
	PublicID string `json:"publicId" bson:"publicId"` // Định danh trên kho media
	URL      string `json:"url" bson:"url"`           // URL truy cập ảnh
}

// LessonVideo - Video bài học lưu trên kho media
type LessonVideo struct {
	PublicID string  `json:"publicId" bson:"publicId"`           // Định danh trên kho media
	URL      string  `json:"url" bson:"url"`                     // URL truy cập video
	Duration float64 `json:"duration" bson:"duration"`           // Thời lượng (giây)
	Format   string  `json:"format,omitempty" bson:"format,omitempty"` // Định dạng file (mp4, ...)
}

// LessonLink - Tài liệu tham khảo đính kèm bài học
type LessonLink struct {
	Title string `json:"title" bson:"title"`
	URL   string `json:"url" bson:"url"`
}

// DefaultQuizPassingScore - Điểm đạt mặc định của quiz khi client không gửi
const DefaultQuizPassingScore = 70

// QuizQuestion - Câu hỏi trắc nghiệm trong bài học
type QuizQuestion struct {
	Question    string   `json:"question" bson:"question"`
	Options     []string `json:"options" bson:"options"`
	AnswerIndex int      `json:"answerIndex" bson:"answerIndex"` // Index của đáp án đúng trong Options
}

// Lesson - Bài học nhúng trong document khóa học
type Lesson struct {
	Title        string         `json:"title" bson:"title"`
	Description  string         `json:"description,omitempty" bson:"description,omitempty"`
	VideoSection string         `json:"videoSection,omitempty" bson:"videoSection,omitempty"` // Nhãn nhóm bài học (chương/section)
	Suggestion   string         `json:"suggestion,omitempty" bson:"suggestion,omitempty"`     // Gợi ý/ghi chú tự do cho học viên
	Order        int            `json:"order" bson:"order"` // Thứ tự hiển thị, có thể trùng hoặc thiếu
	Video        LessonVideo    `json:"video" bson:"video"`
	FreePreview  bool           `json:"freePreview" bson:"freePreview"` // Cho phép xem trước không cần ghi danh
	IsLocked     bool           `json:"isLocked" bson:"isLocked"`       // Khóa bài học với người chưa ghi danh, mặc định true
	Links        []LessonLink   `json:"links,omitempty" bson:"links,omitempty"`
	Quiz         []QuizQuestion `json:"quiz,omitempty" bson:"quiz,omitempty"`
	PassingScore int            `json:"passingScore,omitempty" bson:"passingScore,omitempty"` // Điểm đạt của quiz (0-100), mặc định 70
}

// Course - Khóa học với danh sách bài học nhúng
type Course struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name           string             `json:"name" bson:"name" index:"unique"` // Tên khóa học, duy nhất toàn hệ thống
	Description    string             `json:"description" bson:"description"`
	CategoryID     primitive.ObjectID `json:"categoryId" bson:"categoryId" index:"single:1"` // FK → catalog_categories
	Level          string             `json:"level" bson:"level" index:"single:1"`           // beginner, intermediate, advanced
	Language       string             `json:"language,omitempty" bson:"language,omitempty"`
	Price          float64            `json:"price" bson:"price"`                   // Giá bán, >= 0
	EstimatedPrice float64            `json:"estimatedPrice" bson:"estimatedPrice"` // Giá niêm yết trước giảm, >= 0
	Tags           []string           `json:"tags,omitempty" bson:"tags,omitempty"` // Đã trim + khử trùng lặp trước khi lưu
	Benefits       []string           `json:"benefits,omitempty" bson:"benefits,omitempty"`
	Prerequisites  []string           `json:"prerequisites,omitempty" bson:"prerequisites,omitempty"`
	Thumbnail      Thumbnail          `json:"thumbnail" bson:"thumbnail"`
	CourseData     []Lesson           `json:"courseData" bson:"courseData"`

	// Các trường dẫn xuất, tính lại từ CourseData mỗi lần ghi, không nhận từ client
	TotalLessons  int     `json:"totalLessons" bson:"totalLessons"`
	TotalDuration float64 `json:"totalDuration" bson:"totalDuration"` // Tổng thời lượng video (giây)

	Ratings   float64 `json:"ratings" bson:"ratings"`     // Điểm đánh giá tổng hợp, >= 0, không nhận từ client
	Purchased int64   `json:"purchased" bson:"purchased"` // Số lượt ghi danh

	// Tên danh mục, populate khi đọc, không lưu vào document
	CategoryName string `json:"categoryName,omitempty" bson:"-"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// SortLessons sắp xếp bài học theo thứ tự chuẩn (order tăng dần, cùng order
// thì giữ nguyên vị trí trong mảng gốc). Sort ổn định nên an toàn với order
// trùng hoặc thiếu.
func SortLessons(lessons []Lesson) {
	sort.SliceStable(lessons, func(i, j int) bool {
		return lessons[i].Order < lessons[j].Order
	})
}

// RecomputeDerived sắp xếp lại bài học theo thứ tự chuẩn và tính lại các trường
// dẫn xuất từ mảng nhúng. Phải gọi trước MỌI lần ghi document.
func (c *Course) RecomputeDerived() {
	SortLessons(c.CourseData)
	c.TotalLessons = len(c.CourseData)

	total := 0.0
	for _, lesson := range c.CourseData {
		total += lesson.Video.Duration
	}
	c.TotalDuration = total
}

// AssetPublicIDs trả về public ID của tất cả tài nguyên media mà khóa học đang
// tham chiếu: thumbnail (image) và video từng bài học (video).
func (c *Course) AssetPublicIDs() (imageIDs []string, videoIDs []string) {
	if c.Thumbnail.PublicID != "" {
		imageIDs = append(imageIDs, c.Thumbnail.PublicID)
	}
	for _, lesson := range c.CourseData {
		if lesson.Video.PublicID != "" {
			videoIDs = append(videoIDs, lesson.Video.PublicID)
		}
	}
	return imageIDs, videoIDs
}
