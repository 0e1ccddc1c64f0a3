// Package enrollmentdto chứa DTO cho domain Enrollment.
package enrollmentdto

// EnrollInput đầu vào ghi danh vào khóa học (userId lấy từ JWT)
type EnrollInput struct {
	CourseID string  `json:"courseId" validate:"required"`
	Price    float64 `json:"price" validate:"gte=0"`
}

// CompleteLessonInput đầu vào đánh dấu hoàn thành bài học
type CompleteLessonInput struct {
	CourseID    string `json:"courseId" validate:"required"`
	LessonIndex int    `json:"lessonIndex" validate:"gte=0"` // Index theo thứ tự chuẩn của courseData
}

// QuizSubmitInput đầu vào nộp bài trắc nghiệm của một bài học
type QuizSubmitInput struct {
	CourseID    string `json:"courseId" validate:"required"`
	LessonIndex int    `json:"lessonIndex" validate:"gte=0"`
	Answers     []int  `json:"answers" validate:"required,min=1"` // Index đáp án chọn cho từng câu hỏi
}

// QuizSubmitResponse kết quả chấm bài trắc nghiệm
type QuizSubmitResponse struct {
	LessonIndex  int     `json:"lessonIndex"`
	Score        float64 `json:"score"`        // Phần trăm câu đúng (0-100)
	PassingScore int     `json:"passingScore"` // Điểm đạt của quiz
	Passed       bool    `json:"passed"`       // Score >= PassingScore
	CorrectCount int     `json:"correctCount"` // Số câu đúng
	TotalCount   int     `json:"totalCount"`   // Tổng số câu hỏi
}
