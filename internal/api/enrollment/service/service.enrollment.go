// Package enrollmentsvc chứa business logic cho domain Enrollment: ghi danh
// khóa học, tiến độ học tập và chấm bài trắc nghiệm.
package enrollmentsvc

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basesvc "academy/internal/api/base/service"
	catalogmodels "academy/internal/api/catalog/models"
	enrollmentdto "academy/internal/api/enrollment/dto"
	enrollmentmodels "academy/internal/api/enrollment/models"
	"academy/internal/common"
)

// EnrollmentService xử lý ghi danh và tiến độ học tập.
// Mọi collaborator đều là interface và được inject qua constructor.
type EnrollmentService struct {
	enrollments basesvc.BaseServiceMongo[enrollmentmodels.Enrollment]
	progress    basesvc.BaseServiceMongo[enrollmentmodels.Progress]
	courses     basesvc.BaseServiceMongo[catalogmodels.Course]
}

// NewEnrollmentService khởi tạo EnrollmentService.
func NewEnrollmentService(
	enrollments basesvc.BaseServiceMongo[enrollmentmodels.Enrollment],
	progress basesvc.BaseServiceMongo[enrollmentmodels.Progress],
	courses basesvc.BaseServiceMongo[catalogmodels.Course],
) *EnrollmentService {
	return &EnrollmentService{
		enrollments: enrollments,
		progress:    progress,
		courses:     courses,
	}
}

// parseIDs parse cặp (userId, courseId) hex sang ObjectID.
func parseIDs(userIDHex string, courseIDHex string) (primitive.ObjectID, primitive.ObjectID, error) {
	userID, err := primitive.ObjectIDFromHex(userIDHex)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, common.NewError(common.ErrCodeValidationFormat,
			"userId không đúng định dạng ObjectID", common.StatusBadRequest, nil)
	}
	courseID, err := primitive.ObjectIDFromHex(courseIDHex)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, common.NewError(common.ErrCodeValidationFormat,
			fmt.Sprintf("courseId '%s' không đúng định dạng ObjectID", courseIDHex), common.StatusBadRequest, nil)
	}
	return userID, courseID, nil
}

// Enroll ghi danh người dùng vào khóa học. Ghi danh trùng → Conflict.
// Ghi danh thành công tăng bộ đếm purchased của khóa học.
func (s *EnrollmentService) Enroll(ctx context.Context, userIDHex string, input *enrollmentdto.EnrollInput) (*enrollmentmodels.Enrollment, error) {
	userID, courseID, err := parseIDs(userIDHex, input.CourseID)
	if err != nil {
		return nil, err
	}

	// Khóa học phải tồn tại
	if _, err := s.courses.FindOneById(ctx, courseID); err != nil {
		return nil, err
	}

	// Chặn ghi danh trùng (unique index là lớp bảo vệ cuối)
	exists, err := s.enrollments.DocumentExists(ctx, bson.M{"userId": userID, "courseId": courseID})
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.NewError(common.ErrCodeBusinessState,
			"Người dùng đã ghi danh khóa học này", common.StatusConflict, nil)
	}

	enrollment, err := s.enrollments.InsertOne(ctx, enrollmentmodels.Enrollment{
		UserID:   userID,
		CourseID: courseID,
		Price:    input.Price,
		Status:   enrollmentmodels.EnrollmentStatusActive,
	})
	if err != nil {
		return nil, err
	}

	// Tăng bộ đếm purchased — thất bại không hủy ghi danh, chỉ lan lỗi log ở caller
	if _, err := s.courses.UpdateById(ctx, courseID, &basesvc.UpdateData{
		Inc: map[string]interface{}{"purchased": 1},
	}); err != nil {
		return &enrollment, err
	}

	return &enrollment, nil
}

// ListByUser trả về tất cả ghi danh của một người dùng.
func (s *EnrollmentService) ListByUser(ctx context.Context, userIDHex string) ([]enrollmentmodels.Enrollment, error) {
	userID, err := primitive.ObjectIDFromHex(userIDHex)
	if err != nil {
		return nil, common.NewError(common.ErrCodeValidationFormat,
			"userId không đúng định dạng ObjectID", common.StatusBadRequest, nil)
	}
	return s.enrollments.Find(ctx, bson.M{"userId": userID}, nil)
}

// requireEnrolled đảm bảo người dùng đã ghi danh khóa học, trả về khóa học.
func (s *EnrollmentService) requireEnrolled(ctx context.Context, userID primitive.ObjectID, courseID primitive.ObjectID) (*catalogmodels.Course, error) {
	enrolled, err := s.enrollments.DocumentExists(ctx, bson.M{"userId": userID, "courseId": courseID})
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, common.NewError(common.ErrCodeBusinessOperation,
			"Người dùng chưa ghi danh khóa học này", common.StatusForbidden, nil)
	}

	course, err := s.courses.FindOneById(ctx, courseID)
	if err != nil {
		return nil, err
	}
	// Index bài học tính trên thứ tự chuẩn
	catalogmodels.SortLessons(course.CourseData)
	return &course, nil
}

// CompleteLesson đánh dấu một bài học đã hoàn thành. Index được kiểm tra
// biên so với totalLessons của khóa học.
func (s *EnrollmentService) CompleteLesson(ctx context.Context, userIDHex string, input *enrollmentdto.CompleteLessonInput) (*enrollmentmodels.Progress, error) {
	userID, courseID, err := parseIDs(userIDHex, input.CourseID)
	if err != nil {
		return nil, err
	}

	course, err := s.requireEnrolled(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	if input.LessonIndex < 0 || input.LessonIndex >= len(course.CourseData) {
		return nil, common.NewError(common.ErrCodeValidationInput,
			fmt.Sprintf("lessonIndex %d ngoài phạm vi (khóa học có %d bài)", input.LessonIndex, len(course.CourseData)),
			common.StatusBadRequest, nil)
	}

	progress, err := s.progress.Upsert(ctx, bson.M{"userId": userID, "courseId": courseID}, &basesvc.UpdateData{
		Set: map[string]interface{}{
			"userId":   userID,
			"courseId": courseID,
		},
		AddToSet: map[string]interface{}{
			"completedLessons": input.LessonIndex,
		},
	})
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// SubmitQuiz chấm bài trắc nghiệm của một bài học: so từng câu trả lời với
// answerIndex nhúng trong quiz, lưu điểm vào progress.
func (s *EnrollmentService) SubmitQuiz(ctx context.Context, userIDHex string, input *enrollmentdto.QuizSubmitInput) (*enrollmentdto.QuizSubmitResponse, error) {
	userID, courseID, err := parseIDs(userIDHex, input.CourseID)
	if err != nil {
		return nil, err
	}

	course, err := s.requireEnrolled(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	if input.LessonIndex < 0 || input.LessonIndex >= len(course.CourseData) {
		return nil, common.NewError(common.ErrCodeValidationInput,
			fmt.Sprintf("lessonIndex %d ngoài phạm vi (khóa học có %d bài)", input.LessonIndex, len(course.CourseData)),
			common.StatusBadRequest, nil)
	}

	lesson := course.CourseData[input.LessonIndex]
	quiz := lesson.Quiz
	if len(quiz) == 0 {
		return nil, common.NewError(common.ErrCodeBusinessOperation,
			fmt.Sprintf("Bài học %d không có bài trắc nghiệm", input.LessonIndex), common.StatusNotFound, nil)
	}
	if len(input.Answers) != len(quiz) {
		return nil, common.NewError(common.ErrCodeValidationInput,
			fmt.Sprintf("Số câu trả lời (%d) không khớp số câu hỏi (%d)", len(input.Answers), len(quiz)),
			common.StatusBadRequest, nil)
	}

	correct := 0
	for i, question := range quiz {
		if input.Answers[i] == question.AnswerIndex {
			correct++
		}
	}
	score := float64(correct) / float64(len(quiz)) * 100

	// Document cũ có thể chưa có passingScore, lùi về mặc định
	passingScore := lesson.PassingScore
	if passingScore == 0 {
		passingScore = catalogmodels.DefaultQuizPassingScore
	}
	passed := score >= float64(passingScore)

	result := enrollmentmodels.QuizScore{
		LessonIndex: input.LessonIndex,
		Score:       score,
		Passed:      passed,
		SubmittedAt: time.Now().UnixMilli(),
	}
	if _, err := s.progress.Upsert(ctx, bson.M{"userId": userID, "courseId": courseID}, &basesvc.UpdateData{
		Set: map[string]interface{}{
			"userId":   userID,
			"courseId": courseID,
		},
		Push: map[string]interface{}{
			"quizScores": result,
		},
	}); err != nil {
		return nil, err
	}

	return &enrollmentdto.QuizSubmitResponse{
		LessonIndex:  input.LessonIndex,
		Score:        score,
		PassingScore: passingScore,
		Passed:       passed,
		CorrectCount: correct,
		TotalCount:   len(quiz),
	}, nil
}

// GetProgress trả về tiến độ của người dùng trong một khóa học.
func (s *EnrollmentService) GetProgress(ctx context.Context, userIDHex string, courseIDHex string) (*enrollmentmodels.Progress, error) {
	userID, courseID, err := parseIDs(userIDHex, courseIDHex)
	if err != nil {
		return nil, err
	}

	progress, err := s.progress.FindOne(ctx, bson.M{"userId": userID, "courseId": courseID}, nil)
	if err != nil {
		return nil, err
	}
	return &progress, nil
}
