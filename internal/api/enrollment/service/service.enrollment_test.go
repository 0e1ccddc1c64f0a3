// Package enrollmentsvc - Test ghi danh, tiến độ và chấm trắc nghiệm.
package enrollmentsvc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	catalogmodels "academy/internal/api/catalog/models"
	basefake "academy/internal/api/base/service/fake"
	enrollmentdto "academy/internal/api/enrollment/dto"
	enrollmentmodels "academy/internal/api/enrollment/models"
	"academy/internal/common"
)

type enrollmentFixture struct {
	svc         *EnrollmentService
	enrollments *basefake.Store[enrollmentmodels.Enrollment]
	progress    *basefake.Store[enrollmentmodels.Progress]
	courses     *basefake.Store[catalogmodels.Course]
	course      catalogmodels.Course
	userID      string
}

func newEnrollmentFixture(t *testing.T) *enrollmentFixture {
	t.Helper()

	enrollments := basefake.NewStore[enrollmentmodels.Enrollment]()
	progress := basefake.NewStore[enrollmentmodels.Progress]()
	courses := basefake.NewStore[catalogmodels.Course]()

	course, err := courses.InsertOne(context.Background(), catalogmodels.Course{
		Name: "Go căn bản",
		CourseData: []catalogmodels.Lesson{
			{
				Title: "Bài 1", Order: 1,
				Quiz: []catalogmodels.QuizQuestion{
					{Question: "1+1?", Options: []string{"1", "2"}, AnswerIndex: 1},
					{Question: "2+2?", Options: []string{"4", "5"}, AnswerIndex: 0},
				},
				PassingScore: 50,
			},
			{Title: "Bài 2", Order: 2},
		},
		TotalLessons: 2,
	})
	require.NoError(t, err)

	return &enrollmentFixture{
		svc:         NewEnrollmentService(enrollments, progress, courses),
		enrollments: enrollments,
		progress:    progress,
		courses:     courses,
		course:      course,
		userID:      primitive.NewObjectID().Hex(),
	}
}

func statusOf(err error) int {
	var customErr *common.Error
	if errors.As(err, &customErr) {
		return customErr.StatusCode
	}
	return 0
}

func (f *enrollmentFixture) enroll(t *testing.T) *enrollmentmodels.Enrollment {
	t.Helper()
	enrollment, err := f.svc.Enroll(context.Background(), f.userID, &enrollmentdto.EnrollInput{
		CourseID: f.course.ID.Hex(),
		Price:    499000,
	})
	require.NoError(t, err)
	return enrollment
}

// ==================== ENROLL ====================

func TestEnroll_HappyPathIncrementsPurchased(t *testing.T) {
	f := newEnrollmentFixture(t)

	enrollment := f.enroll(t)
	assert.False(t, enrollment.ID.IsZero())
	assert.Equal(t, enrollmentmodels.EnrollmentStatusActive, enrollment.Status)
	assert.Equal(t, float64(499000), enrollment.Price)

	// Bộ đếm purchased của khóa học tăng 1
	saved := f.courses.All()[0]
	assert.Equal(t, int64(1), saved.Purchased)
}

func TestEnroll_Duplicate(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.enroll(t)

	_, err := f.svc.Enroll(context.Background(), f.userID, &enrollmentdto.EnrollInput{
		CourseID: f.course.ID.Hex(),
	})
	require.Error(t, err)
	assert.Equal(t, common.StatusConflict, statusOf(err))
	assert.Equal(t, 1, f.enrollments.Len())
}

func TestEnroll_CourseNotFound(t *testing.T) {
	f := newEnrollmentFixture(t)

	_, err := f.svc.Enroll(context.Background(), f.userID, &enrollmentdto.EnrollInput{
		CourseID: primitive.NewObjectID().Hex(),
	})
	require.Error(t, err)
	assert.Equal(t, common.StatusNotFound, statusOf(err))
}

func TestEnroll_BadCourseID(t *testing.T) {
	f := newEnrollmentFixture(t)

	_, err := f.svc.Enroll(context.Background(), f.userID, &enrollmentdto.EnrollInput{CourseID: "xyz"})
	require.Error(t, err)
	assert.Equal(t, common.StatusBadRequest, statusOf(err))
}

func TestListByUser(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.enroll(t)

	list, err := f.svc.ListByUser(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	other, err := f.svc.ListByUser(context.Background(), primitive.NewObjectID().Hex())
	require.NoError(t, err)
	assert.Empty(t, other)
}

// ==================== PROGRESS ====================

func TestCompleteLesson_UpsertsProgress(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.enroll(t)

	progress, err := f.svc.CompleteLesson(context.Background(), f.userID, &enrollmentdto.CompleteLessonInput{
		CourseID:    f.course.ID.Hex(),
		LessonIndex: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, progress.CompletedLessons)

	// Hoàn thành lại cùng bài không tạo entry trùng ($addToSet)
	progress, err = f.svc.CompleteLesson(context.Background(), f.userID, &enrollmentdto.CompleteLessonInput{
		CourseID:    f.course.ID.Hex(),
		LessonIndex: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, progress.CompletedLessons)
	assert.Equal(t, 1, f.progress.Len(), "mỗi cặp (user, course) chỉ một document progress")
}

func TestCompleteLesson_IndexOutOfRange(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.enroll(t)

	_, err := f.svc.CompleteLesson(context.Background(), f.userID, &enrollmentdto.CompleteLessonInput{
		CourseID:    f.course.ID.Hex(),
		LessonIndex: 2,
	})
	require.Error(t, err)
	assert.Equal(t, common.StatusBadRequest, statusOf(err))
}

func TestCompleteLesson_NotEnrolled(t *testing.T) {
	f := newEnrollmentFixture(t)

	_, err := f.svc.CompleteLesson(context.Background(), f.userID, &enrollmentdto.CompleteLessonInput{
		CourseID:    f.course.ID.Hex(),
		LessonIndex: 0,
	})
	require.Error(t, err)
	assert.Equal(t, common.StatusForbidden, statusOf(err))
}

// ==================== QUIZ ====================

func TestSubmitQuiz_Grading(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.enroll(t)

	// Câu 1 đúng (đáp án 1), câu 2 sai (đáp án đúng là 0)
	result, err := f.svc.SubmitQuiz(context.Background(), f.userID, &enrollmentdto.QuizSubmitInput{
		CourseID:    f.course.ID.Hex(),
		LessonIndex: 0,
		Answers:     []int{1, 1},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.CorrectCount)
	assert.Equal(t, 2, result.TotalCount)
	assert.Equal(t, 50.0, result.Score)

	// Quiz của bài 1 đặt passingScore 50 → 50% là vừa đủ đạt
	assert.Equal(t, 50, result.PassingScore)
	assert.True(t, result.Passed)

	// Điểm được push vào progress
	require.Equal(t, 1, f.progress.Len())
	scores := f.progress.All()[0].QuizScores
	require.Len(t, scores, 1)
	assert.Equal(t, 0, scores[0].LessonIndex)
	assert.Equal(t, 50.0, scores[0].Score)
	assert.True(t, scores[0].Passed)
	assert.NotZero(t, scores[0].SubmittedAt)
}

func TestSubmitQuiz_FailsBelowPassingScore(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.enroll(t)

	// Cả hai câu đều sai → 0%, dưới passingScore 50
	result, err := f.svc.SubmitQuiz(context.Background(), f.userID, &enrollmentdto.QuizSubmitInput{
		CourseID:    f.course.ID.Hex(),
		LessonIndex: 0,
		Answers:     []int{0, 1},
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.Score)
	assert.False(t, result.Passed)
	assert.False(t, f.progress.All()[0].QuizScores[0].Passed)
}

func TestSubmitQuiz_DefaultPassingScoreWhenUnset(t *testing.T) {
	f := newEnrollmentFixture(t)

	// Document cũ: quiz không có passingScore → mặc định 70
	course, err := f.courses.InsertOne(context.Background(), catalogmodels.Course{
		Name: "Dữ liệu cũ",
		CourseData: []catalogmodels.Lesson{
			{
				Title: "Bài 1", Order: 1,
				Quiz: []catalogmodels.QuizQuestion{
					{Question: "1+1?", Options: []string{"1", "2"}, AnswerIndex: 1},
					{Question: "2+2?", Options: []string{"4", "5"}, AnswerIndex: 0},
				},
			},
		},
		TotalLessons: 1,
	})
	require.NoError(t, err)

	_, err = f.svc.Enroll(context.Background(), f.userID, &enrollmentdto.EnrollInput{
		CourseID: course.ID.Hex(), Price: 499000,
	})
	require.NoError(t, err)

	// 1/2 câu đúng = 50% < 70 → không đạt
	result, err := f.svc.SubmitQuiz(context.Background(), f.userID, &enrollmentdto.QuizSubmitInput{
		CourseID:    course.ID.Hex(),
		LessonIndex: 0,
		Answers:     []int{1, 1},
	})
	require.NoError(t, err)

	assert.Equal(t, catalogmodels.DefaultQuizPassingScore, result.PassingScore)
	assert.False(t, result.Passed)
}

func TestSubmitQuiz_AnswerCountMismatch(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.enroll(t)

	_, err := f.svc.SubmitQuiz(context.Background(), f.userID, &enrollmentdto.QuizSubmitInput{
		CourseID:    f.course.ID.Hex(),
		LessonIndex: 0,
		Answers:     []int{1},
	})
	require.Error(t, err)
	assert.Equal(t, common.StatusBadRequest, statusOf(err))
}

func TestSubmitQuiz_LessonWithoutQuiz(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.enroll(t)

	_, err := f.svc.SubmitQuiz(context.Background(), f.userID, &enrollmentdto.QuizSubmitInput{
		CourseID:    f.course.ID.Hex(),
		LessonIndex: 1,
		Answers:     []int{0},
	})
	require.Error(t, err)
	assert.Equal(t, common.StatusNotFound, statusOf(err))
}

// ==================== GET PROGRESS ====================

func TestGetProgress(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.enroll(t)

	_, err := f.svc.CompleteLesson(context.Background(), f.userID, &enrollmentdto.CompleteLessonInput{
		CourseID:    f.course.ID.Hex(),
		LessonIndex: 0,
	})
	require.NoError(t, err)

	progress, err := f.svc.GetProgress(context.Background(), f.userID, f.course.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, []int{0}, progress.CompletedLessons)

	_, err = f.svc.GetProgress(context.Background(), primitive.NewObjectID().Hex(), f.course.ID.Hex())
	require.Error(t, err, "user chưa có progress")
}
