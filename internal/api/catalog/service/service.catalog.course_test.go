// Package catalogsvc - Test orchestration vòng đời khóa học với kho media giả
// và store in-memory.
package catalogsvc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	catalogdto "academy/internal/api/catalog/dto"
	catalogmodels "academy/internal/api/catalog/models"
	basefake "academy/internal/api/base/service/fake"
	assetfake "academy/internal/assetstore/fake"
	"academy/internal/common"
)

// courseFixture gom toàn bộ collaborator giả của một CourseService test
type courseFixture struct {
	svc        *CourseService
	courses    *basefake.Store[catalogmodels.Course]
	categories *basefake.Store[catalogmodels.Category]
	orphans    *basefake.Store[catalogmodels.OrphanAsset]
	assets     *assetfake.Provider
	categoryID primitive.ObjectID
}

func newCourseFixture(t *testing.T) *courseFixture {
	t.Helper()

	courses := basefake.NewStore[catalogmodels.Course]()
	categories := basefake.NewStore[catalogmodels.Category]()
	orphans := basefake.NewStore[catalogmodels.OrphanAsset]()
	assets := assetfake.New()

	category, err := categories.InsertOne(context.Background(), catalogmodels.Category{Name: "Lập trình Web"})
	require.NoError(t, err)

	return &courseFixture{
		svc:        NewCourseService(courses, categories, orphans, assets, nil, 10*1024*1024),
		courses:    courses,
		categories: categories,
		orphans:    orphans,
		assets:     assets,
		categoryID: category.ID,
	}
}

func lessonWithPayload(title string, order int) catalogdto.LessonInput {
	return catalogdto.LessonInput{
		Title:       title,
		Order:       order,
		VideoBase64: assetfake.DataURI("video/mp4"),
	}
}

func validCreateInput(f *courseFixture) *catalogdto.CourseCreateInput {
	return &catalogdto.CourseCreateInput{
		Name:           "Go từ cơ bản đến nâng cao",
		Description:    "Khóa học Go đầy đủ cho người mới bắt đầu",
		CategoryID:     f.categoryID.Hex(),
		Level:          "beginner",
		Price:          10,
		EstimatedPrice: 15,
		Benefits:       []string{"Thành thạo Go"},
		Prerequisites:  []string{"Biết lập trình cơ bản"},
		Thumbnail:      assetfake.DataURI("image/png"),
		CourseData: []catalogdto.LessonInput{
			lessonWithPayload("Bài 2", 2),
			lessonWithPayload("Bài 1", 1),
		},
	}
}

// ptr tiện cho các trường optional của CourseUpdateInput
func ptr[T any](v T) *T {
	return &v
}

// statusOf trả về HTTP status của một *common.Error (0 nếu không phải)
func statusOf(err error) int {
	var customErr *common.Error
	if errors.As(err, &customErr) {
		return customErr.StatusCode
	}
	return 0
}

// ==================== CREATE ====================

func TestCourseCreate_HappyPath(t *testing.T) {
	f := newCourseFixture(t)

	created, err := f.svc.Create(context.Background(), validCreateInput(f))
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.False(t, created.ID.IsZero(), "course phải được gán ID")
	assert.Equal(t, "Lập trình Web", created.CategoryName)
	assert.NotEmpty(t, created.Thumbnail.PublicID)

	// Bài học theo thứ tự chuẩn dù input gửi ngược
	require.Len(t, created.CourseData, 2)
	assert.Equal(t, "Bài 1", created.CourseData[0].Title)
	assert.Equal(t, "Bài 2", created.CourseData[1].Title)

	// Trường dẫn xuất tính từ mảng nhúng
	assert.Equal(t, 2, created.TotalLessons)
	assert.Equal(t, 240.0, created.TotalDuration, "2 video x 120s")

	// Thông tin giá và mô tả bổ trợ phải được persist
	assert.Equal(t, 10.0, created.Price)
	assert.Equal(t, 15.0, created.EstimatedPrice)
	assert.Equal(t, []string{"Thành thạo Go"}, created.Benefits)
	assert.Equal(t, []string{"Biết lập trình cơ bản"}, created.Prerequisites)
	assert.Equal(t, 0.0, created.Ratings, "ratings là trường tổng hợp, khởi tạo 0")

	// Bài học mặc định bị khóa khi client không gửi isLocked
	for _, lesson := range created.CourseData {
		assert.True(t, lesson.IsLocked)
	}

	// 1 thumbnail + 2 video trên kho media
	assert.Equal(t, 3, f.assets.Count())
	assert.Equal(t, 1, f.courses.Len())
}

func TestCourseCreate_LessonFieldsPersisted(t *testing.T) {
	f := newCourseFixture(t)

	input := validCreateInput(f)
	input.CourseData[0].VideoSection = "Chương 1"
	input.CourseData[0].Suggestion = "Xem lại bài trước khi làm quiz"
	input.CourseData[0].IsLocked = ptr(false)
	input.CourseData[0].Quiz = []catalogdto.QuizQuestionInput{
		{Question: "Go là gì?", Options: []string{"Ngôn ngữ", "Framework"}, AnswerIndex: 0},
	}
	input.CourseData[1].Quiz = []catalogdto.QuizQuestionInput{
		{Question: "Goroutine?", Options: []string{"Thread", "Lightweight thread"}, AnswerIndex: 1},
	}
	input.CourseData[1].PassingScore = ptr(90)

	created, err := f.svc.Create(context.Background(), input)
	require.NoError(t, err)

	// Input gửi Bài 2 trước (order 2) nên sau sort nằm ở index 1
	lesson := created.CourseData[1]
	assert.Equal(t, "Chương 1", lesson.VideoSection)
	assert.Equal(t, "Xem lại bài trước khi làm quiz", lesson.Suggestion)
	assert.False(t, lesson.IsLocked, "client gửi isLocked=false phải được tôn trọng")
	assert.Equal(t, catalogmodels.DefaultQuizPassingScore, lesson.PassingScore,
		"quiz không gửi passingScore dùng mặc định 70")
	assert.Equal(t, 90, created.CourseData[0].PassingScore)
}

func TestCourseCreate_RequiresLessons(t *testing.T) {
	f := newCourseFixture(t)

	input := validCreateInput(f)
	input.CourseData = nil

	_, err := f.svc.Create(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, common.StatusBadRequest, statusOf(err))
	assert.Equal(t, 0, f.assets.UploadCalls)
	assert.Equal(t, 0, f.courses.Len(), "khóa học không có bài học nào không được persist")
}

func TestCourseCreate_NormalizesTags(t *testing.T) {
	f := newCourseFixture(t)

	input := validCreateInput(f)
	input.Tags = []string{"  go ", "go", "web", "go", "  ", "web "}

	created, err := f.svc.Create(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "web"}, created.Tags, "tag phải được trim và khử trùng lặp")
}

func TestCourseCreate_QuizAnswerIndexOutOfRange(t *testing.T) {
	f := newCourseFixture(t)

	input := validCreateInput(f)
	input.CourseData[0].Quiz = []catalogdto.QuizQuestionInput{
		{Question: "Go là gì?", Options: []string{"Ngôn ngữ", "Framework"}, AnswerIndex: 2},
	}

	_, err := f.svc.Create(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, common.StatusBadRequest, statusOf(err))
	assert.Equal(t, 0, f.assets.UploadCalls, "validation fail trước mọi upload")
}

func TestCourseCreate_LessonVideoExclusive(t *testing.T) {
	f := newCourseFixture(t)

	t.Run("cả video lẫn videoBase64", func(t *testing.T) {
		input := validCreateInput(f)
		input.CourseData[0].Video = &catalogdto.LessonVideoInput{PublicID: "video/x", URL: "https://x/v"}

		_, err := f.svc.Create(context.Background(), input)
		require.Error(t, err)
		assert.Equal(t, common.StatusBadRequest, statusOf(err))
	})

	t.Run("không có gì", func(t *testing.T) {
		input := validCreateInput(f)
		input.CourseData[0].VideoBase64 = ""

		_, err := f.svc.Create(context.Background(), input)
		require.Error(t, err)
		assert.Equal(t, common.StatusBadRequest, statusOf(err))
	})

	// Validation fail trước khi có bất kỳ upload hay ghi document nào
	assert.Equal(t, 0, f.assets.UploadCalls)
	assert.Equal(t, 0, f.courses.Len())
}

func TestCourseCreate_CategoryNotFound(t *testing.T) {
	f := newCourseFixture(t)

	input := validCreateInput(f)
	input.CategoryID = primitive.NewObjectID().Hex()

	_, err := f.svc.Create(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, common.StatusNotFound, statusOf(err))
	assert.Equal(t, 0, f.assets.UploadCalls)
}

func TestCourseCreate_BadCategoryID(t *testing.T) {
	f := newCourseFixture(t)

	input := validCreateInput(f)
	input.CategoryID = "không-phải-objectid"

	_, err := f.svc.Create(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, common.StatusBadRequest, statusOf(err))
}

func TestCourseCreate_DuplicateName(t *testing.T) {
	f := newCourseFixture(t)

	_, err := f.svc.Create(context.Background(), validCreateInput(f))
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), validCreateInput(f))
	require.Error(t, err)
	assert.Equal(t, common.StatusConflict, statusOf(err))
	assert.Equal(t, 1, f.courses.Len(), "course trùng tên không được ghi")
}

func TestCourseCreate_ThumbnailUploadFails(t *testing.T) {
	f := newCourseFixture(t)
	f.assets.FailUploads = true

	_, err := f.svc.Create(context.Background(), validCreateInput(f))
	require.Error(t, err)
	assert.Equal(t, common.StatusBadGateway, statusOf(err))

	// Không có gì persist: không document, không asset
	assert.Equal(t, 0, f.courses.Len())
	assert.Equal(t, 0, f.assets.Count())
}

func TestCourseCreate_VideoUploadFailsMidBatch(t *testing.T) {
	f := newCourseFixture(t)
	// Thumbnail + video bài 1 thành công, video bài 2 thất bại
	f.assets.FailUploadAfter = 2

	_, err := f.svc.Create(context.Background(), validCreateInput(f))
	require.Error(t, err)
	assert.Equal(t, common.StatusBadGateway, statusOf(err))

	// Fail-fast + rollback: các asset đã upload bị xóa hết, không ghi document
	assert.Equal(t, 0, f.courses.Len())
	assert.Equal(t, 0, f.assets.Count(), "thumbnail và video bài 1 phải được rollback")
}

func TestCourseCreate_RollbackDeleteFailureRecordsOrphans(t *testing.T) {
	f := newCourseFixture(t)
	f.assets.FailUploadAfter = 2
	f.assets.FailDeletes = true

	_, err := f.svc.Create(context.Background(), validCreateInput(f))
	require.Error(t, err)

	// Rollback không xóa được → 2 asset (thumbnail + video bài 1) thành orphan
	assert.Equal(t, 2, f.orphans.Len())
	for _, orphan := range f.orphans.All() {
		assert.Equal(t, "upload_rollback", orphan.Reason)
		assert.NotEmpty(t, orphan.LastError)
	}
}

// ==================== UPDATE ====================

// createdCourse tạo sẵn một khóa học qua service, trả về bản ghi đã persist
func createdCourse(t *testing.T, f *courseFixture) *catalogmodels.Course {
	t.Helper()
	created, err := f.svc.Create(context.Background(), validCreateInput(f))
	require.NoError(t, err)
	return created
}

// lessonsOnly build input update chỉ thay danh sách bài học, mọi trường khác
// giữ nguyên (partial update)
func lessonsOnly(lessons []catalogdto.LessonInput) *catalogdto.CourseUpdateInput {
	return &catalogdto.CourseUpdateInput{CourseData: lessons}
}

// refLesson build LessonInput tham chiếu video đã tồn tại của một bài học
func refLesson(lesson catalogmodels.Lesson) catalogdto.LessonInput {
	return catalogdto.LessonInput{
		Title: lesson.Title,
		Order: lesson.Order,
		Video: &catalogdto.LessonVideoInput{
			PublicID: lesson.Video.PublicID,
			URL:      lesson.Video.URL,
			Duration: lesson.Video.Duration,
			Format:   lesson.Video.Format,
		},
	}
}

func TestCourseUpdate_WholesaleReplacementCleansStaleVideos(t *testing.T) {
	f := newCourseFixture(t)
	course := createdCourse(t, f)

	staleVideo := course.CourseData[1].Video.PublicID
	keptVideo := course.CourseData[0].Video.PublicID

	// Mảng mới chỉ giữ bài 1 — bài 2 biến mất hoàn toàn
	saved, notCleaned, err := f.svc.Update(context.Background(), course.ID.Hex(),
		lessonsOnly([]catalogdto.LessonInput{refLesson(course.CourseData[0])}))
	require.NoError(t, err)
	assert.Empty(t, notCleaned)

	assert.Equal(t, 1, saved.TotalLessons)
	assert.Equal(t, 120.0, saved.TotalDuration)

	// Video không còn được tham chiếu bị xóa khỏi kho media, video giữ lại còn nguyên
	assert.False(t, f.assets.Exists(staleVideo), "video bài 2 phải bị dọn")
	assert.True(t, f.assets.Exists(keptVideo))
}

func TestCourseUpdate_NewThumbnailCleansOld(t *testing.T) {
	f := newCourseFixture(t)
	course := createdCourse(t, f)
	oldThumb := course.Thumbnail.PublicID

	input := lessonsOnly([]catalogdto.LessonInput{
		refLesson(course.CourseData[0]), refLesson(course.CourseData[1]),
	})
	input.Thumbnail = assetfake.DataURI("image/png")

	saved, notCleaned, err := f.svc.Update(context.Background(), course.ID.Hex(), input)
	require.NoError(t, err)
	assert.Empty(t, notCleaned)

	assert.NotEqual(t, oldThumb, saved.Thumbnail.PublicID)
	assert.False(t, f.assets.Exists(oldThumb), "thumbnail cũ phải bị dọn")
	assert.True(t, f.assets.Exists(saved.Thumbnail.PublicID))
}

func TestCourseUpdate_CleanupFailureIsNonFatal(t *testing.T) {
	f := newCourseFixture(t)
	course := createdCourse(t, f)
	staleVideo := course.CourseData[1].Video.PublicID

	// Update ghi document xong mới dọn asset; delete thất bại không được làm request fail
	f.assets.FailDeletes = true

	saved, notCleaned, err := f.svc.Update(context.Background(), course.ID.Hex(),
		lessonsOnly([]catalogdto.LessonInput{refLesson(course.CourseData[0])}))
	require.NoError(t, err, "xóa asset thất bại là non-fatal")
	require.NotNil(t, saved)

	// Public ID không dọn được phải được báo cáo và ghi orphan
	assert.Equal(t, []string{staleVideo}, notCleaned)
	require.Equal(t, 1, f.orphans.Len())
	orphan := f.orphans.All()[0]
	assert.Equal(t, staleVideo, orphan.PublicID)
	assert.Equal(t, "update_cleanup", orphan.Reason)
	assert.Equal(t, course.ID, orphan.CourseID)
}

func TestCourseUpdate_NotFound(t *testing.T) {
	f := newCourseFixture(t)

	_, _, err := f.svc.Update(context.Background(), primitive.NewObjectID().Hex(), &catalogdto.CourseUpdateInput{
		Name: ptr("Không tồn tại"),
	})
	require.Error(t, err)
	assert.Equal(t, common.StatusNotFound, statusOf(err))
}

func TestCourseUpdate_NameConflictWithOtherCourse(t *testing.T) {
	f := newCourseFixture(t)
	course := createdCourse(t, f)

	other := validCreateInput(f)
	other.Name = "Khóa học khác"
	_, err := f.svc.Create(context.Background(), other)
	require.NoError(t, err)

	input := lessonsOnly([]catalogdto.LessonInput{refLesson(course.CourseData[0])})
	input.Name = ptr("Khóa học khác")

	_, _, err = f.svc.Update(context.Background(), course.ID.Hex(), input)
	require.Error(t, err)
	assert.Equal(t, common.StatusConflict, statusOf(err))
}

func TestCourseUpdate_KeepingOwnNameIsNotConflict(t *testing.T) {
	f := newCourseFixture(t)
	course := createdCourse(t, f)

	input := lessonsOnly([]catalogdto.LessonInput{refLesson(course.CourseData[0])})
	input.Name = ptr(course.Name)

	_, _, err := f.svc.Update(context.Background(), course.ID.Hex(), input)
	assert.NoError(t, err, "giữ nguyên tên của chính mình không phải conflict")
}

func TestCourseUpdate_PartialKeepsOmittedFields(t *testing.T) {
	f := newCourseFixture(t)

	input := validCreateInput(f)
	input.Tags = []string{"go", "web"}
	created, err := f.svc.Create(context.Background(), input)
	require.NoError(t, err)

	uploadsBefore := f.assets.UploadCalls
	deletesBefore := f.assets.DeleteCalls

	// Chỉ đổi giá — mọi trường vắng mặt phải giữ nguyên giá trị đã lưu
	saved, notCleaned, err := f.svc.Update(context.Background(), created.ID.Hex(),
		&catalogdto.CourseUpdateInput{Price: ptr(20.0)})
	require.NoError(t, err)
	assert.Empty(t, notCleaned)

	assert.Equal(t, 20.0, saved.Price)
	assert.Equal(t, created.Name, saved.Name)
	assert.Equal(t, created.Description, saved.Description)
	assert.Equal(t, created.EstimatedPrice, saved.EstimatedPrice)
	assert.Equal(t, []string{"go", "web"}, saved.Tags, "tags vắng mặt không được bị xóa")
	assert.Equal(t, created.Benefits, saved.Benefits)
	assert.Equal(t, created.Thumbnail, saved.Thumbnail)
	assert.Equal(t, created.TotalLessons, saved.TotalLessons)
	assert.Len(t, saved.CourseData, 2, "courseData vắng mặt giữ nguyên bài học")

	// Không đụng tới kho media khi không thay bài học lẫn thumbnail
	assert.Equal(t, uploadsBefore, f.assets.UploadCalls)
	assert.Equal(t, deletesBefore, f.assets.DeleteCalls)
}

func TestCourseUpdate_SuppliedEmptyLessonsRejected(t *testing.T) {
	f := newCourseFixture(t)
	course := createdCourse(t, f)

	_, _, err := f.svc.Update(context.Background(), course.ID.Hex(),
		lessonsOnly([]catalogdto.LessonInput{}))
	require.Error(t, err)
	assert.Equal(t, common.StatusBadRequest, statusOf(err))
}

// ==================== DELETE ====================

func TestCourseDelete_AssetFirst(t *testing.T) {
	f := newCourseFixture(t)
	course := createdCourse(t, f)

	notCleaned, err := f.svc.Delete(context.Background(), course.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, notCleaned)

	assert.Equal(t, 0, f.assets.Count(), "toàn bộ thumbnail + video phải bị xóa")
	assert.Equal(t, 0, f.courses.Len())
}

func TestCourseDelete_AssetFailureStillDeletesDocument(t *testing.T) {
	f := newCourseFixture(t)
	course := createdCourse(t, f)
	f.assets.FailDeletes = true

	notCleaned, err := f.svc.Delete(context.Background(), course.ID.Hex())
	require.NoError(t, err, "xóa asset thất bại không được chặn xóa document")

	// Thumbnail + 2 video đều không dọn được
	assert.Len(t, notCleaned, 3)
	assert.Equal(t, 0, f.courses.Len(), "document vẫn phải bị xóa")
	assert.Equal(t, 3, f.orphans.Len())
	for _, orphan := range f.orphans.All() {
		assert.Equal(t, "course_delete", orphan.Reason)
	}
}

func TestCourseDelete_NotFound(t *testing.T) {
	f := newCourseFixture(t)

	_, err := f.svc.Delete(context.Background(), primitive.NewObjectID().Hex())
	require.Error(t, err)
	assert.Equal(t, common.StatusNotFound, statusOf(err))
	assert.Equal(t, 0, f.assets.DeleteCalls, "không có gì để xóa trên kho media")
}

// ==================== READS ====================

func TestCourseGetByID_SortsLessonsDefensively(t *testing.T) {
	f := newCourseFixture(t)

	// Ghi thẳng document với bài học sai thứ tự (giả lập dữ liệu cũ)
	course, err := f.courses.InsertOne(context.Background(), catalogmodels.Course{
		Name:       "Dữ liệu cũ",
		CategoryID: f.categoryID,
		CourseData: []catalogmodels.Lesson{
			{Title: "C", Order: 3},
			{Title: "A", Order: 1},
			{Title: "B", Order: 2},
		},
	})
	require.NoError(t, err)

	got, err := f.svc.GetByID(context.Background(), course.ID.Hex())
	require.NoError(t, err)

	assert.Equal(t, "A", got.CourseData[0].Title)
	assert.Equal(t, "B", got.CourseData[1].Title)
	assert.Equal(t, "C", got.CourseData[2].Title)
	assert.Equal(t, "Lập trình Web", got.CategoryName)
}

func TestCourseListAll_PopulatesCategoryNames(t *testing.T) {
	f := newCourseFixture(t)
	createdCourse(t, f)

	courses, err := f.svc.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Lập trình Web", courses[0].CategoryName)
}

// ==================== UPLOAD PAYLOAD VALIDATION ====================

func TestCourseCreate_PayloadTooLarge(t *testing.T) {
	f := newCourseFixture(t)
	// Giới hạn 4 byte: payload "aGVsbG8=" (decode ~6 byte) vượt quá
	f.svc.maxUploadBytes = 4

	_, err := f.svc.Create(context.Background(), validCreateInput(f))
	require.Error(t, err)
	assert.Equal(t, common.StatusBadRequest, statusOf(err))
	assert.Equal(t, 0, f.assets.UploadCalls)
}

// ==================== MODEL-LEVEL HELPERS ====================

func TestStaleVideoIDs(t *testing.T) {
	old := []catalogmodels.Lesson{
		{Video: catalogmodels.LessonVideo{PublicID: "video/a"}},
		{Video: catalogmodels.LessonVideo{PublicID: "video/b"}},
		{Video: catalogmodels.LessonVideo{PublicID: ""}},
	}
	next := []catalogmodels.Lesson{
		{Video: catalogmodels.LessonVideo{PublicID: "video/b"}},
		{Video: catalogmodels.LessonVideo{PublicID: "video/c"}},
	}

	assert.Equal(t, []string{"video/a"}, staleVideoIDs(old, next))
	assert.Nil(t, staleVideoIDs(nil, next))
}
