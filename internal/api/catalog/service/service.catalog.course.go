// Package catalogsvc chứa business logic cho domain Catalog.
// File: service.catalog.course.go - orchestration vòng đời khóa học và tính
// nhất quán với kho media: upload fail-fast trước khi ghi document, dọn dẹp
// asset best-effort sau khi ghi, asset xóa thất bại được ghi lại chờ worker.
package catalogsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	catalogdto "academy/internal/api/catalog/dto"
	catalogmodels "academy/internal/api/catalog/models"
	basesvc "academy/internal/api/base/service"
	"academy/internal/assetstore"
	"academy/internal/cache"
	"academy/internal/common"
	"academy/internal/logger"
)

// Ngữ cảnh phát sinh orphan asset
const (
	orphanReasonUploadRollback = "upload_rollback" // Rollback các asset đã upload khi request thất bại giữa chừng
	orphanReasonUpdateCleanup  = "update_cleanup"  // Dọn asset không còn được tham chiếu sau update
	orphanReasonCourseDelete   = "course_delete"   // Dọn asset khi xóa khóa học
)

// uploadedAsset theo dõi asset đã upload trong một request (phục vụ rollback)
type uploadedAsset struct {
	publicID     string
	resourceType string
}

// CourseService xử lý orchestration vòng đời khóa học.
// Mọi collaborator đều là interface và được inject qua constructor.
type CourseService struct {
	courses    basesvc.BaseServiceMongo[catalogmodels.Course]
	categories basesvc.BaseServiceMongo[catalogmodels.Category]
	orphans    basesvc.BaseServiceMongo[catalogmodels.OrphanAsset]
	assets     assetstore.Client
	cache      *cache.Client

	maxUploadBytes int64 // Kích thước tối đa của payload base64 sau decode
}

// NewCourseService khởi tạo CourseService với các collaborator được inject.
func NewCourseService(
	courses basesvc.BaseServiceMongo[catalogmodels.Course],
	categories basesvc.BaseServiceMongo[catalogmodels.Category],
	orphans basesvc.BaseServiceMongo[catalogmodels.OrphanAsset],
	assets assetstore.Client,
	cacheClient *cache.Client,
	maxUploadBytes int64,
) *CourseService {
	return &CourseService{
		courses:        courses,
		categories:     categories,
		orphans:        orphans,
		assets:         assets,
		cache:          cacheClient,
		maxUploadBytes: maxUploadBytes,
	}
}

// ==================== VALIDATION ====================

// validateLessonPayloads kiểm tra danh sách bài học không rỗng và mỗi bài học
// có ĐÚNG MỘT trong hai: video (tham chiếu asset đã tồn tại) hoặc videoBase64
// (payload upload). Cả hai hoặc không có gì đều là lỗi Validation cứng — không
// có fallback. Quiz được kiểm tra chéo: answerIndex phải trỏ vào options.
func (s *CourseService) validateLessonPayloads(lessons []catalogdto.LessonInput) error {
	if len(lessons) == 0 {
		return common.NewError(common.ErrCodeValidationInput,
			"courseData phải có ít nhất một bài học", common.StatusBadRequest, nil)
	}
	for i, lesson := range lessons {
		hasRef := lesson.Video != nil
		hasPayload := lesson.VideoBase64 != ""

		if hasRef && hasPayload {
			return common.NewError(common.ErrCodeValidationInput,
				fmt.Sprintf("Bài học %d (%s): chỉ được gửi một trong hai 'video' hoặc 'videoBase64'", i+1, lesson.Title),
				common.StatusBadRequest, nil)
		}
		if !hasRef && !hasPayload {
			return common.NewError(common.ErrCodeValidationInput,
				fmt.Sprintf("Bài học %d (%s): thiếu video — phải gửi 'video' (asset đã tồn tại) hoặc 'videoBase64' (payload upload)", i+1, lesson.Title),
				common.StatusBadRequest, nil)
		}
		if hasPayload {
			if err := assetstore.ValidateDataURI(lesson.VideoBase64, s.maxUploadBytes); err != nil {
				return err
			}
		}

		for j, q := range lesson.Quiz {
			if q.AnswerIndex < 0 || q.AnswerIndex >= len(q.Options) {
				return common.NewError(common.ErrCodeValidationInput,
					fmt.Sprintf("Bài học %d (%s), câu hỏi %d: answerIndex %d ngoài phạm vi options (%d lựa chọn)",
						i+1, lesson.Title, j+1, q.AnswerIndex, len(q.Options)),
					common.StatusBadRequest, nil)
			}
		}
		if lesson.PassingScore != nil && (*lesson.PassingScore < 0 || *lesson.PassingScore > 100) {
			return common.NewError(common.ErrCodeValidationInput,
				fmt.Sprintf("Bài học %d (%s): passingScore phải trong khoảng 0-100", i+1, lesson.Title),
				common.StatusBadRequest, nil)
		}
	}
	return nil
}

// normalizeTags trim từng tag, bỏ tag rỗng và khử trùng lặp, giữ nguyên thứ
// tự xuất hiện đầu tiên.
func normalizeTags(tags []string) []string {
	seen := map[string]bool{}
	var normalized []string
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		normalized = append(normalized, tag)
	}
	return normalized
}

// resolveCategory tìm danh mục theo id hex. ID sai định dạng → Validation,
// không tồn tại → NotFound.
func (s *CourseService) resolveCategory(ctx context.Context, idHex string) (*catalogmodels.Category, error) {
	categoryID, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, common.NewError(common.ErrCodeValidationFormat,
			fmt.Sprintf("categoryId '%s' không đúng định dạng ObjectID", idHex), common.StatusBadRequest, nil)
	}

	category, err := s.categories.FindOneById(ctx, categoryID)
	if err != nil {
		return nil, common.NewError(common.ErrCodeBusinessOperation,
			fmt.Sprintf("Danh mục '%s' không tồn tại", idHex), common.StatusNotFound, err)
	}
	return &category, nil
}

// checkNameUnique kiểm tra tên khóa học chưa bị dùng. excludeID khác zero khi
// update (bỏ qua chính document đang sửa).
func (s *CourseService) checkNameUnique(ctx context.Context, name string, excludeID primitive.ObjectID) error {
	filter := bson.M{"name": name}
	if !excludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeID}
	}

	exists, err := s.courses.DocumentExists(ctx, filter)
	if err != nil {
		return err
	}
	if exists {
		return common.NewError(common.ErrCodeBusinessState,
			fmt.Sprintf("Tên khóa học '%s' đã tồn tại", name), common.StatusConflict, nil)
	}
	return nil
}

// ==================== UPLOAD (FAIL-FAST) ====================

// uploadLessonVideos build danh sách bài học từ input, upload video cho các bài
// gửi payload base64. FAIL-FAST: lỗi upload đầu tiên dừng toàn bộ, rollback các
// asset đã upload trong request này (kể cả extra — thumbnail mới chẳng hạn) và
// trả lỗi ExternalService trước khi có bất kỳ ghi document nào.
func (s *CourseService) uploadLessonVideos(ctx context.Context, inputs []catalogdto.LessonInput, extra []uploadedAsset) ([]catalogmodels.Lesson, []uploadedAsset, error) {
	uploaded := append([]uploadedAsset{}, extra...)
	lessons := make([]catalogmodels.Lesson, 0, len(inputs))

	for i, input := range inputs {
		lesson := catalogmodels.Lesson{
			Title:        input.Title,
			Description:  input.Description,
			VideoSection: input.VideoSection,
			Suggestion:   input.Suggestion,
			Order:        input.Order,
			FreePreview:  input.FreePreview,
			IsLocked:     true, // Mặc định khóa, chỉ mở khi client gửi tường minh
		}
		if input.IsLocked != nil {
			lesson.IsLocked = *input.IsLocked
		}
		for _, link := range input.Links {
			lesson.Links = append(lesson.Links, catalogmodels.LessonLink{Title: link.Title, URL: link.URL})
		}
		for _, q := range input.Quiz {
			lesson.Quiz = append(lesson.Quiz, catalogmodels.QuizQuestion{
				Question: q.Question, Options: q.Options, AnswerIndex: q.AnswerIndex,
			})
		}
		if len(lesson.Quiz) > 0 {
			lesson.PassingScore = catalogmodels.DefaultQuizPassingScore
			if input.PassingScore != nil {
				lesson.PassingScore = *input.PassingScore
			}
		}

		if input.Video != nil {
			// Tham chiếu asset đã tồn tại, không upload lại
			lesson.Video = catalogmodels.LessonVideo{
				PublicID: input.Video.PublicID,
				URL:      input.Video.URL,
				Duration: input.Video.Duration,
				Format:   input.Video.Format,
			}
		} else {
			result, err := s.assets.UploadVideo(ctx, input.VideoBase64)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"lesson_index": i,
					"lesson_title": input.Title,
					"error":        err,
				}).Error("Upload video bài học thất bại, hủy toàn bộ request")
				s.rollbackUploads(ctx, uploaded)
				return nil, nil, err
			}
			uploaded = append(uploaded, uploadedAsset{publicID: result.PublicID, resourceType: assetstore.ResourceVideo})
			lesson.Video = catalogmodels.LessonVideo{
				PublicID: result.PublicID,
				URL:      result.URL,
				Duration: result.Duration,
				Format:   result.Format,
			}
		}

		lessons = append(lessons, lesson)
	}

	return lessons, uploaded, nil
}

// rollbackUploads xóa best-effort các asset đã upload trong request thất bại.
// Xóa thất bại được ghi vào catalog_orphan_assets chờ worker dọn lại.
func (s *CourseService) rollbackUploads(ctx context.Context, uploaded []uploadedAsset) {
	byType := map[string][]string{}
	for _, asset := range uploaded {
		byType[asset.resourceType] = append(byType[asset.resourceType], asset.publicID)
	}
	for resourceType, ids := range byType {
		s.deleteAssetsBestEffort(ctx, ids, resourceType, primitive.NilObjectID, orphanReasonUploadRollback)
	}
}

// ==================== CLEANUP (BEST-EFFORT) ====================

// deleteAssetsBestEffort batch-xóa asset trên kho media. KHÔNG BAO GIỜ trả lỗi:
// public ID không xóa được sẽ được ghi vào catalog_orphan_assets và trả về trong
// danh sách notCleaned để báo cáo cho client.
func (s *CourseService) deleteAssetsBestEffort(ctx context.Context, publicIDs []string, resourceType string, courseID primitive.ObjectID, reason string) (notCleaned []string) {
	if len(publicIDs) == 0 {
		return nil
	}

	result, err := s.assets.DeleteFiles(ctx, publicIDs, resourceType)
	if err != nil {
		// Cả batch thất bại: ghi orphan cho toàn bộ
		logrus.WithFields(logrus.Fields{
			"resource_type": resourceType,
			"public_ids":    publicIDs,
			"reason":        reason,
			"error":         err,
		}).Warn("Batch xóa asset thất bại, ghi orphan chờ worker dọn lại")
		for _, id := range publicIDs {
			s.recordOrphan(ctx, id, resourceType, courseID, reason, err.Error())
		}
		return publicIDs
	}

	// not_found coi như đã sạch (asset không còn trên kho media)
	logger.LogAssetCleanup(courseID.Hex(), result.Deleted, nil)
	return nil
}

// recordOrphan upsert một asset xóa thất bại vào catalog_orphan_assets.
// Lỗi ghi orphan chỉ log — không được phép làm hỏng request.
func (s *CourseService) recordOrphan(ctx context.Context, publicID string, resourceType string, courseID primitive.ObjectID, reason string, lastError string) {
	orphan := catalogmodels.OrphanAsset{
		PublicID:     publicID,
		ResourceType: resourceType,
		CourseID:     courseID,
		Reason:       reason,
		LastError:    lastError,
	}
	if _, err := s.orphans.Upsert(ctx, bson.M{"publicId": publicID}, orphan); err != nil {
		logrus.WithFields(logrus.Fields{
			"public_id": publicID,
			"error":     err,
		}).Error("Không ghi được orphan asset")
	}
}

// ==================== CREATE ====================

// Create tạo khóa học mới: validate → resolve danh mục → check tên trùng →
// upload thumbnail → upload video bài học (fail-fast) → sort + tính trường dẫn
// xuất → insert. Lỗi upload bất kỳ hủy toàn bộ, không ghi document.
func (s *CourseService) Create(ctx context.Context, input *catalogdto.CourseCreateInput) (*catalogmodels.Course, error) {
	if err := s.validateLessonPayloads(input.CourseData); err != nil {
		return nil, err
	}
	if err := assetstore.ValidateDataURI(input.Thumbnail, s.maxUploadBytes); err != nil {
		return nil, err
	}

	category, err := s.resolveCategory(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}

	if err := s.checkNameUnique(ctx, input.Name, primitive.NilObjectID); err != nil {
		return nil, err
	}

	// Upload thumbnail trước — thất bại là hết, chưa có gì phải rollback
	thumbResult, err := s.assets.UploadImage(ctx, input.Thumbnail)
	if err != nil {
		return nil, err
	}
	uploaded := []uploadedAsset{{publicID: thumbResult.PublicID, resourceType: assetstore.ResourceImage}}

	lessons, uploaded, err := s.uploadLessonVideos(ctx, input.CourseData, uploaded)
	if err != nil {
		return nil, err
	}

	course := catalogmodels.Course{
		Name:           input.Name,
		Description:    input.Description,
		CategoryID:     category.ID,
		Level:          input.Level,
		Language:       input.Language,
		Price:          input.Price,
		EstimatedPrice: input.EstimatedPrice,
		Tags:           normalizeTags(input.Tags),
		Benefits:       input.Benefits,
		Prerequisites:  input.Prerequisites,
		Thumbnail:      catalogmodels.Thumbnail{PublicID: thumbResult.PublicID, URL: thumbResult.URL},
		CourseData:     lessons,
	}
	course.RecomputeDerived()

	created, err := s.courses.InsertOne(ctx, course)
	if err != nil {
		// Document không ghi được: các asset vừa upload thành mồ côi, rollback
		s.rollbackUploads(ctx, uploaded)
		return nil, err
	}

	created.CategoryName = category.Name
	return &created, nil
}

// ==================== UPDATE ====================

// Update cập nhật khóa học theo kiểu partial: chỉ trường client gửi mới bị ghi
// đè, trường vắng mặt giữ nguyên. CourseData khi được gửi thay thế TOÀN BỘ mảng
// bài học hiện có. Sau khi ghi document thành công, các asset không còn được
// tham chiếu (thumbnail cũ nếu đã thay, video cũ vắng mặt trong mảng mới) được
// batch-xóa best-effort; thất bại trả về trong assetsNotCleanedUp, không làm
// request fail. Trường dẫn xuất được tính lại trên MỌI lần ghi.
func (s *CourseService) Update(ctx context.Context, idHex string, input *catalogdto.CourseUpdateInput) (*catalogmodels.Course, []string, error) {
	courseID, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, nil, common.NewError(common.ErrCodeValidationFormat,
			fmt.Sprintf("ID '%s' không đúng định dạng ObjectID", idHex), common.StatusBadRequest, nil)
	}

	existing, err := s.courses.FindOneById(ctx, courseID)
	if err != nil {
		return nil, nil, err
	}

	replaceLessons := input.CourseData != nil
	if replaceLessons {
		if err := s.validateLessonPayloads(input.CourseData); err != nil {
			return nil, nil, err
		}
	}
	if input.Thumbnail != "" {
		if err := assetstore.ValidateDataURI(input.Thumbnail, s.maxUploadBytes); err != nil {
			return nil, nil, err
		}
	}

	// Danh mục chỉ resolve lại khi client đổi; luôn cần tên để populate response
	var category *catalogmodels.Category
	if input.CategoryID != nil {
		category, err = s.resolveCategory(ctx, *input.CategoryID)
		if err != nil {
			return nil, nil, err
		}
	} else if current, err := s.categories.FindOneById(ctx, existing.CategoryID); err == nil {
		category = &current
	}

	if input.Name != nil && *input.Name != existing.Name {
		if err := s.checkNameUnique(ctx, *input.Name, courseID); err != nil {
			return nil, nil, err
		}
	}

	// Upload thumbnail mới nếu client gửi, giữ cái cũ nếu không
	thumbnail := existing.Thumbnail
	var uploaded []uploadedAsset
	if input.Thumbnail != "" {
		thumbResult, err := s.assets.UploadImage(ctx, input.Thumbnail)
		if err != nil {
			return nil, nil, err
		}
		thumbnail = catalogmodels.Thumbnail{PublicID: thumbResult.PublicID, URL: thumbResult.URL}
		uploaded = append(uploaded, uploadedAsset{publicID: thumbResult.PublicID, resourceType: assetstore.ResourceImage})
	}

	lessons := existing.CourseData
	if replaceLessons {
		lessons, uploaded, err = s.uploadLessonVideos(ctx, input.CourseData, uploaded)
		if err != nil {
			return nil, nil, err
		}
	}

	next := existing
	next.Thumbnail = thumbnail
	next.CourseData = lessons
	set := map[string]interface{}{}
	if input.Name != nil {
		next.Name = *input.Name
		set["name"] = next.Name
	}
	if input.Description != nil {
		next.Description = *input.Description
		set["description"] = next.Description
	}
	if category != nil && input.CategoryID != nil {
		next.CategoryID = category.ID
		set["categoryId"] = next.CategoryID
	}
	if input.Level != nil {
		next.Level = *input.Level
		set["level"] = next.Level
	}
	if input.Language != nil {
		next.Language = *input.Language
		set["language"] = next.Language
	}
	if input.Price != nil {
		next.Price = *input.Price
		set["price"] = next.Price
	}
	if input.EstimatedPrice != nil {
		next.EstimatedPrice = *input.EstimatedPrice
		set["estimatedPrice"] = next.EstimatedPrice
	}
	if input.Tags != nil {
		next.Tags = normalizeTags(input.Tags)
		set["tags"] = next.Tags
	}
	if input.Benefits != nil {
		next.Benefits = input.Benefits
		set["benefits"] = next.Benefits
	}
	if input.Prerequisites != nil {
		next.Prerequisites = input.Prerequisites
		set["prerequisites"] = next.Prerequisites
	}
	if input.Thumbnail != "" {
		set["thumbnail"] = next.Thumbnail
	}

	// Trường dẫn xuất tính lại trên mọi lần ghi, kể cả khi bài học giữ nguyên
	next.RecomputeDerived()
	set["totalLessons"] = next.TotalLessons
	set["totalDuration"] = next.TotalDuration
	if replaceLessons {
		set["courseData"] = next.CourseData
	}

	saved, err := s.courses.UpdateById(ctx, courseID, &basesvc.UpdateData{Set: set})
	if err != nil {
		// Document không ghi được: rollback các asset mới upload
		s.rollbackUploads(ctx, uploaded)
		return nil, nil, err
	}

	// Dọn asset không còn được tham chiếu — sau khi ghi thành công, best-effort
	var notCleaned []string
	if input.Thumbnail != "" && existing.Thumbnail.PublicID != "" && existing.Thumbnail.PublicID != thumbnail.PublicID {
		notCleaned = append(notCleaned, s.deleteAssetsBestEffort(ctx,
			[]string{existing.Thumbnail.PublicID}, assetstore.ResourceImage, courseID, orphanReasonUpdateCleanup)...)
	}
	if replaceLessons {
		if stale := staleVideoIDs(existing.CourseData, next.CourseData); len(stale) > 0 {
			notCleaned = append(notCleaned, s.deleteAssetsBestEffort(ctx,
				stale, assetstore.ResourceVideo, courseID, orphanReasonUpdateCleanup)...)
		}
	}

	s.cache.Delete(ctx, cache.CourseKey(idHex))

	if category != nil {
		saved.CategoryName = category.Name
	}
	return &saved, notCleaned, nil
}

// staleVideoIDs trả về public ID của video cũ không còn xuất hiện trong danh
// sách bài học mới.
func staleVideoIDs(old []catalogmodels.Lesson, next []catalogmodels.Lesson) []string {
	keep := map[string]bool{}
	for _, lesson := range next {
		if lesson.Video.PublicID != "" {
			keep[lesson.Video.PublicID] = true
		}
	}

	var stale []string
	for _, lesson := range old {
		if lesson.Video.PublicID != "" && !keep[lesson.Video.PublicID] {
			stale = append(stale, lesson.Video.PublicID)
		}
	}
	return stale
}

// ==================== DELETE ====================

// Delete xóa khóa học theo thứ tự ASSET TRƯỚC: batch-xóa thumbnail + video
// bài học (thất bại non-fatal, ghi orphan + báo cáo), rồi mới xóa document.
func (s *CourseService) Delete(ctx context.Context, idHex string) ([]string, error) {
	courseID, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, common.NewError(common.ErrCodeValidationFormat,
			fmt.Sprintf("ID '%s' không đúng định dạng ObjectID", idHex), common.StatusBadRequest, nil)
	}

	course, err := s.courses.FindOneById(ctx, courseID)
	if err != nil {
		return nil, err
	}

	// Pass xóa asset chạy trước, kết quả ra sao cũng xóa tiếp document
	imageIDs, videoIDs := course.AssetPublicIDs()
	var notCleaned []string
	notCleaned = append(notCleaned, s.deleteAssetsBestEffort(ctx, imageIDs, assetstore.ResourceImage, courseID, orphanReasonCourseDelete)...)
	notCleaned = append(notCleaned, s.deleteAssetsBestEffort(ctx, videoIDs, assetstore.ResourceVideo, courseID, orphanReasonCourseDelete)...)

	if err := s.courses.DeleteById(ctx, courseID); err != nil {
		return notCleaned, err
	}

	s.cache.Delete(ctx, cache.CourseKey(idHex))
	return notCleaned, nil
}

// ==================== READS ====================

// GetByID đọc một khóa học, read-through cache Redis (key course:<id>).
// Bài học luôn trả về theo thứ tự chuẩn, tên danh mục được populate.
func (s *CourseService) GetByID(ctx context.Context, idHex string) (*catalogmodels.Course, error) {
	courseID, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, common.NewError(common.ErrCodeValidationFormat,
			fmt.Sprintf("ID '%s' không đúng định dạng ObjectID", idHex), common.StatusBadRequest, nil)
	}

	var cached catalogmodels.Course
	if err := s.cache.Get(ctx, cache.CourseKey(idHex), &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		logrus.WithFields(logrus.Fields{"course_id": idHex, "error": err}).Warn("Lỗi đọc cache course")
	}

	course, err := s.courses.FindOneById(ctx, courseID)
	if err != nil {
		return nil, err
	}

	// Sort phòng thủ: document cũ có thể được ghi trước khi có thứ tự chuẩn
	catalogmodels.SortLessons(course.CourseData)

	if category, err := s.categories.FindOneById(ctx, course.CategoryID); err == nil {
		course.CategoryName = category.Name
	}

	s.cache.Set(ctx, cache.CourseKey(idHex), course)
	return &course, nil
}

// ListAll đọc tất cả khóa học với tên danh mục populate và bài học theo thứ
// tự chuẩn.
func (s *CourseService) ListAll(ctx context.Context) ([]catalogmodels.Course, error) {
	courses, err := s.courses.Find(ctx, bson.M{}, nil)
	if err != nil {
		return nil, err
	}

	categories, err := s.categories.Find(ctx, bson.M{}, nil)
	if err != nil {
		return nil, err
	}
	categoryNames := map[primitive.ObjectID]string{}
	for _, category := range categories {
		categoryNames[category.ID] = category.Name
	}

	for i := range courses {
		catalogmodels.SortLessons(courses[i].CourseData)
		courses[i].CategoryName = categoryNames[courses[i].CategoryID]
	}
	return courses, nil
}
