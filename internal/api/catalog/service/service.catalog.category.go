// Package catalogsvc - CategoryService (xem service.catalog.course.go cho package doc).
package catalogsvc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	catalogmodels "academy/internal/api/catalog/models"
	basesvc "academy/internal/api/base/service"
	"academy/internal/common"
)

// CategoryService xử lý business logic cho danh mục khóa học.
type CategoryService struct {
	categories basesvc.BaseServiceMongo[catalogmodels.Category]
	courses    basesvc.BaseServiceMongo[catalogmodels.Course]
}

// NewCategoryService khởi tạo CategoryService.
func NewCategoryService(
	categories basesvc.BaseServiceMongo[catalogmodels.Category],
	courses basesvc.BaseServiceMongo[catalogmodels.Course],
) *CategoryService {
	return &CategoryService{
		categories: categories,
		courses:    courses,
	}
}

// Delete xóa danh mục theo id. Danh mục vẫn còn khóa học tham chiếu thì từ
// chối (Conflict) — không bao giờ để lại FK treo.
func (s *CategoryService) Delete(ctx context.Context, idHex string) error {
	categoryID, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return common.NewError(common.ErrCodeValidationFormat,
			fmt.Sprintf("ID '%s' không đúng định dạng ObjectID", idHex), common.StatusBadRequest, nil)
	}

	// Đảm bảo danh mục tồn tại trước khi kiểm tra tham chiếu
	if _, err := s.categories.FindOneById(ctx, categoryID); err != nil {
		return err
	}

	count, err := s.courses.CountDocuments(ctx, bson.M{"categoryId": categoryID})
	if err != nil {
		return err
	}
	if count > 0 {
		return common.NewError(common.ErrCodeBusinessState,
			fmt.Sprintf("Không thể xóa: còn %d khóa học thuộc danh mục này", count),
			common.StatusConflict, nil)
	}

	return s.categories.DeleteById(ctx, categoryID)
}
