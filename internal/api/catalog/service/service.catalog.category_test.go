// Package catalogsvc - Test ràng buộc FK khi xóa danh mục.
package catalogsvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	catalogmodels "academy/internal/api/catalog/models"
	basefake "academy/internal/api/base/service/fake"
	"academy/internal/common"
)

func newCategoryFixture(t *testing.T) (*CategoryService, *basefake.Store[catalogmodels.Category], *basefake.Store[catalogmodels.Course]) {
	t.Helper()
	categories := basefake.NewStore[catalogmodels.Category]()
	courses := basefake.NewStore[catalogmodels.Course]()
	return NewCategoryService(categories, courses), categories, courses
}

func TestCategoryDelete_OK(t *testing.T) {
	svc, categories, _ := newCategoryFixture(t)

	category, err := categories.InsertOne(context.Background(), catalogmodels.Category{Name: "DevOps"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), category.ID.Hex()))
	assert.Equal(t, 0, categories.Len())
}

func TestCategoryDelete_RefusedWhileCoursesReference(t *testing.T) {
	svc, categories, courses := newCategoryFixture(t)

	category, err := categories.InsertOne(context.Background(), catalogmodels.Category{Name: "DevOps"})
	require.NoError(t, err)
	_, err = courses.InsertOne(context.Background(), catalogmodels.Course{
		Name: "Docker căn bản", CategoryID: category.ID,
	})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), category.ID.Hex())
	require.Error(t, err)
	assert.Equal(t, common.StatusConflict, statusOf(err))
	assert.Equal(t, 1, categories.Len(), "danh mục còn khóa học tham chiếu không được xóa")
}

func TestCategoryDelete_NotFound(t *testing.T) {
	svc, _, _ := newCategoryFixture(t)

	err := svc.Delete(context.Background(), primitive.NewObjectID().Hex())
	require.Error(t, err)
	assert.Equal(t, common.StatusNotFound, statusOf(err))
}

func TestCategoryDelete_BadID(t *testing.T) {
	svc, _, _ := newCategoryFixture(t)

	err := svc.Delete(context.Background(), "abc")
	require.Error(t, err)
	assert.Equal(t, common.StatusBadRequest, statusOf(err))
}
