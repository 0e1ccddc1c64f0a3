// Package worker - Test vòng reconcile orphan assets (không cần ticker).
package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogmodels "academy/internal/api/catalog/models"
	basefake "academy/internal/api/base/service/fake"
	"academy/internal/assetstore"
	assetfake "academy/internal/assetstore/fake"
)

func newWorkerFixture(t *testing.T) (*AssetReconcileWorker, *basefake.Store[catalogmodels.OrphanAsset], *assetfake.Provider) {
	t.Helper()
	orphans := basefake.NewStore[catalogmodels.OrphanAsset]()
	assets := assetfake.New()
	w := NewAssetReconcileWorker(orphans, assets, 5*time.Minute, 3)
	return w, orphans, assets
}

func seedOrphan(t *testing.T, orphans *basefake.Store[catalogmodels.OrphanAsset], publicID string, resourceType string, attempts int) catalogmodels.OrphanAsset {
	t.Helper()
	orphan, err := orphans.InsertOne(context.Background(), catalogmodels.OrphanAsset{
		PublicID:     publicID,
		ResourceType: resourceType,
		Reason:       "update_cleanup",
		Attempts:     attempts,
	})
	require.NoError(t, err)
	return orphan
}

func TestRunOnce_DeletesAssetsAndClearsRecords(t *testing.T) {
	w, orphans, assets := newWorkerFixture(t)

	videoID := assets.Seed(assetstore.ResourceVideo)
	imageID := assets.Seed(assetstore.ResourceImage)
	seedOrphan(t, orphans, videoID, assetstore.ResourceVideo, 0)
	seedOrphan(t, orphans, imageID, assetstore.ResourceImage, 1)

	w.runOnce(context.Background())

	assert.False(t, assets.Exists(videoID))
	assert.False(t, assets.Exists(imageID))
	assert.Equal(t, 0, orphans.Len(), "bản ghi đã reconcile phải bị xóa")
}

func TestRunOnce_NotFoundCountsAsReconciled(t *testing.T) {
	w, orphans, _ := newWorkerFixture(t)

	// Asset không còn trên kho media (đã bị xóa tay chẳng hạn)
	seedOrphan(t, orphans, "video/da-bien-mat", assetstore.ResourceVideo, 0)

	w.runOnce(context.Background())

	assert.Equal(t, 0, orphans.Len(), "not_found coi như đã sạch")
}

func TestRunOnce_FailureIncrementsAttempts(t *testing.T) {
	w, orphans, assets := newWorkerFixture(t)
	assets.FailDeletes = true

	videoID := assets.Seed(assetstore.ResourceVideo)
	seedOrphan(t, orphans, videoID, assetstore.ResourceVideo, 0)

	w.runOnce(context.Background())

	require.Equal(t, 1, orphans.Len(), "bản ghi thất bại phải được giữ lại retry")
	orphan := orphans.All()[0]
	assert.Equal(t, 1, orphan.Attempts)
	assert.NotEmpty(t, orphan.LastError)

	// Chạy lại vẫn thất bại: attempts tiếp tục tăng
	w.runOnce(context.Background())
	assert.Equal(t, 2, orphans.All()[0].Attempts)
}

func TestRunOnce_SkipsRecordsBeyondMaxTries(t *testing.T) {
	w, orphans, assets := newWorkerFixture(t)

	videoID := assets.Seed(assetstore.ResourceVideo)
	seedOrphan(t, orphans, videoID, assetstore.ResourceVideo, 3) // đã chạm maxTries

	w.runOnce(context.Background())

	assert.True(t, assets.Exists(videoID), "bản ghi vượt maxTries không được retry")
	assert.Equal(t, 0, assets.DeleteCalls)
	assert.Equal(t, 1, orphans.Len())
}

func TestNewAssetReconcileWorker_Defaults(t *testing.T) {
	orphans := basefake.NewStore[catalogmodels.OrphanAsset]()
	assets := assetfake.New()

	w := NewAssetReconcileWorker(orphans, assets, 0, 0)
	assert.Equal(t, 5*time.Minute, w.interval, "interval dưới 1 phút dùng mặc định")
	assert.Equal(t, 10, w.maxTries)
}
