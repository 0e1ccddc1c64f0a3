package worker

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"

	basesvc "academy/internal/api/base/service"
	catalogmodels "academy/internal/api/catalog/models"
	"academy/internal/assetstore"
	"academy/internal/logger"
)

// AssetReconcileWorker dọn dẹp catalog_orphan_assets: các asset xóa thất bại
// non-fatal được retry batch theo chu kỳ. Asset đã xóa (hoặc không còn tồn tại
// trên kho media) thì xóa bản ghi orphan; thất bại thì tăng attempts và ghi
// lastError; vượt maxTries thì bỏ cuộc (chỉ log).
type AssetReconcileWorker struct {
	orphans  basesvc.BaseServiceMongo[catalogmodels.OrphanAsset]
	assets   assetstore.Client
	interval time.Duration // Khoảng thời gian giữa các lần chạy
	batchSize int          // Số bản ghi tối đa mỗi lần
	maxTries int           // Số lần retry tối đa trước khi bỏ cuộc
}

// NewAssetReconcileWorker tạo mới AssetReconcileWorker với collaborator được inject.
func NewAssetReconcileWorker(
	orphans basesvc.BaseServiceMongo[catalogmodels.OrphanAsset],
	assets assetstore.Client,
	interval time.Duration,
	maxTries int,
) *AssetReconcileWorker {
	if interval < time.Minute {
		interval = 5 * time.Minute
	}
	if maxTries <= 0 {
		maxTries = 10
	}
	return &AssetReconcileWorker{
		orphans:   orphans,
		assets:    assets,
		interval:  interval,
		batchSize: 50,
		maxTries:  maxTries,
	}
}

// Start chạy worker trong vòng lặp: mỗi interval đọc batch orphan chưa vượt
// maxTries, retry xóa theo resource type, dọn bản ghi đã xử lý xong.
func (w *AssetReconcileWorker) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"interval":  w.interval.String(),
		"batchSize": w.batchSize,
		"maxTries":  w.maxTries,
	}).Info("🧹 [ASSET_RECONCILE] Starting Asset Reconcile Worker...")

	for {
		select {
		case <-ctx.Done():
			log.Info("🧹 [ASSET_RECONCILE] Asset Reconcile Worker stopped")
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.WithFields(map[string]interface{}{
							"panic": r,
						}).Error("🧹 [ASSET_RECONCILE] Panic khi dọn orphan assets, sẽ tiếp tục ở lần chạy tiếp theo")
					}
				}()
				w.runOnce(ctx)
			}()
		}
	}
}

// runOnce xử lý một batch orphan assets. Tách riêng để test được không cần ticker.
func (w *AssetReconcileWorker) runOnce(ctx context.Context) {
	log := logger.GetAppLogger()

	opts := mongoopts.Find().
		SetLimit(int64(w.batchSize)).
		SetSort(bson.D{{Key: "createdAt", Value: 1}})
	orphanList, err := w.orphans.Find(ctx, bson.M{"attempts": bson.M{"$lt": w.maxTries}}, opts)
	if err != nil {
		log.WithError(err).Error("🧹 [ASSET_RECONCILE] Lỗi lấy danh sách orphan assets")
		return
	}
	if len(orphanList) == 0 {
		return
	}

	// Gom theo resource type để batch-xóa
	byType := map[string][]catalogmodels.OrphanAsset{}
	for _, orphan := range orphanList {
		byType[orphan.ResourceType] = append(byType[orphan.ResourceType], orphan)
	}

	reconciled := 0
	for resourceType, orphans := range byType {
		publicIDs := make([]string, len(orphans))
		for i, orphan := range orphans {
			publicIDs[i] = orphan.PublicID
		}

		result, err := w.assets.DeleteFiles(ctx, publicIDs, resourceType)
		if err != nil {
			// Cả batch thất bại: tăng attempts, ghi lastError cho từng bản ghi
			for _, orphan := range orphans {
				w.markFailed(ctx, orphan, err.Error())
			}
			log.WithError(err).WithFields(map[string]interface{}{
				"resource_type": resourceType,
				"count":         len(orphans),
			}).Warn("🧹 [ASSET_RECONCILE] Batch xóa thất bại, sẽ thử lại lần sau")
			continue
		}

		// deleted lẫn not_found đều coi là đã reconcile xong
		done := map[string]bool{}
		for _, id := range result.Deleted {
			done[id] = true
		}
		for _, id := range result.NotFound {
			done[id] = true
		}

		for _, orphan := range orphans {
			if !done[orphan.PublicID] {
				w.markFailed(ctx, orphan, "kho media không xác nhận xóa")
				continue
			}
			if err := w.orphans.DeleteById(ctx, orphan.ID); err != nil {
				log.WithError(err).WithFields(map[string]interface{}{
					"public_id": orphan.PublicID,
				}).Warn("🧹 [ASSET_RECONCILE] Không xóa được bản ghi orphan đã reconcile")
				continue
			}
			reconciled++
		}
	}

	if reconciled > 0 {
		log.WithFields(map[string]interface{}{
			"reconciled": reconciled,
			"total":      len(orphanList),
		}).Info("🧹 [ASSET_RECONCILE] Đã dọn orphan assets")
	}
}

// markFailed tăng attempts và ghi lastError. Bản ghi chạm maxTries sẽ không
// được retry nữa — log để vận hành xử lý tay.
func (w *AssetReconcileWorker) markFailed(ctx context.Context, orphan catalogmodels.OrphanAsset, lastError string) {
	log := logger.GetAppLogger()

	if _, err := w.orphans.UpdateById(ctx, orphan.ID, &basesvc.UpdateData{
		Set: map[string]interface{}{"lastError": lastError},
		Inc: map[string]interface{}{"attempts": 1},
	}); err != nil {
		log.WithError(err).WithFields(map[string]interface{}{
			"public_id": orphan.PublicID,
		}).Warn("🧹 [ASSET_RECONCILE] Không cập nhật được bản ghi orphan")
		return
	}

	if orphan.Attempts+1 >= w.maxTries {
		log.WithFields(map[string]interface{}{
			"public_id":     orphan.PublicID,
			"resource_type": orphan.ResourceType,
			"attempts":      orphan.Attempts + 1,
			"last_error":    lastError,
		}).Error("🧹 [ASSET_RECONCILE] Orphan asset vượt số lần retry tối đa, bỏ cuộc")
	}
}
