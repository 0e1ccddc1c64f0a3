// Package cataloghdl - OrphanAssetHandler (xem handler.catalog.course.go cho package doc).
package cataloghdl

import (
	basehdl "academy/internal/api/base/handler"
	basesvc "academy/internal/api/base/service"
	catalogmodels "academy/internal/api/catalog/models"
)

// OrphanAssetHandler cung cấp endpoint đọc catalog_orphan_assets cho admin
// (theo dõi asset chờ worker dọn lại). Chỉ expose qua generic CRUD read-only.
type OrphanAssetHandler struct {
	*basehdl.BaseHandler[catalogmodels.OrphanAsset, catalogmodels.OrphanAsset, catalogmodels.OrphanAsset]
}

// NewOrphanAssetHandler khởi tạo OrphanAssetHandler.
func NewOrphanAssetHandler(orphans basesvc.BaseServiceMongo[catalogmodels.OrphanAsset]) *OrphanAssetHandler {
	return &OrphanAssetHandler{
		BaseHandler: basehdl.NewBaseHandler[catalogmodels.OrphanAsset, catalogmodels.OrphanAsset, catalogmodels.OrphanAsset](orphans),
	}
}
