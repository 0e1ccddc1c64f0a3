// Package fake cung cấp một implementation in-memory của assetstore.Client dùng cho test.
// Provider ghi nhận mọi lời gọi và cho phép bơm lỗi để kiểm tra các nhánh thất bại.
package fake

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"academy/internal/assetstore"
	"academy/internal/common"
)

// storedAsset là một tài nguyên đang "tồn tại" trên kho media giả
type storedAsset struct {
	resourceType string
	url          string
}

// Provider là kho media giả in-memory, thread-safe.
type Provider struct {
	mu     sync.Mutex
	assets map[string]storedAsset

	// Đếm số lời gọi theo loại thao tác
	UploadCalls int
	DeleteCalls int

	// VideoDuration là duration trả về cho mọi video upload (mặc định 120s)
	VideoDuration float64

	// Bơm lỗi: upload/delete thất bại khi các flag này bật
	FailUploads bool
	FailDeletes bool

	// FailUploadAfter > 0: upload thứ N+1 trở đi thất bại (fail-fast giữa chừng)
	FailUploadAfter int
}

// New tạo một Provider rỗng
func New() *Provider {
	return &Provider{
		assets:        make(map[string]storedAsset),
		VideoDuration: 120,
	}
}

// Seed thêm sẵn một tài nguyên vào kho giả, trả về public ID
func (p *Provider) Seed(resourceType string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	publicID := resourceType + "/" + uuid.NewString()
	p.assets[publicID] = storedAsset{
		resourceType: resourceType,
		url:          "https://fake.assets.local/" + publicID,
	}
	return publicID
}

// Exists kiểm tra public ID còn tồn tại trên kho giả không
func (p *Provider) Exists(publicID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.assets[publicID]
	return ok
}

// Count trả về số tài nguyên đang tồn tại
func (p *Provider) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.assets)
}

func (p *Provider) upload(resourceType string) (*assetstore.UploadResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.UploadCalls++
	if p.FailUploads || (p.FailUploadAfter > 0 && p.UploadCalls > p.FailUploadAfter) {
		return nil, common.NewError(common.ErrCodeExternalAssetStore,
			common.MsgAssetUploadFailed, common.StatusBadGateway, "fake upload failure")
	}

	publicID := resourceType + "/" + uuid.NewString()
	asset := storedAsset{
		resourceType: resourceType,
		url:          "https://fake.assets.local/" + publicID,
	}
	p.assets[publicID] = asset

	result := &assetstore.UploadResult{
		PublicID: publicID,
		URL:      asset.url,
	}
	switch resourceType {
	case assetstore.ResourceImage:
		result.Format = "jpg"
		result.Width = 800
		result.Height = 450
	case assetstore.ResourceVideo:
		result.Format = "mp4"
		result.Duration = p.VideoDuration
	}

	return result, nil
}

// UploadImage giả lập upload ảnh
func (p *Provider) UploadImage(ctx context.Context, dataURI string) (*assetstore.UploadResult, error) {
	return p.upload(assetstore.ResourceImage)
}

// UploadVideo giả lập upload video
func (p *Provider) UploadVideo(ctx context.Context, dataURI string) (*assetstore.UploadResult, error) {
	return p.upload(assetstore.ResourceVideo)
}

// DeleteFile giả lập xóa một tài nguyên
func (p *Provider) DeleteFile(ctx context.Context, publicID string, resourceType string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.DeleteCalls++
	if p.FailDeletes {
		return common.NewError(common.ErrCodeExternalAssetStore,
			common.MsgAssetDeleteFailed, common.StatusBadGateway, "fake delete failure")
	}

	delete(p.assets, publicID)
	return nil
}

// DeleteFiles giả lập xóa batch, phân loại deleted/not_found như kho media thật
func (p *Provider) DeleteFiles(ctx context.Context, publicIDs []string, resourceType string) (*assetstore.DeleteResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.DeleteCalls++
	if p.FailDeletes {
		return nil, common.NewError(common.ErrCodeExternalAssetStore,
			common.MsgAssetDeleteFailed, common.StatusBadGateway, "fake delete failure")
	}

	result := &assetstore.DeleteResult{}
	for _, id := range publicIDs {
		if _, ok := p.assets[id]; ok {
			delete(p.assets, id)
			result.Deleted = append(result.Deleted, id)
		} else {
			result.NotFound = append(result.NotFound, id)
		}
	}

	return result, nil
}

// đảm bảo Provider thỏa interface
var _ assetstore.Client = (*Provider)(nil)

// DataURI tạo một data URI hợp lệ dùng trong test
func DataURI(mime string) string {
	return fmt.Sprintf("data:%s;base64,aGVsbG8=", mime)
}
