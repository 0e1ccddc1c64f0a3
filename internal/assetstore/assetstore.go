// Package assetstore cung cấp client giao tiếp với kho media bên ngoài (kiểu Cloudinary):
// upload ảnh/video từ payload base64 data URI và xóa tài nguyên theo public ID.
package assetstore

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"academy/internal/common"
)

// Loại tài nguyên trên kho media
const (
	ResourceImage = "image"
	ResourceVideo = "video"
)

// UploadResult chứa thông tin tài nguyên sau khi upload thành công
type UploadResult struct {
	PublicID string  `json:"public_id"`          // Định danh tài nguyên trên kho media
	URL      string  `json:"secure_url"`         // URL truy cập tài nguyên
	Format   string  `json:"format"`             // Định dạng file (jpg, mp4, ...)
	Duration float64 `json:"duration,omitempty"` // Thời lượng (giây), chỉ có với video
	Width    int     `json:"width,omitempty"`    // Chiều rộng (pixel), chỉ có với ảnh
	Height   int     `json:"height,omitempty"`   // Chiều cao (pixel), chỉ có với ảnh
	Bytes    int64   `json:"bytes,omitempty"`    // Kích thước file
}

// DeleteResult chứa kết quả xóa batch: public ID nào đã xóa, public ID nào không tồn tại
type DeleteResult struct {
	Deleted  []string `json:"deleted"`   // Các public ID đã xóa thành công
	NotFound []string `json:"not_found"` // Các public ID không tồn tại trên kho media
}

// Client là interface giao tiếp với kho media.
// Các service domain giữ interface này để có thể inject fake trong test.
type Client interface {
	// UploadImage upload ảnh từ data URI, server-side crop 800x450 fill
	UploadImage(ctx context.Context, dataURI string) (*UploadResult, error)

	// UploadVideo upload video từ data URI, trả về duration và format
	UploadVideo(ctx context.Context, dataURI string) (*UploadResult, error)

	// DeleteFile xóa một tài nguyên theo public ID
	DeleteFile(ctx context.Context, publicID string, resourceType string) error

	// DeleteFiles xóa batch tài nguyên, trả về danh sách deleted/not_found
	DeleteFiles(ctx context.Context, publicIDs []string, resourceType string) (*DeleteResult, error)
}

// ValidateDataURI kiểm tra payload là data URI base64 hợp lệ và không vượt quá maxBytes.
// Trả về lỗi Validation (400) khi payload sai định dạng hoặc quá lớn.
func ValidateDataURI(dataURI string, maxBytes int64) error {
	if !strings.HasPrefix(dataURI, "data:") {
		return common.NewError(common.ErrCodeValidationFormat,
			"Payload phải là data URI base64 (data:<mime>;base64,...)", common.StatusBadRequest, nil)
	}

	idx := strings.Index(dataURI, ";base64,")
	if idx < 0 {
		return common.NewError(common.ErrCodeValidationFormat,
			"Payload phải là data URI base64 (data:<mime>;base64,...)", common.StatusBadRequest, nil)
	}

	payload := dataURI[idx+len(";base64,"):]
	if payload == "" {
		return common.NewError(common.ErrCodeValidationFormat,
			"Payload base64 rỗng", common.StatusBadRequest, nil)
	}

	// Kích thước thực tế sau decode xấp xỉ 3/4 độ dài chuỗi base64
	decodedSize := int64(base64.StdEncoding.DecodedLen(len(payload)))
	if maxBytes > 0 && decodedSize > maxBytes {
		return common.NewError(common.ErrCodeValidationInput,
			fmt.Sprintf("Payload vượt quá kích thước cho phép (%d bytes)", maxBytes), common.StatusBadRequest, nil)
	}

	return nil
}
