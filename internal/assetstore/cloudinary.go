package assetstore

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"academy/config"
	"academy/internal/common"
	"academy/internal/logger"
)

// Transformation crop thumbnail áp dụng phía server khi upload ảnh
const thumbnailTransformation = "c_fill,w_800,h_450"

// CloudinaryClient là implementation của Client trên HTTP API kiểu Cloudinary.
// Upload dùng signed request (api key + SHA-1 signature), admin API dùng basic auth.
type CloudinaryClient struct {
	http        *resty.Client
	apiKey      string
	apiSecret   string
	imageFolder string
	videoFolder string
}

// NewCloudinaryClient tạo client kho media từ cấu hình server
func NewCloudinaryClient(cfg *config.Configuration) *CloudinaryClient {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.AssetStore_BaseURL, "/")).
		SetTimeout(60 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &CloudinaryClient{
		http:        httpClient,
		apiKey:      cfg.AssetStore_APIKey,
		apiSecret:   cfg.AssetStore_APISecret,
		imageFolder: cfg.AssetStore_ImageFolder,
		videoFolder: cfg.AssetStore_VideoFolder,
	}
}

// sign tạo chữ ký SHA-1 theo convention Cloudinary:
// sort params theo key, nối "key=value" bằng "&", append api secret rồi SHA-1 hex.
func (c *CloudinaryClient) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	toSign := strings.Join(pairs, "&") + c.apiSecret
	sum := sha1.Sum([]byte(toSign))
	return hex.EncodeToString(sum[:])
}

// upload gửi signed upload request cho một resource type
func (c *CloudinaryClient) upload(ctx context.Context, dataURI string, resourceType string, params map[string]string) (*UploadResult, error) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	params["timestamp"] = timestamp
	signature := c.sign(params)

	formData := map[string]string{
		"file":      dataURI,
		"api_key":   c.apiKey,
		"signature": signature,
	}
	for k, v := range params {
		formData[k] = v
	}

	var result UploadResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(formData).
		SetResult(&result).
		Post("/" + resourceType + "/upload")
	if err != nil {
		logger.WithModule("assetstore").WithError(err).Error("Upload request failed")
		return nil, common.NewError(common.ErrCodeExternalAssetStore,
			common.MsgAssetUploadFailed, common.StatusBadGateway, err.Error())
	}
	if resp.IsError() {
		logger.WithModule("assetstore").WithFields(map[string]interface{}{
			"status": resp.StatusCode(),
			"body":   resp.String(),
		}).Error("Upload rejected by asset store")
		return nil, common.NewError(common.ErrCodeExternalAssetStore,
			common.MsgAssetUploadFailed, common.StatusBadGateway,
			fmt.Sprintf("asset store returned status %d", resp.StatusCode()))
	}
	if result.PublicID == "" {
		return nil, common.NewError(common.ErrCodeExternalAssetStore,
			common.MsgAssetUploadFailed, common.StatusBadGateway, "asset store response missing public_id")
	}

	return &result, nil
}

// UploadImage upload ảnh thumbnail, crop 800x450 fill phía server
func (c *CloudinaryClient) UploadImage(ctx context.Context, dataURI string) (*UploadResult, error) {
	params := map[string]string{
		"folder":         c.imageFolder,
		"transformation": thumbnailTransformation,
	}
	return c.upload(ctx, dataURI, ResourceImage, params)
}

// UploadVideo upload video bài học, kho media trả về duration và format
func (c *CloudinaryClient) UploadVideo(ctx context.Context, dataURI string) (*UploadResult, error) {
	params := map[string]string{
		"folder": c.videoFolder,
	}
	return c.upload(ctx, dataURI, ResourceVideo, params)
}

// DeleteFile xóa một tài nguyên theo public ID (signed destroy request)
func (c *CloudinaryClient) DeleteFile(ctx context.Context, publicID string, resourceType string) error {
	params := map[string]string{
		"public_id": publicID,
		"timestamp": strconv.FormatInt(time.Now().Unix(), 10),
	}
	signature := c.sign(params)

	var result struct {
		Result string `json:"result"` // "ok" hoặc "not found"
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"public_id": publicID,
			"timestamp": params["timestamp"],
			"api_key":   c.apiKey,
			"signature": signature,
		}).
		SetResult(&result).
		Post("/" + resourceType + "/destroy")
	if err != nil {
		return common.NewError(common.ErrCodeExternalAssetStore,
			common.MsgAssetDeleteFailed, common.StatusBadGateway, err.Error())
	}
	if resp.IsError() {
		return common.NewError(common.ErrCodeExternalAssetStore,
			common.MsgAssetDeleteFailed, common.StatusBadGateway,
			fmt.Sprintf("asset store returned status %d", resp.StatusCode()))
	}
	if result.Result != "ok" && result.Result != "not found" {
		return common.NewError(common.ErrCodeExternalAssetStore,
			common.MsgAssetDeleteFailed, common.StatusBadGateway, result.Result)
	}

	return nil
}

// DeleteFiles xóa batch tài nguyên qua admin API (basic auth).
// Response của kho media map từng public ID sang trạng thái "deleted" hoặc "not_found".
func (c *CloudinaryClient) DeleteFiles(ctx context.Context, publicIDs []string, resourceType string) (*DeleteResult, error) {
	if len(publicIDs) == 0 {
		return &DeleteResult{}, nil
	}

	var raw struct {
		Deleted map[string]string `json:"deleted"`
	}
	qs := url.Values{}
	for _, id := range publicIDs {
		qs.Add("public_ids[]", id)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.apiKey, c.apiSecret).
		SetQueryParamsFromValues(qs).
		SetResult(&raw).
		Delete("/resources/" + resourceType + "/upload")
	if err != nil {
		return nil, common.NewError(common.ErrCodeExternalAssetStore,
			common.MsgAssetDeleteFailed, common.StatusBadGateway, err.Error())
	}
	if resp.IsError() {
		return nil, common.NewError(common.ErrCodeExternalAssetStore,
			common.MsgAssetDeleteFailed, common.StatusBadGateway,
			fmt.Sprintf("asset store returned status %d", resp.StatusCode()))
	}

	result := &DeleteResult{}
	for _, id := range publicIDs {
		switch raw.Deleted[id] {
		case "deleted":
			result.Deleted = append(result.Deleted, id)
		default:
			result.NotFound = append(result.NotFound, id)
		}
	}

	return result, nil
}
