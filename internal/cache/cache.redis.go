// Package cache cung cấp cache đọc trên Redis cho các tài nguyên truy cập nhiều (course detail).
// Cache là tầng tùy chọn: khi REDIS_URI rỗng, mọi thao tác trở thành no-op và hệ thống
// đọc thẳng từ MongoDB.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"academy/config"
)

// ErrCacheMiss được trả về khi key không tồn tại trong cache.
var ErrCacheMiss = errors.New("cache: key không tồn tại")

// Client bọc redis.Client với TTL mặc định và serialize JSON.
// Client nil-safe: mọi method đều hoạt động đúng khi receiver là nil hoặc cache bị tắt.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClient khởi tạo Redis client từ cấu hình.
// Trả về client disabled (không lỗi) khi RedisURI rỗng.
func NewClient(cfg *config.Configuration) (*Client, error) {
	if cfg == nil || cfg.RedisURI == "" {
		logrus.Info("Redis cache tắt (REDIS_URI rỗng), đọc thẳng từ MongoDB")
		return &Client{}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURI)
	if err != nil {
		return nil, fmt.Errorf("cache: URI Redis không hợp lệ: %w", err)
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: không thể kết nối Redis: %w", err)
	}

	ttl := time.Duration(cfg.RedisCacheTTL) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	logrus.WithFields(logrus.Fields{
		"addr": opts.Addr,
		"ttl":  ttl.String(),
	}).Info("Đã kết nối Redis cache")

	return &Client{rdb: rdb, ttl: ttl}, nil
}

// Enabled báo cache có đang hoạt động không.
func (c *Client) Enabled() bool {
	return c != nil && c.rdb != nil
}

// CourseKey trả về cache key cho course detail.
func CourseKey(id string) string {
	return "course:" + id
}

// Get đọc giá trị từ cache và unmarshal JSON vào dest.
// Trả về ErrCacheMiss khi key không tồn tại hoặc cache tắt.
func (c *Client) Get(ctx context.Context, key string, dest interface{}) error {
	if !c.Enabled() {
		return ErrCacheMiss
	}

	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		// Lỗi kết nối Redis không được phép làm hỏng request: coi như miss
		logrus.WithFields(logrus.Fields{"key": key, "error": err}).Warn("Lỗi đọc cache, fallback về database")
		return ErrCacheMiss
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		// Dữ liệu cache hỏng: xóa và coi như miss
		c.rdb.Del(ctx, key)
		logrus.WithFields(logrus.Fields{"key": key, "error": err}).Warn("Dữ liệu cache hỏng, đã xóa key")
		return ErrCacheMiss
	}
	return nil
}

// Set ghi giá trị vào cache với TTL mặc định. Lỗi ghi cache chỉ log warning.
func (c *Client) Set(ctx context.Context, key string, value interface{}) {
	if !c.Enabled() {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err}).Warn("Không serialize được giá trị cache")
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err}).Warn("Lỗi ghi cache")
	}
}

// Delete xóa các key khỏi cache (invalidation sau update/delete). Lỗi chỉ log warning.
func (c *Client) Delete(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		logrus.WithFields(logrus.Fields{"keys": keys, "error": err}).Warn("Lỗi xóa cache key")
	}
}

// Ping kiểm tra kết nối Redis (dùng cho health check).
// Trả về nil khi cache tắt (không coi là lỗi hệ thống).
func (c *Client) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

// Close đóng kết nối Redis.
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}
