// Package cache - Test hành vi nil-safe khi cache bị tắt.
package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"academy/config"
)

func TestNewClient_DisabledWhenURIEmpty(t *testing.T) {
	client, err := NewClient(&config.Configuration{RedisURI: ""})
	assert.NoError(t, err)
	assert.False(t, client.Enabled())
}

func TestNewClient_BadURI(t *testing.T) {
	_, err := NewClient(&config.Configuration{RedisURI: "not-a-redis-uri"})
	assert.Error(t, err)
}

func TestDisabledClient_IsNoOp(t *testing.T) {
	ctx := context.Background()

	for _, client := range []*Client{nil, {}} {
		var dest map[string]interface{}
		assert.ErrorIs(t, client.Get(ctx, "k", &dest), ErrCacheMiss)

		// Set/Delete không panic, Ping không coi là lỗi hệ thống
		client.Set(ctx, "k", map[string]string{"a": "b"})
		client.Delete(ctx, "k")
		assert.NoError(t, client.Ping(ctx))
		assert.NoError(t, client.Close())
	}
}

func TestCourseKey(t *testing.T) {
	assert.Equal(t, "course:abc123", CourseKey("abc123"))
}
