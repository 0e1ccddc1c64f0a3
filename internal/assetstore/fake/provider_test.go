// Package fake - Test kho media giả phân loại deleted/not_found đúng như kho thật.
package fake

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"academy/internal/assetstore"
)

func TestProvider_UploadThenDelete(t *testing.T) {
	p := New()

	image, err := p.UploadImage(context.Background(), DataURI("image/png"))
	require.NoError(t, err)
	assert.Equal(t, 800, image.Width)
	assert.Equal(t, 450, image.Height)
	assert.True(t, p.Exists(image.PublicID))

	video, err := p.UploadVideo(context.Background(), DataURI("video/mp4"))
	require.NoError(t, err)
	assert.Equal(t, 120.0, video.Duration)
	assert.Equal(t, "mp4", video.Format)

	require.NoError(t, p.DeleteFile(context.Background(), image.PublicID, assetstore.ResourceImage))
	assert.False(t, p.Exists(image.PublicID))
	assert.Equal(t, 1, p.Count())
}

func TestProvider_DeleteFilesClassifiesNotFound(t *testing.T) {
	p := New()
	existing := p.Seed(assetstore.ResourceVideo)

	result, err := p.DeleteFiles(context.Background(), []string{existing, "video/khong-ton-tai"}, assetstore.ResourceVideo)
	require.NoError(t, err)

	assert.Equal(t, []string{existing}, result.Deleted)
	assert.Equal(t, []string{"video/khong-ton-tai"}, result.NotFound)
	assert.Equal(t, 0, p.Count())
}

func TestProvider_FailureInjection(t *testing.T) {
	p := New()
	p.FailUploads = true

	_, err := p.UploadImage(context.Background(), DataURI("image/png"))
	require.Error(t, err)

	p.FailUploads = false
	p.FailUploadAfter = 1
	_, err = p.UploadVideo(context.Background(), DataURI("video/mp4"))
	require.Error(t, err, "upload thứ 2 trở đi phải thất bại")

	p.FailDeletes = true
	_, err = p.DeleteFiles(context.Background(), []string{"x"}, assetstore.ResourceVideo)
	require.Error(t, err)
}
