// Package assetstore - Test validate data URI payload.
package assetstore

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDataURI(t *testing.T) {
	valid := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("payload"))

	t.Run("hợp lệ", func(t *testing.T) {
		assert.NoError(t, ValidateDataURI(valid, 1024))
	})

	t.Run("không giới hạn kích thước", func(t *testing.T) {
		assert.NoError(t, ValidateDataURI(valid, 0))
	})

	t.Run("thiếu prefix data:", func(t *testing.T) {
		err := ValidateDataURI("image/png;base64,aGVsbG8=", 1024)
		require.Error(t, err)
	})

	t.Run("không phải base64 encoding", func(t *testing.T) {
		err := ValidateDataURI("data:image/png;charset=utf8,hello", 1024)
		require.Error(t, err)
	})

	t.Run("payload rỗng", func(t *testing.T) {
		err := ValidateDataURI("data:image/png;base64,", 1024)
		require.Error(t, err)
	})

	t.Run("vượt kích thước cho phép", func(t *testing.T) {
		big := "data:video/mp4;base64," + base64.StdEncoding.EncodeToString([]byte(strings.Repeat("x", 100)))
		err := ValidateDataURI(big, 50)
		require.Error(t, err)
	})

	t.Run("chuỗi rỗng", func(t *testing.T) {
		require.Error(t, ValidateDataURI("", 1024))
	})
}
