// Package models - Test thứ tự chuẩn của bài học và các trường dẫn xuất.
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortLessons_StableOnDuplicateOrder(t *testing.T) {
	lessons := []Lesson{
		{Title: "C", Order: 2},
		{Title: "A", Order: 1},
		{Title: "B", Order: 1},
		{Title: "D", Order: 0},
	}
	SortLessons(lessons)

	// Order tăng dần; cùng order giữ nguyên vị trí tương đối trong mảng gốc
	assert.Equal(t, "D", lessons[0].Title)
	assert.Equal(t, "A", lessons[1].Title)
	assert.Equal(t, "B", lessons[2].Title)
	assert.Equal(t, "C", lessons[3].Title)
}

func TestRecomputeDerived(t *testing.T) {
	course := Course{
		TotalLessons:  99, // Giá trị cũ phải bị ghi đè
		TotalDuration: 99,
		CourseData: []Lesson{
			{Title: "B", Order: 2, Video: LessonVideo{Duration: 300}},
			{Title: "A", Order: 1, Video: LessonVideo{Duration: 150.5}},
		},
	}
	course.RecomputeDerived()

	assert.Equal(t, 2, course.TotalLessons)
	assert.Equal(t, 450.5, course.TotalDuration)
	assert.Equal(t, "A", course.CourseData[0].Title, "RecomputeDerived phải sort trước khi tính")
}

func TestRecomputeDerived_EmptyCourse(t *testing.T) {
	course := Course{TotalLessons: 5, TotalDuration: 100}
	course.RecomputeDerived()

	assert.Equal(t, 0, course.TotalLessons)
	assert.Equal(t, 0.0, course.TotalDuration)
}

func TestAssetPublicIDs(t *testing.T) {
	course := Course{
		Thumbnail: Thumbnail{PublicID: "image/thumb"},
		CourseData: []Lesson{
			{Video: LessonVideo{PublicID: "video/1"}},
			{Video: LessonVideo{}}, // bài học chưa có video không đóng góp ID
			{Video: LessonVideo{PublicID: "video/2"}},
		},
	}

	imageIDs, videoIDs := course.AssetPublicIDs()
	assert.Equal(t, []string{"image/thumb"}, imageIDs)
	assert.Equal(t, []string{"video/1", "video/2"}, videoIDs)
}

func TestAssetPublicIDs_NoThumbnail(t *testing.T) {
	course := Course{}
	imageIDs, videoIDs := course.AssetPublicIDs()
	assert.Empty(t, imageIDs)
	assert.Empty(t, videoIDs)
}
