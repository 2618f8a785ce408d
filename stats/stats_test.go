package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"logviewer/models"
)

func TestSummarize(t *testing.T) {
	files := []models.LogFile{
		{RelativePath: "a.log", SizeBytes: 1048576},
		{RelativePath: "b.log", SizeBytes: 524288},
	}

	got := Summarize(files)

	assert.Equal(t, 2, got.FileCount)
	assert.Equal(t, int64(1572864), got.TotalBytes)
	assert.Equal(t, 1.5, got.TotalMegabytes)
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil)

	assert.Equal(t, models.Stats{}, got)
}

func TestRoundMegabytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  float64
	}{
		{bytes: 0, want: 0},
		{bytes: 1048576, want: 1.00},
		{bytes: 1572864, want: 1.50},
		{bytes: 5242, want: 0.00},  // 0.004999 MB
		{bytes: 5243, want: 0.01},  // 0.005000 MB
		{bytes: 131072, want: 0.13}, // exactly 0.125 MB, half rounds up
		{bytes: 393216, want: 0.38}, // exactly 0.375 MB
		{bytes: 10 * 1024 * 1024 * 1024, want: 10240},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, RoundMegabytes(tc.bytes), "bytes=%d", tc.bytes)
	}
}
