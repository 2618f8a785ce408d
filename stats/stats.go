// Package stats aggregates catalog-wide metrics.
package stats

import (
	"math"

	"logviewer/models"
)

const bytesPerMegabyte = 1024 * 1024

// Summarize totals the given files. TotalMegabytes is rounded to two
// decimals, half away from zero (half-up for the non-negative sizes seen
// here).
func Summarize(files []models.LogFile) models.Stats {
	var total int64
	for _, f := range files {
		total += f.SizeBytes
	}

	return models.Stats{
		FileCount:      len(files),
		TotalBytes:     total,
		TotalMegabytes: RoundMegabytes(total),
	}
}

// RoundMegabytes converts bytes to megabytes rounded to two decimals.
func RoundMegabytes(bytes int64) float64 {
	return math.Round(float64(bytes)/bytesPerMegabyte*100) / 100
}
