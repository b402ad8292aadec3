// Package aggregate computes summary totals over a published sequence.
package aggregate

import "github.com/okian/casewatch/internal/domain/model"

// Totals sums the primary metric under metricField and each tracked secondary
// field under its own name. Records without a tracked field contribute 0.
func Totals(records []model.Record, metricField string, fields []string) map[string]int64 {
	out := make(map[string]int64, len(fields)+1)
	out[metricField] = 0
	for _, f := range fields {
		out[f] = 0
	}
	for _, r := range records {
		out[metricField] += r.Metric
		for _, f := range fields {
			out[f] += r.Field(f)
		}
	}
	return out
}
