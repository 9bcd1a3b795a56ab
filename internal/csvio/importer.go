package csvio

import "context"

// RecordError pairs a rejected record with the reason it failed.
type RecordError struct {
	Business Record `json:"business"`
	Error    string `json:"error"`
}

// ImportResult summarises a batch. Imported + Failed equals the number of
// records submitted.
type ImportResult struct {
	Imported int           `json:"imported"`
	Failed   int           `json:"failed"`
	Errors   []RecordError `json:"errors"`
}

// CreateFunc persists one record.
type CreateFunc func(ctx context.Context, r Record) error

// ImportRecords submits every record in order, one at a time. A failing
// record is collected and the remaining records are still submitted; there
// is no atomicity across the batch.
func ImportRecords(ctx context.Context, records []Record, create CreateFunc) ImportResult {
	result := ImportResult{Errors: []RecordError{}}

	for _, r := range records {
		if err := create(ctx, r); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, RecordError{Business: r, Error: err.Error()})
			continue
		}
		result.Imported++
	}

	return result
}
