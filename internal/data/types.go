package data

import "time"

type QueryParams struct {
	Limit     int    `json:"limit"`
	NextToken []byte `json:"nextToken"`
}

func (q *QueryParams) GetLimit() *int32 {
	limit := int32(q.Limit)
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return &limit
}

type QueryResults[T interface{}] struct {
	Items     []T    `json:"items"`
	NextToken []byte `json:"nextToken"`
}

type NextToken map[string]map[string]string

// Timestamp renders a store timestamp. All createdAt/updatedAt attributes are
// ISO-8601 strings so they collate chronologically as index sort keys.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
