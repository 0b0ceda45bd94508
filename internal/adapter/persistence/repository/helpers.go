package repository

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// timestampLayout is fixed width so stored timestamps sort lexicographically
// in the same order as chronologically (GSI sort keys, SQL ORDER BY on text).
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(field, v string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode %s: %w", field, err)
	}
	return t, nil
}

func parseOptionalTimestamp(field, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := parseTimestamp(field, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func floatToString(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
