package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// RecordWriter persists decoded records. created is false for an update.
type RecordWriter interface {
	UpsertRecord(ctx context.Context, r Record) (created bool, err error)
}

// ImportResult holds counters and timing from an import run.
type ImportResult struct {
	TotalRows int
	Created   int
	Updated   int
	Skipped   int
	Warnings  []string
	TotalTime time.Duration
}

// Import reads a JSON array of raw catalog records from r and upserts them.
// Entries without an id or that cannot be decoded are skipped with a warning.
func Import(ctx context.Context, w RecordWriter, r io.Reader) (*ImportResult, error) {
	start := time.Now()

	var raws []map[string]interface{}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&raws); err != nil {
		return nil, fmt.Errorf("read JSON records: %w", err)
	}

	result := &ImportResult{TotalRows: len(raws)}
	for i, raw := range raws {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		rec, err := DecodeRecord(numbersToFloat(raw).(map[string]interface{}))
		if err != nil {
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: %v", i, err))
			continue
		}
		if strings.TrimSpace(rec.RecordID()) == "" {
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: missing id", i))
			continue
		}
		created, err := w.UpsertRecord(ctx, rec)
		if err != nil {
			return result, fmt.Errorf("upsert %s: %w", rec.RecordID(), err)
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}
	result.TotalTime = time.Since(start)
	return result, nil
}

// numbersToFloat replaces json.Number values so that large ids survive as text
// and everything else decodes as float64.
func numbersToFloat(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, e := range t {
			if k == "id" || k == "_id" {
				if n, ok := e.(json.Number); ok {
					t[k] = n.String()
					continue
				}
			}
			t[k] = numbersToFloat(e)
		}
		return t
	case []interface{}:
		for i, e := range t {
			t[i] = numbersToFloat(e)
		}
		return t
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		return f
	}
	return v
}
