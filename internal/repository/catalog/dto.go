package catalog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kailas-cloud/specdex/internal/domain/catalog/field"
	"github.com/kailas-cloud/specdex/internal/domain/catalog/record"
)

const (
	attrID         = "id"
	attrSource     = "source_file"
	attrIngestedAt = "ingested_at"
	attrExtras     = "extras"
)

// encodeRecord renders a record as the stored JSON document.
// Absent fields are omitted, never stored as empty strings.
func encodeRecord(rec record.Record) ([]byte, error) {
	m := map[string]any{
		attrID:         rec.Identity(),
		attrSource:     rec.Source(),
		attrIngestedAt: rec.IngestedAt().UnixMilli(),
	}
	fs := rec.Fields()
	for _, n := range fs.Present() {
		v := fs.Get(n)
		if i, ok := v.Int(); ok {
			m[string(n)] = i
			continue
		}
		m[string(n)] = v.String()
	}
	if len(rec.Extras()) > 0 {
		m[attrExtras] = rec.Extras()
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal record %s: %w", rec.Identity(), err)
	}
	return data, nil
}

// decodeRecord parses a stored JSON document. JSON.GET with a "$" path wraps
// the document in an array; FT.SEARCH returns it bare.
func decodeRecord(data []byte) (record.Record, error) {
	if len(data) > 0 && data[0] == '[' {
		var docs []json.RawMessage
		if err := json.Unmarshal(data, &docs); err != nil {
			return record.Record{}, fmt.Errorf("unmarshal record array: %w", err)
		}
		if len(docs) == 0 {
			return record.Record{}, fmt.Errorf("empty record array")
		}
		data = docs[0]
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return record.Record{}, fmt.Errorf("unmarshal record: %w", err)
	}

	var id, source string
	var ingestedMillis int64
	var extras map[string]string
	if err := unmarshalOptional(raw, attrID, &id); err != nil {
		return record.Record{}, err
	}
	if err := unmarshalOptional(raw, attrSource, &source); err != nil {
		return record.Record{}, err
	}
	if err := unmarshalOptional(raw, attrIngestedAt, &ingestedMillis); err != nil {
		return record.Record{}, err
	}
	if err := unmarshalOptional(raw, attrExtras, &extras); err != nil {
		return record.Record{}, err
	}

	fs := field.NewSet()
	for _, n := range field.All() {
		msg, ok := raw[string(n)]
		if !ok {
			continue
		}
		switch n.Kind() {
		case field.Integer:
			var i int64
			if err := json.Unmarshal(msg, &i); err != nil {
				return record.Record{}, fmt.Errorf("field %s: %w", n, err)
			}
			fs.Put(n, field.Int(i))
		default:
			var s string
			if err := json.Unmarshal(msg, &s); err != nil {
				return record.Record{}, fmt.Errorf("field %s: %w", n, err)
			}
			fs.Put(n, field.String(s))
		}
	}

	return record.Reconstruct(id, source, fs, extras, time.UnixMilli(ingestedMillis).UTC()), nil
}

func unmarshalOptional(raw map[string]json.RawMessage, key string, dst any) error {
	msg, ok := raw[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(msg, dst); err != nil {
		return fmt.Errorf("attribute %s: %w", key, err)
	}
	return nil
}
