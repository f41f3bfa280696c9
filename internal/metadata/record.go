// Package metadata keeps the per-example display metadata file in step with
// the current corpus.
package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

const (
	fieldCanView      = "canView"
	fieldPrimaryColor = "primaryColor"
	fieldBlockReason  = "blockReason"
)

// Record is one example's metadata. Fields this tool does not know about are
// carried in Extra and written back unchanged.
type Record struct {
	CanView      bool
	PrimaryColor string
	BlockReason  *string
	// BlockReasonNull records an explicit "blockReason": null so it is
	// written back as null instead of being left out.
	BlockReasonNull bool
	Extra           map[string]json.RawMessage
}

// DefaultRecord is the record of an id with no persisted metadata.
func DefaultRecord() Record {
	return Record{CanView: true, PrimaryColor: ""}
}

// UnmarshalJSON decodes over the defaults, so only fields present in data
// replace a default.
func (r *Record) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	rec := DefaultRecord()
	for key, raw := range fields {
		var err error
		switch key {
		case fieldCanView:
			err = json.Unmarshal(raw, &rec.CanView)
		case fieldPrimaryColor:
			err = json.Unmarshal(raw, &rec.PrimaryColor)
		case fieldBlockReason:
			if string(bytes.TrimSpace(raw)) == "null" {
				rec.BlockReasonNull = true
				break
			}
			var reason string
			err = json.Unmarshal(raw, &reason)
			rec.BlockReason = &reason
		default:
			if rec.Extra == nil {
				rec.Extra = make(map[string]json.RawMessage)
			}
			rec.Extra[key] = append(json.RawMessage(nil), raw...)
		}
		if err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
	}
	*r = rec
	return nil
}

// MarshalJSON writes known fields first, then extras in key order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	write := func(key string, value any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		buf.Write(v)
		return nil
	}

	if err := write(fieldCanView, r.CanView); err != nil {
		return nil, err
	}
	if err := write(fieldPrimaryColor, r.PrimaryColor); err != nil {
		return nil, err
	}
	switch {
	case r.BlockReason != nil:
		if err := write(fieldBlockReason, *r.BlockReason); err != nil {
			return nil, err
		}
	case r.BlockReasonNull:
		if err := write(fieldBlockReason, nil); err != nil {
			return nil, err
		}
	}

	keys := make([]string, 0, len(r.Extra))
	for k := range r.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := write(k, r.Extra[k]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
