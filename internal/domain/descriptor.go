package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Descriptor keys read by the resolver.
const (
	KeyCatalogFile = "catalog_file"
	KeyCatalogDict = "catalog_dict"
)

// Descriptor is a parsed catalog descriptor. It is created fresh for every
// load and never mutated by the resolver.
type Descriptor struct {
	Fields map[string]any
	raw    map[string]json.RawMessage
}

// ParseDescriptor parses a JSON object. Decoder errors are returned unchanged.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
		raw = map[string]json.RawMessage{}
	}
	return &Descriptor{Fields: fields, raw: raw}, nil
}

// Has reports whether the descriptor carries key.
func (d *Descriptor) Has(key string) bool {
	_, ok := d.Fields[key]
	return ok
}

// CatalogFile returns the raw catalog_file value and whether it is present.
func (d *Descriptor) CatalogFile() (any, bool) {
	v, ok := d.Fields[KeyCatalogFile]
	return v, ok
}

// CatalogRecords decodes catalog_dict into row records, keeping each row's key order.
func (d *Descriptor) CatalogRecords() ([]Record, error) {
	raw, ok := d.raw[KeyCatalogDict]
	if !ok {
		return nil, ErrValidation("descriptor has neither %s nor %s", KeyCatalogFile, KeyCatalogDict)
	}
	return decodeRecords(raw)
}

func decodeRecords(raw json.RawMessage) ([]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}
	var records []Record
	for dec.More() {
		rec, err := decodeRecord(dec)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", KeyCatalogDict, len(records), err)
		}
		records = append(records, rec)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	return records, nil
}

func decodeRecord(dec *json.Decoder) (Record, error) {
	rec := Record{Values: map[string]any{}}
	if err := expectDelim(dec, '{'); err != nil {
		return rec, err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return rec, err
		}
		key, ok := tok.(string)
		if !ok {
			return rec, fmt.Errorf("unexpected token %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return rec, err
		}
		if _, seen := rec.Values[key]; !seen {
			rec.Keys = append(rec.Keys, key)
		}
		rec.Values[key] = normalizeNumber(v)
	}
	return rec, expectDelim(dec, '}')
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return ErrValidation("%s: expected %q, got %v", KeyCatalogDict, want, tok)
	}
	return nil
}

// normalizeNumber maps integral JSON numbers to int64 and the rest to float64,
// matching the column types the CSV loader produces.
func normalizeNumber(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
