package domain

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jonboulle/clockwork"
)

// clock stamps ProcessedAt on enriched records.
var clock = clockwork.NewRealClock()

// SetClock replaces the enrichment clock. Pass nil to restore the real clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// ParseRawEvent deserializes a RawEvent's value into a MineRecord.
// It expects the flat JSON object produced by the extraction agent. Scalar
// values of any JSON type are kept as strings; nulls are dropped.
func ParseRawEvent(raw RawEvent) (MineRecord, error) {
	fields, err := decodeFlatRecord(raw.Value)
	if err != nil {
		return MineRecord{}, fmt.Errorf("parse raw event: %w", err)
	}

	name := strings.TrimSpace(fields[FieldMineName])
	return MineRecord{
		ID:              generateID(name, fields),
		MineName:        name,
		Fields:          fields,
		SourceTimestamp: raw.Timestamp,
		RawPayload:      raw.Value,
	}, nil
}

func decodeFlatRecord(data []byte) (map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if len(obj) == 0 {
		return nil, errors.New("record has no fields")
	}

	fields := make(map[string]string, len(obj))
	for k, v := range obj {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			fields[k] = val
		case json.Number:
			fields[k] = val.String()
		case bool:
			fields[k] = strconv.FormatBool(val)
		default:
			b, err := json.Marshal(val)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", k, err)
			}
			fields[k] = string(b)
		}
	}
	return fields, nil
}

// generateID produces a deterministic ID from the mine name and raw fields.
// Reprocessing the same extraction yields the same ID.
func generateID(name string, fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	h.Write([]byte(name))
	for _, k := range keys {
		fmt.Fprintf(h, "|%s=%s", k, fields[k])
	}
	short := hex.EncodeToString(h.Sum(nil)[:8])
	if slug := slugify(name); slug != "" {
		return slug + "-" + short
	}
	return "mine-" + short
}

// slugify keeps ASCII letters and digits of a name, joined by dashes.
func slugify(name string) string {
	fields := strings.FieldsFunc(FoldText(name), func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	})
	slug := strings.Join(fields, "-")
	if len(slug) > 40 {
		slug = strings.TrimRight(slug[:40], "-")
	}
	return slug
}

// EnrichMineRecord normalizes the record's measurement fields and stamps the
// processing time.
func EnrichMineRecord(record MineRecord, n *Normalizer) MineRecord {
	res := n.NormalizeRecord(record.Fields)
	record.Fields = res.Fields
	record.Conversions = res.Conversions
	if res.Location != nil {
		loc := *res.Location.Coordinates
		record.Location = &loc
		record.LocationConfidence = res.Location.Confidence
	}
	record.ProcessedAt = clock.Now()
	return record
}
