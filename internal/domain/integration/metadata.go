package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Metadata keys written on SOURCE entities.
const (
	MetadataKeyTargetID     = "woocommerceId"
	MetadataKeyDateLastSync = "dateLastSync"
)

// DefaultDebounceWindow is the period after a sync during which further
// webhook deliveries for the same entity are treated as noise.
const DefaultDebounceWindow = 60 * time.Second

// epoch values above this are milliseconds, not seconds
const millisecondThreshold int64 = 1_000_000_000_000

// Metadata is the SOURCE entity metadata bag. Only the target link and the
// last sync time are interpreted; every other key is carried in Extra and
// written back unchanged.
type Metadata struct {
	TargetID     *int64
	DateLastSync *int64
	Extra        map[string]json.RawMessage
}

// HasTargetID reports whether the entity is linked to a TARGET entity.
func (m Metadata) HasTargetID() bool {
	return m.TargetID != nil && *m.TargetID > 0
}

// TargetIDValue returns the linked TARGET id or zero.
func (m Metadata) TargetIDValue() int64 {
	if m.TargetID == nil {
		return 0
	}
	return *m.TargetID
}

// LastSyncedAt returns the last successful sync time, if recorded.
func (m Metadata) LastSyncedAt() (time.Time, bool) {
	if m.DateLastSync == nil || *m.DateLastSync <= 0 {
		return time.Time{}, false
	}
	return time.Unix(*m.DateLastSync, 0), true
}

// SyncedWithin reports whether the entity was synced less than window ago.
// Timestamps in the future count as recent.
func (m Metadata) SyncedWithin(now time.Time, window time.Duration) bool {
	last, ok := m.LastSyncedAt()
	if !ok {
		return false
	}
	return now.Sub(last) < window
}

// WithLink returns a copy of m carrying targetID and at as the last sync time.
func (m Metadata) WithLink(targetID int64, at time.Time) Metadata {
	out := m.clone()
	id := targetID
	ts := at.Unix()
	out.TargetID = &id
	out.DateLastSync = &ts
	return out
}

func (m Metadata) clone() Metadata {
	out := Metadata{}
	if m.TargetID != nil {
		v := *m.TargetID
		out.TargetID = &v
	}
	if m.DateLastSync != nil {
		v := *m.DateLastSync
		out.DateLastSync = &v
	}
	if m.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(m.Extra))
		for k, v := range m.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

// MarshalJSON writes Extra first, then the interpreted keys on top.
func (m Metadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(m.Extra)+2)
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.TargetID != nil {
		out[MetadataKeyTargetID] = json.RawMessage(strconv.FormatInt(*m.TargetID, 10))
	}
	if m.DateLastSync != nil {
		out[MetadataKeyDateLastSync] = json.RawMessage(strconv.FormatInt(*m.DateLastSync, 10))
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts null, an object, or (from some SOURCE versions) an
// empty array for "no metadata".
func (m *Metadata) UnmarshalJSON(data []byte) error {
	*m = Metadata{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("[]")) {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return fmt.Errorf("metadata: %w", err)
	}

	for k, v := range raw {
		switch k {
		case MetadataKeyTargetID:
			if id, ok := parseInt64(v); ok {
				m.TargetID = id
				continue
			}
		case MetadataKeyDateLastSync:
			if ts, ok := parseInt64(v); ok {
				if ts != nil && *ts > millisecondThreshold {
					s := *ts / 1000
					ts = &s
				}
				m.DateLastSync = ts
				continue
			}
		}
		if m.Extra == nil {
			m.Extra = make(map[string]json.RawMessage)
		}
		m.Extra[k] = v
	}
	return nil
}

// parseInt64 decodes a JSON number, numeric string or null. The second
// return value is false when the value has an unexpected shape.
func parseInt64(raw json.RawMessage) (*int64, bool) {
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil, true
	}

	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	switch t := v.(type) {
	case json.Number:
		n = t
	case string:
		if strings.TrimSpace(t) == "" {
			return nil, true
		}
		n = json.Number(strings.TrimSpace(t))
	default:
		return nil, false
	}

	if i, err := n.Int64(); err == nil {
		return &i, true
	}
	if f, err := n.Float64(); err == nil {
		i := int64(f)
		return &i, true
	}
	return nil, false
}

// ---------------------------------------------------------------------------
// Flag
// ---------------------------------------------------------------------------

// Flag is a boolean the SOURCE API encodes as 0/1, "0"/"1" or true/false.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	switch strings.ToLower(s) {
	case "1", "true":
		*f = true
	case "", "0", "false", "null":
		*f = false
	default:
		return fmt.Errorf("flag: unexpected value %s", data)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}
