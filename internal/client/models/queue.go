package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Operation is the kind of mutation carried by a queue entry.
type Operation string

const (
	OpUpsert Operation = "UPSERT"
	OpDelete Operation = "DELETE"
)

// ParseOperation is case-insensitive; an empty string yields "".
func ParseOperation(s string) (Operation, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "UPSERT", "INSERT", "UPDATE":
		return OpUpsert, nil
	case "DELETE":
		return OpDelete, nil
	}
	return "", fmt.Errorf("unknown operation %q", s)
}

// SourceType tells which direction processed a queue entry on this device.
type SourceType string

const (
	SourceLocal SourceType = "local"
	SourceCloud SourceType = "cloud"
)

// QueueEntry is one immutable outbox row.
type QueueEntry struct {
	ID               int64
	OriginDeviceCode string
	Table            Table
	RecordUUID       string
	Operation        Operation
	Payload          string
	CreatedAt        string
}

// Payload is the snapshot stored in json_payload.
type Payload struct {
	Operation Operation      `json:"operation"`
	Data      map[string]any `json:"data"`
}

var ErrMalformedPayload = errors.New("malformed payload")

func EncodePayload(op Operation, data map[string]any) (string, error) {
	b, err := json.Marshal(Payload{Operation: op, Data: data})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodePayload accepts either the {"operation","data"} wrapper or a flat
// object holding the record fields directly.
func DecodePayload(raw []byte) (Payload, error) {
	var obj map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return Payload{}, fmt.Errorf("%w: not a JSON object", ErrMalformedPayload)
	}

	var p Payload
	if op, ok := obj["operation"].(string); ok {
		parsed, err := ParseOperation(op)
		if err != nil {
			return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		p.Operation = parsed
	}

	if data, ok := obj["data"].(map[string]any); ok {
		p.Data = data
	} else {
		delete(obj, "operation")
		p.Data = obj
	}
	normalizeNumbers(p.Data)
	return p, nil
}

func normalizeNumbers(m map[string]any) {
	for k, v := range m {
		if n, ok := v.(json.Number); ok {
			m[k] = n.String()
		}
	}
}

// CloudEntry is one row of the remote sync queue as returned by
// get_sync_queue. Peers disagree on shapes, so id may be a number or a
// numeric string and json_payload may be an embedded JSON string or an object.
type CloudEntry struct {
	ID         int64
	Table      string
	RecordUUID string
	Operation  string
	Payload    json.RawMessage

	// Invalid is set by DecodeQueue when the row could not be decoded.
	Invalid error
}

type cloudEntryWire struct {
	ID         json.RawMessage `json:"id"`
	Table      string          `json:"table_name"`
	RecordUUID string          `json:"record_uuid"`
	Operation  string          `json:"operation"`
	Payload    json.RawMessage `json:"json_payload"`
}

func (e *CloudEntry) UnmarshalJSON(b []byte) error {
	var w cloudEntryWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	id, err := parseFlexibleID(w.ID)
	if err != nil {
		return err
	}

	e.ID = id
	e.Table = w.Table
	e.RecordUUID = w.RecordUUID
	e.Operation = w.Operation
	e.Payload = w.Payload

	var embedded string
	if len(w.Payload) > 0 && w.Payload[0] == '"' {
		if err := json.Unmarshal(w.Payload, &embedded); err == nil {
			e.Payload = json.RawMessage(embedded)
		}
	}
	return nil
}

func (e CloudEntry) MarshalJSON() ([]byte, error) {
	payload := e.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	return json.Marshal(cloudEntryWire{
		ID:         json.RawMessage(strconv.FormatInt(e.ID, 10)),
		Table:      e.Table,
		RecordUUID: e.RecordUUID,
		Operation:  e.Operation,
		Payload:    payload,
	})
}

// DecodeQueue decodes a get_sync_queue body row by row. A row that fails to
// decode is kept with Invalid set so the caller can report it and move on;
// only a body that is not a JSON array is an error.
func DecodeQueue(body []byte) ([]CloudEntry, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, err
	}

	entries := make([]CloudEntry, 0, len(rows))
	for i, raw := range rows {
		var e CloudEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			e = CloudEntry{Invalid: fmt.Errorf("queue row %d: %w", i, err)}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func parseFlexibleID(raw json.RawMessage) (int64, error) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return 0, errors.New("queue entry without id")
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid queue id %q: %w", s, err)
	}
	return id, nil
}

// SaveRequest is one push of a local change to the remote.
type SaveRequest struct {
	Table     Table
	Operation Operation
	UUID      string
	Data      map[string]any

	// DeviceCode is informational; the remote may record it as the origin.
	DeviceCode string
}
