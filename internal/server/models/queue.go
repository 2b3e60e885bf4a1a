package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/geosync/internal/common"
)

type Operation string

const (
	OpUpsert Operation = "UPSERT"
	OpDelete Operation = "DELETE"
)

// ParseOperation accepts INSERT and UPDATE as aliases of UPSERT.
func ParseOperation(s string) (Operation, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "UPSERT", "INSERT", "UPDATE":
		return OpUpsert, nil
	case "DELETE":
		return OpDelete, nil
	}
	return "", fmt.Errorf("%w: unknown operation %q", common.ErrValidation, s)
}

// QueueEntry is one row of the shared sync queue in its wire shape.
// JSONPayload is the stored JSON text, sent to clients as a string.
type QueueEntry struct {
	ID               int64     `json:"id"`
	OriginDeviceCode string    `json:"origin_device_code,omitempty"`
	TableName        Table     `json:"table_name"`
	RecordUUID       string    `json:"record_uuid"`
	Operation        Operation `json:"operation"`
	JSONPayload      string    `json:"json_payload"`
	CreatedAt        string    `json:"created_at"`
}

// SaveInput is one accepted mutation.
type SaveInput struct {
	Table      Table
	Operation  Operation
	UUID       string
	Data       map[string]any
	DeviceCode string
}

// Payload is what the queue stores in json_payload.
type Payload struct {
	Operation Operation      `json:"operation"`
	Data      map[string]any `json:"data"`
}

func EncodePayload(op Operation, data map[string]any) (string, error) {
	b, err := json.Marshal(Payload{Operation: op, Data: data})
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	return string(b), nil
}

// Snapshot is a full copy of the cloud state, taken before a truncate.
type Snapshot struct {
	TakenAt string          `json:"taken_at"`
	Tables  map[Table][]Row `json:"tables"`
	Queue   []QueueEntry    `json:"queue"`
}
