package models

import (
	"fmt"
	"strings"
)

// Record is one row of countries, states or cities.
type Record struct {
	UUID string
	Name string
	// ParentUUID is country_uuid for states and state_uuid for cities.
	ParentUUID  *string
	LastUpdated string
	DeletedAt   *string
}

// RecordView is a listing row joined with the parent's display name.
type RecordView struct {
	Record
	ParentName *string
}

// ToData renders r as a payload snapshot using the local column names of t.
func (r Record) ToData(t Table) map[string]any {
	data := map[string]any{
		"uuid":         r.UUID,
		"name":         r.Name,
		"last_updated": r.LastUpdated,
		"deleted_at":   nil,
	}
	if r.DeletedAt != nil {
		data["deleted_at"] = *r.DeletedAt
	}
	if col := t.ParentColumn(); col != "" {
		data[col] = nil
		if r.ParentUUID != nil {
			data[col] = *r.ParentUUID
		}
	}
	return data
}

// RecordFromData reads a payload snapshot keyed by local column names.
// Unknown keys are ignored.
func RecordFromData(t Table, data map[string]any) Record {
	r := Record{
		UUID:        str(data["uuid"]),
		Name:        str(data["name"]),
		LastUpdated: str(data["last_updated"]),
		DeletedAt:   strPtr(data["deleted_at"]),
	}
	if col := t.ParentColumn(); col != "" {
		r.ParentUUID = strPtr(data[col])
	}
	return r
}

func str(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return fmt.Sprintf("%.0f", x)
	default:
		return fmt.Sprint(x)
	}
}

func strPtr(v any) *string {
	s := str(v)
	if s == "" {
		return nil
	}
	return &s
}

// StringPtr is a small helper for optional fields.
func StringPtr(s string) *string {
	return &s
}
