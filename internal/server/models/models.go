// Package models defines the data held by the reference sync server: the
// cloud copies of the geography tables and the shared sync queue.
package models

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/geosync/internal/common"
)

// Table is both a cloud table and the suffix of its save endpoint.
type Table string

const (
	TableCountries Table = "countries"
	TableStates    Table = "states"
	TableCities    Table = "cities"
)

// Tables lists the tables parents first.
func Tables() []Table {
	return []Table{TableCountries, TableStates, TableCities}
}

func ParseTable(s string) (Table, error) {
	t := Table(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case TableCountries, TableStates, TableCities:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", common.ErrUnknownTable, s)
}

// ParentColumn uses the remote naming: country_id and state_id.
func (t Table) ParentColumn() string {
	switch t {
	case TableStates:
		return "country_id"
	case TableCities:
		return "state_id"
	}
	return ""
}

// Row is one record of a cloud table.
type Row struct {
	UUID        string  `json:"uuid"`
	Name        string  `json:"name"`
	ParentID    *string `json:"parent_id,omitempty"`
	LastUpdated string  `json:"last_updated"`
	DeletedAt   *string `json:"deleted_at,omitempty"`
}

// RowFromData reads the record fields a client sent for t. The uuid
// argument wins over a uuid inside data.
func RowFromData(t Table, uuid string, data map[string]any) Row {
	r := Row{
		UUID:        strings.TrimSpace(uuid),
		Name:        str(data["name"]),
		LastUpdated: str(data["last_updated"]),
		DeletedAt:   strPtr(data["deleted_at"]),
	}
	if r.UUID == "" {
		r.UUID = str(data["uuid"])
	}
	if col := t.ParentColumn(); col != "" {
		r.ParentID = strPtr(data[col])
	}
	return r
}

// Data renders r with the remote column names of t.
func (r Row) Data(t Table) map[string]any {
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
		if r.ParentID != nil {
			data[col] = *r.ParentID
		}
	}
	return data
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
