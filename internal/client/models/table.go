// Package models defines the client-side data model of geosync: the
// geography tables, their records, outbox entries and sync bookkeeping.
package models

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/geosync/internal/common"
)

// Table names one entity type; the value is both the SQLite table and the
// remote endpoint name.
type Table string

const (
	TableCountries Table = "countries"
	TableStates    Table = "states"
	TableCities    Table = "cities"
)

// Tables lists entity types parents first.
func Tables() []Table {
	return []Table{TableCountries, TableStates, TableCities}
}

// ParseTable accepts a table name or its singular form ("country").
func ParseTable(s string) (Table, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "countries", "country":
		return TableCountries, nil
	case "states", "state":
		return TableStates, nil
	case "cities", "city":
		return TableCities, nil
	}
	return "", fmt.Errorf("%w: %q", common.ErrUnknownTable, s)
}

func (t Table) Valid() bool {
	switch t {
	case TableCountries, TableStates, TableCities:
		return true
	}
	return false
}

// ParentColumn is the local column holding the parent reference, or "" for
// top-level tables.
func (t Table) ParentColumn() string {
	switch t {
	case TableStates:
		return "country_uuid"
	case TableCities:
		return "state_uuid"
	}
	return ""
}

// ParentTable returns "" for top-level tables.
func (t Table) ParentTable() Table {
	switch t {
	case TableStates:
		return TableCountries
	case TableCities:
		return TableStates
	}
	return ""
}

// ChildTable returns "" for leaf tables.
func (t Table) ChildTable() Table {
	switch t {
	case TableCountries:
		return TableStates
	case TableStates:
		return TableCities
	}
	return ""
}

// Singular is used for display.
func (t Table) Singular() string {
	switch t {
	case TableCountries:
		return "country"
	case TableStates:
		return "state"
	case TableCities:
		return "city"
	}
	return string(t)
}
