package schema

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	apperrors "github.com/jwalitptl/cupos-admin/pkg/errors"
	"github.com/jwalitptl/cupos-admin/pkg/textnorm"
)

// ColumnCatalog lists the physical columns of a table. An unknown table
// yields no columns and no error.
type ColumnCatalog interface {
	Columns(ctx context.Context, table string) ([]string, error)
}

// Table is a logical table bound to its physical name and resolved columns.
type Table struct {
	Logical string
	Name    string
	Exists  bool
	columns map[string]string
}

// Column returns the physical column for field, or "" when absent.
func (t *Table) Column(field string) string {
	if t == nil {
		return ""
	}
	return t.columns[field]
}

// Has reports whether field resolved to a column.
func (t *Table) Has(field string) bool {
	return t.Column(field) != ""
}

// Require returns the column for field or a schema resolution error.
func (t *Table) Require(field string) (string, error) {
	if c := t.Column(field); c != "" {
		return c, nil
	}
	name := ""
	if t != nil {
		name = t.Name
	}
	return "", apperrors.SchemaResolution(name, field)
}

// Mapping is the resolved logical→physical mapping for all tables.
type Mapping struct {
	Version int
	tables  map[string]*Table
}

// Table returns the resolved logical table. Unknown names give an empty
// table whose lookups report every field as absent.
func (m *Mapping) Table(logical string) *Table {
	if t, ok := m.tables[logical]; ok {
		return t
	}
	return &Table{Logical: logical, columns: map[string]string{}}
}

// Describe lists "logical.field = physical.column" lines, sorted.
func (m *Mapping) Describe() []string {
	var lines []string
	for _, t := range m.tables {
		if !t.Exists {
			lines = append(lines, fmt.Sprintf("%s = %s (missing)", t.Logical, t.Name))
			continue
		}
		for field, col := range t.columns {
			lines = append(lines, fmt.Sprintf("%s.%s = %s.%s", t.Logical, field, t.Name, col))
		}
	}
	sort.Strings(lines)
	return lines
}

// PickColumn returns the first candidate present in columns, compared after
// stripping accents and folding case. The returned name keeps the physical spelling.
func PickColumn(columns []string, candidates []string) (string, bool) {
	byKey := make(map[string]string, len(columns))
	for _, c := range columns {
		k := textnorm.Key(c)
		if _, seen := byKey[k]; !seen {
			byKey[k] = c
		}
	}
	for _, cand := range candidates {
		if real, ok := byKey[textnorm.Key(cand)]; ok {
			return real, true
		}
	}
	return "", false
}

// Resolve probes the catalog once per table and binds every field of defs.
// tableNames overrides the default physical table name per logical table.
func Resolve(ctx context.Context, catalog ColumnCatalog, defs []TableDef, tableNames map[string]string) (*Mapping, error) {
	m := &Mapping{Version: Version, tables: make(map[string]*Table, len(defs))}

	for _, def := range defs {
		name := def.Physical
		if override := tableNames[def.Logical]; override != "" {
			name = override
		}

		cols, err := catalog.Columns(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to list columns of %s: %w", name, err)
		}

		t := &Table{
			Logical: def.Logical,
			Name:    name,
			Exists:  len(cols) > 0,
			columns: make(map[string]string, len(def.Fields)),
		}

		if !t.Exists && def.Optional {
			log.Warn().Str("table", name).Str("logical", def.Logical).Msg("optional table not found")
			m.tables[def.Logical] = t
			continue
		}

		for _, f := range def.Fields {
			col, ok := PickColumn(cols, f.Candidates)
			if !ok {
				if f.Required {
					return nil, apperrors.SchemaResolution(name, f.Name)
				}
				continue
			}
			t.columns[f.Name] = col
		}
		m.tables[def.Logical] = t
	}

	return m, nil
}

// StaticCatalog is a ColumnCatalog backed by a fixed table→columns map.
type StaticCatalog map[string][]string

func (c StaticCatalog) Columns(_ context.Context, table string) ([]string, error) {
	return c[table], nil
}

// FirstCandidates builds a catalog in which every table of defs has the
// first candidate of each of its fields.
func FirstCandidates(defs []TableDef) StaticCatalog {
	c := make(StaticCatalog, len(defs))
	for _, def := range defs {
		for _, f := range def.Fields {
			c[def.Physical] = append(c[def.Physical], f.Candidates[0])
		}
	}
	return c
}

// MustDefault resolves Definitions against FirstCandidates. Tests and
// `cupos-admin schema --defaults` use it when there is no database.
func MustDefault() *Mapping {
	m, err := Resolve(context.Background(), FirstCandidates(Definitions), Definitions, nil)
	if err != nil {
		panic(err)
	}
	return m
}
