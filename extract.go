package main

import (
	"fmt"
	"log"
	"sort"
	"strings"
)

// extractResult accumulates the mapped records and run counters for
// one extraction pass.
type extractResult struct {
	entities []string // first-seen order
	grouped  map[string][]Record

	blocks         int
	rowsMapped     int
	tablesSkipped  map[string]int  // unmapped table → dropped row count
	columnsDropped map[string]bool // "table.column" without a rename entry
}

// extract runs the dump → record pipeline: parse blocks, map rows
// through the schema mapping, coerce values, and group the resulting
// records per target entity. Unmapped tables are handled per the
// configured policy; unmapped columns are dropped and counted for the
// end-of-run report.
func extract(cfg *Config, mapping SchemaMapping) (*extractResult, error) {
	path := cfg.resolvePath(cfg.Input.Dump)
	r, cleanup, err := openDump(path)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	res := &extractResult{
		grouped:        make(map[string][]Record),
		tablesSkipped:  make(map[string]int),
		columnsDropped: make(map[string]bool),
	}

	onBlock := func(b *DumpBlock) error {
		res.blocks++
		tm, ok := mapping[b.Table]
		if !ok {
			switch cfg.OnUnmappedTable {
			case unmappedFail:
				return fmt.Errorf("table %s has no mapping (on_unmapped_table=fail)", b.Table)
			case unmappedWarn:
				log.Printf("  WARN: skipping unmapped table %s", b.Table)
			}
			return nil
		}
		for _, col := range b.Columns {
			if col == "id" {
				continue
			}
			if _, mapped := tm.Columns[col]; !mapped {
				res.columnsDropped[b.Table+"."+col] = true
			}
		}
		return nil
	}

	onRow := func(b *DumpBlock, cells []string) error {
		rec := mapRow(mapping, b.Table, b.Columns, cells)
		if rec == nil {
			res.tablesSkipped[b.Table]++
			return nil
		}
		if len(res.grouped[rec.Entity]) == 0 {
			res.entities = append(res.entities, rec.Entity)
		}
		res.grouped[rec.Entity] = append(res.grouped[rec.Entity], *rec)
		res.rowsMapped++
		return nil
	}

	if err := parseDump(r, cfg.OnRowMismatch, onBlock, onRow); err != nil {
		return nil, err
	}
	return res, nil
}

// report logs the end-of-run counters so silently filtered tables and
// columns stay visible to operators.
func (r *extractResult) report() {
	log.Printf("run report: %d blocks, %d rows mapped across %d entities", r.blocks, r.rowsMapped, len(r.entities))

	if len(r.tablesSkipped) > 0 {
		tables := make([]string, 0, len(r.tablesSkipped))
		for t := range r.tablesSkipped {
			tables = append(tables, t)
		}
		sort.Strings(tables)
		for _, t := range tables {
			log.Printf("  skipped unmapped table %s (%d rows)", t, r.tablesSkipped[t])
		}
	}

	if len(r.columnsDropped) > 0 {
		cols := make([]string, 0, len(r.columnsDropped))
		for c := range r.columnsDropped {
			cols = append(cols, c)
		}
		sort.Strings(cols)
		log.Printf("  dropped %d unmapped columns: %s", len(cols), strings.Join(cols, ", "))
	}
}
