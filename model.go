package main

// Record is one migrated row in the shape the downstream fixture
// loader consumes: {"model": "games.game", "pk": 5, "fields": {...}}.
// Fields never holds a key whose source cell was empty; absence is
// the canonical "unset" representation.
type Record struct {
	Entity string         `json:"model"`
	PK     *int64         `json:"pk"`
	Fields map[string]any `json:"fields"`
}

// DumpBlock is the header of one COPY block in a bulk dump: the bare
// table name and its declared column order. Rows are streamed to the
// caller and the block is discarded once its terminator is reached.
type DumpBlock struct {
	Table   string
	Columns []string
}

// TableMapping maps one legacy table to its target entity plus the
// legacy column → target field renames. The legacy "id" column is
// reserved for the record primary key.
type TableMapping struct {
	Entity  string            `toml:"entity"`
	Columns map[string]string `toml:"columns"`
}

// SchemaMapping is the full legacy-table → target-entity mapping.
// Built once at startup and passed explicitly; never mutated after.
type SchemaMapping map[string]TableMapping

// Entities returns the set of target entity names the mapping knows.
// The normalizer uses it to flag schema drift in fixture files.
func (m SchemaMapping) Entities() map[string]bool {
	out := make(map[string]bool, len(m))
	for _, tm := range m {
		out[tm.Entity] = true
	}
	return out
}
