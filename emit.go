package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// emitFixtures writes one JSON fixture file per entity that received
// at least one record, in first-seen entity order. Entities with no
// records produce no file; the absence of a file means "no legacy
// data for this entity".
func emitFixtures(outDir string, entities []string, grouped map[string][]Record) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, entity := range entities {
		recs := grouped[entity]
		if len(recs) == 0 {
			continue
		}
		path := filepath.Join(outDir, fixtureFileName(entity))
		data, err := marshalRecords(recs)
		if err != nil {
			return fmt.Errorf("serialize %s: %w", entity, err)
		}
		if err := writeFileAtomic(path, data); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		log.Printf("  wrote %d records to %s", len(recs), path)
	}
	return nil
}

// fixtureFileName maps an entity name to its fixture file,
// e.g. "games.game" → "games_game.json".
func fixtureFileName(entity string) string {
	return strings.ReplaceAll(entity, ".", "_") + ".json"
}

func marshalRecords(recs []Record) ([]byte, error) {
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// loadRecords parses a fixture file. Numbers are decoded as
// json.Number so an untouched value re-serializes byte-identically.
func loadRecords(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.UseNumber()
	var recs []Record
	if err := dec.Decode(&recs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return recs, nil
}

// saveRecords rewrites a fixture file in place: a backup snapshot of
// the prior contents is written first, then the new contents replace
// the original atomically.
func saveRecords(path string, recs []Record, backupSuffix string) error {
	if err := backupFile(path, backupSuffix); err != nil {
		return fmt.Errorf("backup %s: %w", path, err)
	}
	data, err := marshalRecords(recs)
	if err != nil {
		return fmt.Errorf("serialize %s: %w", path, err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// backupFile snapshots path's current contents to path+suffix.
// Repeated backups overwrite the previous one; only the last-prior
// state is retained.
func backupFile(path, suffix string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path+suffix, data, 0o644)
}

// writeFileAtomic writes data to path via a temp file in the same
// directory, syncs it, then renames it over the original so no reader
// can observe a partially written file. The temp file is removed on
// every failure path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
