package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// emitSQLite writes all migrated records into a local SQLite file so
// operators can run ad-hoc SQL over the data before loading it. One
// table per entity ("games.game" → games_game) with the fields map
// stored as a JSON text column. The file is recreated on every run.
func emitSQLite(path string, entities []string, grouped map[string][]Record) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale inspection db: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	for _, entity := range entities {
		recs := grouped[entity]
		if len(recs) == 0 {
			continue
		}
		table := strings.ReplaceAll(entity, ".", "_")
		if _, err := db.Exec(fmt.Sprintf(`CREATE TABLE "%s" (pk INTEGER, fields TEXT NOT NULL)`, table)); err != nil {
			return fmt.Errorf("create table %s: %w", table, err)
		}
		if err := insertRecords(db, table, recs); err != nil {
			return err
		}
		log.Printf("  inspection db: %s (%d rows)", table, len(recs))
	}
	return nil
}

func insertRecords(db *sql.DB, table string, recs []Record) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin %s: %w", table, err)
	}
	stmt, err := tx.Prepare(fmt.Sprintf(`INSERT INTO "%s" (pk, fields) VALUES (?, ?)`, table))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare %s: %w", table, err)
	}

	for _, rec := range recs {
		fields, err := json.Marshal(rec.Fields)
		if err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("serialize fields for %s: %w", table, err)
		}
		var pk any
		if rec.PK != nil {
			pk = *rec.PK
		}
		if _, err := stmt.Exec(pk, string(fields)); err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	stmt.Close()
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", table, err)
	}
	return nil
}
