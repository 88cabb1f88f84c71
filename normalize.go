package main

import (
	"fmt"
	"log"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var (
	// Naive timestamp as dumped by the legacy database: date and time
	// joined by a space, optional fractional seconds, no zone.
	naiveTimestampRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d+)?$`)
	// ISO date-time that already uses T but carries no zone or offset.
	noZoneTimestampRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?$`)
)

// canonicalValue rewrites one field value to its canonical form,
// reporting whether it changed. Both timestamp patterns are anchored
// full matches, so a value rewritten once can never match again.
// Non-string values are already canonical and pass through untouched.
func canonicalValue(field string, val any) (any, bool) {
	s, ok := val.(string)
	if !ok {
		return val, false
	}
	switch {
	case naiveTimestampRe.MatchString(s):
		return strings.Replace(s, " ", "T", 1) + "Z", true
	case noZoneTimestampRe.MatchString(s):
		return s + "Z", true
	case booleanFields[field]:
		if b, boolLike := parseBooleanLike(s); boolLike {
			return b, true
		}
	}
	return val, false
}

// normalizeFile runs the idempotent repair pass over one fixture
// file: naive timestamps and boolean-like strings are rewritten to
// canonical form, and records whose entity is unknown to the current
// mapping are reported as schema drift (never auto-fixed). When at
// least one field changed, a backup of the prior contents is written
// and the file is replaced atomically; otherwise the file is left
// untouched. Returns whether the file changed.
func normalizeFile(path, backupSuffix string, knownEntities map[string]bool) (bool, error) {
	recs, err := loadRecords(path)
	if err != nil {
		return false, err
	}

	changed := false
	for i := range recs {
		rec := &recs[i]
		if !knownEntities[rec.Entity] {
			log.Printf("  WARN: %s: record pk=%s has unknown entity %q (schema drift?)",
				filepath.Base(path), fmtPK(rec.PK), rec.Entity)
		}
		for field, val := range rec.Fields {
			nv, fixed := canonicalValue(field, val)
			if !fixed {
				continue
			}
			rec.Fields[field] = nv
			changed = true
			log.Printf("  fixed %s pk=%s field=%s", rec.Entity, fmtPK(rec.PK), field)
		}
	}

	if !changed {
		return false, nil
	}
	if err := saveRecords(path, recs, backupSuffix); err != nil {
		return false, err
	}
	return true, nil
}

// normalizeDir runs normalizeFile over every fixture file in dir, in
// stable name order. Backup files are skipped.
func normalizeDir(dir, backupSuffix string, knownEntities map[string]bool) error {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return fmt.Errorf("list fixtures: %w", err)
	}
	sort.Strings(paths)

	for _, path := range paths {
		changed, err := normalizeFile(path, backupSuffix, knownEntities)
		if err != nil {
			return fmt.Errorf("normalize %s: %w", path, err)
		}
		if changed {
			log.Printf("%s: repaired (backup at %s)", path, path+backupSuffix)
		} else {
			log.Printf("%s: already canonical", path)
		}
	}
	return nil
}

func fmtPK(pk *int64) string {
	if pk == nil {
		return "null"
	}
	return fmt.Sprintf("%d", *pk)
}
