package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

const (
	superuserGroupID   = int64(1)
	teamManagerGroupID = int64(2)
	teamManagerRole    = "team_manager"
)

// userNormalizeFields are the authman.user fields the fixer rewrites
// to canonical form: role flags plus the two datetime columns.
var userNormalizeFields = []string{"is_superuser", "is_staff", "is_active", "last_login", "date_joined"}

// gameFieldRenames maps the first-generation fixture vocabulary for
// games.game to the field names the current schema expects.
var gameFieldRenames = map[string]string{
	"start_time":  "date",
	"team1":       "home_team",
	"team2":       "away_team",
	"team1_score": "home_team_score",
	"team2_score": "away_team_score",
	"pool":        "division_pool",
}

// runFixup executes the entity-specific repair passes in order. Each
// pass is independently idempotent and follows the same
// backup-then-atomic-rewrite discipline as the generic normalizer.
func runFixup(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(args)
	if err != nil {
		return err
	}
	dir := cfg.resolvePath(cfg.Output.Dir)
	log.Printf("fixferry — entity-specific fixture repair")

	steps := []struct {
		name string
		file string
		fn   func(path, backupSuffix string) (bool, error)
	}{
		{"users", fixtureFileName("authman.user"), fixupUsers},
		{"games", fixtureFileName("games.game"), fixupGames},
	}

	for _, step := range steps {
		path := filepath.Join(dir, step.file)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			log.Printf("  %s: no fixture file, skipping", step.name)
			continue
		}
		changed, err := step.fn(path, cfg.Output.BackupSuffix)
		if err != nil {
			return fmt.Errorf("fixup %s: %w", step.name, err)
		}
		if changed {
			log.Printf("  %s: repaired (backup at %s)", step.name, path+cfg.Output.BackupSuffix)
		} else {
			log.Printf("  %s: already canonical", step.name)
		}
	}
	return nil
}

// fixupUsers normalizes legacy authman.user records: boolean-string
// and naive-datetime fields become canonical, and group memberships
// are derived from role flags with set-union semantics — a superuser
// joins group 1, a team manager joins group 2, and repeated runs
// never introduce duplicates.
func fixupUsers(path, backupSuffix string) (bool, error) {
	recs, err := loadRecords(path)
	if err != nil {
		return false, err
	}

	changed := false
	for i := range recs {
		rec := &recs[i]
		if rec.Entity != "authman.user" {
			continue
		}
		for _, f := range userNormalizeFields {
			if nv, fixed := canonicalValue(f, rec.Fields[f]); fixed {
				rec.Fields[f] = nv
				changed = true
			}
		}

		groups := groupMembers(rec.Fields["groups"])
		want := groups
		if rec.Fields["is_superuser"] == true {
			want = unionGroup(want, superuserGroupID)
		}
		if role, _ := rec.Fields["role"].(string); role == teamManagerRole {
			want = unionGroup(want, teamManagerGroupID)
		}
		if len(want) != len(groups) {
			rec.Fields["groups"] = want
			changed = true
		}
	}

	if !changed {
		return false, nil
	}
	return true, saveRecords(path, recs, backupSuffix)
}

// fixupGames reshapes games.game records for the current schema:
// first-generation field names are renamed forward, game_round is
// coerced to an integer when possible, a space-separated date gains
// its T separator, and missing location/status get their defaults.
func fixupGames(path, backupSuffix string) (bool, error) {
	recs, err := loadRecords(path)
	if err != nil {
		return false, err
	}

	changed := false
	for i := range recs {
		rec := &recs[i]
		if rec.Entity != "games.game" {
			continue
		}
		for old, current := range gameFieldRenames {
			if v, ok := rec.Fields[old]; ok {
				delete(rec.Fields, old)
				rec.Fields[current] = v
				changed = true
			}
		}
		if s, ok := rec.Fields["game_round"].(string); ok {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				rec.Fields["game_round"] = n
				changed = true
			}
		}
		if s, ok := rec.Fields["date"].(string); ok && !strings.Contains(s, "T") && strings.Contains(s, " ") {
			rec.Fields["date"] = strings.ReplaceAll(s, " ", "T")
			changed = true
		}
		if _, ok := rec.Fields["location"]; !ok {
			rec.Fields["location"] = int64(1)
			changed = true
		}
		if _, ok := rec.Fields["status"]; !ok {
			rec.Fields["status"] = "completed"
			changed = true
		}
	}

	if !changed {
		return false, nil
	}
	return true, saveRecords(path, recs, backupSuffix)
}

// groupMembers converts a decoded groups value into a plain id list.
func groupMembers(v any) []int64 {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]int64, 0, len(list))
	for _, e := range list {
		switch n := e.(type) {
		case json.Number:
			if i, err := n.Int64(); err == nil {
				out = append(out, i)
			}
		case int64:
			out = append(out, n)
		case float64:
			out = append(out, int64(n))
		}
	}
	return out
}

// unionGroup adds id to groups unless it is already a member.
func unionGroup(groups []int64, id int64) []int64 {
	for _, g := range groups {
		if g == id {
			return groups
		}
	}
	return append(groups, id)
}
