package main

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// intValue collapses json.Number into int64 so loaded fixtures can be
// compared against literal expectations.
func intValue(v any) any {
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i
		}
	}
	return v
}

func TestFixupUsers(t *testing.T) {
	path := writeFixture(t, "authman_user.json", []Record{
		{Entity: "authman.user", PK: int64p(1), Fields: map[string]any{
			"username":     "root",
			"is_superuser": "1",
			"is_staff":     "True",
			"last_login":   "2026-07-01 10:00:00",
			"role":         "team_manager",
		}},
		{Entity: "authman.user", PK: int64p(2), Fields: map[string]any{
			"username":  "fan",
			"is_active": true,
		}},
	})

	changed, err := fixupUsers(path, ".bak")
	if err != nil {
		t.Fatalf("fixupUsers() error: %v", err)
	}
	if !changed {
		t.Fatal("fixupUsers() changed = false, want true")
	}

	recs, err := loadRecords(path)
	if err != nil {
		t.Fatal(err)
	}

	admin := recs[0].Fields
	if admin["is_superuser"] != true || admin["is_staff"] != true {
		t.Errorf("booleans not normalized: %v", admin)
	}
	if admin["last_login"] != "2026-07-01T10:00:00Z" {
		t.Errorf("last_login = %v, want 2026-07-01T10:00:00Z", admin["last_login"])
	}
	wantGroups := []int64{superuserGroupID, teamManagerGroupID}
	if diff := cmp.Diff(wantGroups, groupMembers(admin["groups"])); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}

	// No role flags: groups stays absent, not an empty list.
	if _, present := recs[1].Fields["groups"]; present {
		t.Errorf("fan gained groups: %v", recs[1].Fields["groups"])
	}

	// Second run is a no-op and introduces no duplicate group ids.
	changed, err = fixupUsers(path, ".bak")
	if err != nil {
		t.Fatalf("fixupUsers() second run error: %v", err)
	}
	if changed {
		t.Error("fixupUsers() second run changed = true, want false")
	}
	recs, err = loadRecords(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(wantGroups, groupMembers(recs[0].Fields["groups"])); diff != "" {
		t.Errorf("groups after second run (-want +got):\n%s", diff)
	}
}

func TestFixupUsers_ExistingGroups(t *testing.T) {
	path := writeFixture(t, "authman_user.json", []Record{
		{Entity: "authman.user", PK: int64p(1), Fields: map[string]any{
			"is_superuser": true,
			"role":         "team_manager",
			"groups":       []any{int64(1)},
		}},
	})

	changed, err := fixupUsers(path, ".bak")
	if err != nil {
		t.Fatalf("fixupUsers() error: %v", err)
	}
	if !changed {
		t.Fatal("fixupUsers() changed = false, want true")
	}
	recs, err := loadRecords(path)
	if err != nil {
		t.Fatal(err)
	}
	got := groupMembers(recs[0].Fields["groups"])
	if diff := cmp.Diff([]int64{1, 2}, got); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
}

func TestFixupUsers_IgnoresOtherEntities(t *testing.T) {
	path := writeFixture(t, "mixed.json", []Record{
		{Entity: "games.team", PK: int64p(1), Fields: map[string]any{"is_active": "1"}},
	})
	changed, err := fixupUsers(path, ".bak")
	if err != nil {
		t.Fatalf("fixupUsers() error: %v", err)
	}
	if changed {
		t.Error("fixupUsers() touched a non-user record")
	}
}

func TestFixupGames(t *testing.T) {
	path := writeFixture(t, "games_game.json", []Record{
		{Entity: "games.game", PK: int64p(10), Fields: map[string]any{
			"start_time":  "2026-07-01 10:00:00",
			"team1":       int64(1),
			"team2":       int64(2),
			"team1_score": int64(15),
			"team2_score": int64(11),
			"pool":        int64(3),
			"game_round":  "4",
		}},
	})

	changed, err := fixupGames(path, ".bak")
	if err != nil {
		t.Fatalf("fixupGames() error: %v", err)
	}
	if !changed {
		t.Fatal("fixupGames() changed = false, want true")
	}

	recs, err := loadRecords(path)
	if err != nil {
		t.Fatal(err)
	}
	fields := recs[0].Fields

	for _, old := range []string{"start_time", "team1", "team2", "team1_score", "team2_score", "pool"} {
		if _, present := fields[old]; present {
			t.Errorf("legacy field %q still present", old)
		}
	}
	want := map[string]any{
		"date":            "2026-07-01T10:00:00",
		"home_team":       int64(1),
		"away_team":       int64(2),
		"home_team_score": int64(15),
		"away_team_score": int64(11),
		"division_pool":   int64(3),
		"game_round":      int64(4),
		"location":        int64(1),
		"status":          "completed",
	}
	got := make(map[string]any, len(fields))
	for k, v := range fields {
		got[k] = intValue(v)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}

	// Second run is a strict no-op.
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	changed, err = fixupGames(path, ".bak")
	if err != nil {
		t.Fatalf("fixupGames() second run error: %v", err)
	}
	if changed {
		t.Error("fixupGames() second run changed = true, want false")
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("second run altered file contents")
	}
}

func TestUnionGroup(t *testing.T) {
	got := unionGroup([]int64{1, 2}, 2)
	if diff := cmp.Diff([]int64{1, 2}, got); diff != "" {
		t.Errorf("unionGroup existing member (-want +got):\n%s", diff)
	}
	got = unionGroup([]int64{1}, 2)
	if diff := cmp.Diff([]int64{1, 2}, got); diff != "" {
		t.Errorf("unionGroup new member (-want +got):\n%s", diff)
	}
	got = unionGroup(nil, 1)
	if diff := cmp.Diff([]int64{1}, got); diff != "" {
		t.Errorf("unionGroup nil list (-want +got):\n%s", diff)
	}
}
