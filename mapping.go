package main

import "strconv"

// copyNull is the COPY-format encoding of SQL NULL in data cells.
const copyNull = `\N`

// defaultSchemaMapping reproduces the legacy migration's built-in
// table set. Config [tables.*] sections override or extend it.
func defaultSchemaMapping() SchemaMapping {
	return SchemaMapping{
		"_core_location": {Entity: "core.location", Columns: map[string]string{
			"id": "pk", "name": "name", "address": "address", "city": "city", "country": "country",
		}},
		"_core_divisionpool": {Entity: "games.divisionpool", Columns: map[string]string{
			"id": "pk", "name": "name", "description": "description",
		}},
		"_core_field": {Entity: "games.field", Columns: map[string]string{
			"id": "pk", "name": "name", "capacity": "capacity",
			"surface_type": "surface_type", "location_id": "location",
		}},
		"_core_gameround": {Entity: "games.gameround", Columns: map[string]string{
			"id": "pk", "name": "name", "start_date": "start_date", "end_date": "end_date",
		}},
		"_core_team": {Entity: "games.team", Columns: map[string]string{
			"id": "pk", "name": "name", "initial_seed": "initial_seed", "origin_id": "origin",
		}},
		"_core_player": {Entity: "games.player", Columns: map[string]string{
			"id": "pk", "name": "name",
			"spirit_award_nominations": "spirit_award_nominations",
			"mvp_nominations":          "mvp_nominations",
			"team_id":                  "team", "gender": "gender",
		}},
		// The legacy column names here are the modern ones; the first
		// fixture generation used the older field vocabulary, which the
		// games fixup later renames forward again.
		"_core_game": {Entity: "games.game", Columns: map[string]string{
			"id": "pk", "date": "start_time", "name": "name",
			"home_team_score": "team1_score", "away_team_score": "team2_score",
			"home_team_id": "team1", "away_team_id": "team2",
			"division_pool_id": "pool", "field_id": "field",
			"game_round_id": "game_round",
		}},
		"_core_scoring": {Entity: "games.scoring", Columns: map[string]string{
			"id": "pk", "goals": "goals", "assists": "assists",
			"game_id": "game", "player_id": "player",
		}},
		"_core_spiritscore": {Entity: "games.spiritscore", Columns: map[string]string{
			"id": "pk", "rules_knowledge": "rules_knowledge",
			"fouls_body_contact": "fouls_body_contact",
			"fair_mindedness":    "fair_mindedness",
			"attitude":           "attitude", "communication": "communication",
			"game_id": "game", "scored_by_id": "scored_by", "team_id": "team",
			"mvp_female_nomination_id":    "mvp_female_nomination",
			"mvp_male_nomination_id":      "mvp_male_nomination",
			"spirit_female_nomination_id": "spirit_female_nomination",
			"spirit_male_nomination_id":   "spirit_male_nomination",
		}},
		"_authman_user": {Entity: "authman.user", Columns: map[string]string{
			"id": "pk", "password": "password", "last_login": "last_login",
			"is_superuser": "is_superuser", "username": "username",
			"first_name": "first_name", "last_name": "last_name",
			"email": "email", "is_staff": "is_staff", "is_active": "is_active",
			"date_joined": "date_joined", "role": "role", "team_id": "team",
		}},
	}
}

// mapRow translates one raw dump row into a Record. Returns nil when
// the table has no registered mapping; that is intentional schema
// filtering, handled per policy by the caller, not an error.
//
// The primary key comes from the legacy "id" column when present,
// non-empty and numeric; otherwise it is left null. Empty and NULL
// cells are omitted from the fields map entirely. Legacy columns
// without a rename entry are dropped.
func mapRow(m SchemaMapping, table string, columns, cells []string) *Record {
	tm, ok := m[table]
	if !ok {
		return nil
	}

	row := make(map[string]string, len(columns))
	for i, col := range columns {
		if i < len(cells) {
			row[col] = cells[i]
		}
	}

	rec := &Record{Entity: tm.Entity, Fields: make(map[string]any)}
	if id := row["id"]; id != "" && isAllDigits(id) {
		if n, err := strconv.ParseInt(id, 10, 64); err == nil {
			rec.PK = &n
		}
	}

	for legacy, target := range tm.Columns {
		if legacy == "id" {
			continue
		}
		raw, present := row[legacy]
		if !present || raw == "" || raw == copyNull {
			continue
		}
		rec.Fields[target] = coerceValue(target, raw)
	}
	return rec
}
