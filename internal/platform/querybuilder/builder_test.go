package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "slug").
		From("teams").
		Where(Eq("conference", "Big Ten"), Expr("logo_url IS NULL")).
		OrderBy("name").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, slug FROM teams WHERE conference = $1 AND logo_url IS NULL ORDER BY name LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "Big Ten" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_OrCondition(t *testing.T) {
	query, args, err := Select("*").
		From("games").
		Where(
			Or(Eq("home_team_id", int64(4)), Eq("away_team_id", int64(4))),
			Eq("season", 2025),
		).
		OrderBy("date NULLS LAST", "id").
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT * FROM games WHERE (home_team_id = $1 OR away_team_id = $2) AND season = $3 ORDER BY date NULLS LAST, id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != int64(4) || args[1] != int64(4) || args[2] != 2025 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_EmptyOrMatchesNothing(t *testing.T) {
	query, args, err := Select("id").From("teams").Where(Or()).ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM teams WHERE 1=0"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 0 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_ExprAndEqFold(t *testing.T) {
	query, args, err := Select("id").
		From("teams").
		Where(EqFold("conference", "big ten"), Expr("slug = ? OR name = ? OR ?", "iowa", "Iowa")).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM teams WHERE lower(conference) = lower($1) AND slug = $2 OR name = $3 OR ?"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "big ten" || args[2] != "Iowa" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("teams").
		Columns("slug", "name").
		Values("iowa", "Iowa").
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO teams (slug, name) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "iowa" || args[1] != "Iowa" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModel(t *testing.T) {
	type gameInsert struct {
		ExternalID string  `db:"external_id"`
		Venue      *string `db:"venue"`
		internal   string
		Skipped    string `db:"-"`
	}

	query, args, err := InsertModel("games", gameInsert{ExternalID: "401", internal: "x", Skipped: "y"}, "ON CONFLICT (external_id) DO NOTHING")
	if err != nil {
		t.Fatalf("build insert model query: %v", err)
	}

	wantQuery := "INSERT INTO games (external_id, venue) VALUES ($1, $2) ON CONFLICT (external_id) DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "401" {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := InsertModel("games", (*gameInsert)(nil), ""); err == nil {
		t.Fatalf("expected error for nil model")
	}
	if _, _, err := InsertInto("games").Columns("external_id", "venue").Values("401").ToSQL(); err == nil {
		t.Fatalf("expected error for column and value mismatch")
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("teams").
		Set("name", "Iowa Hawkeyes").
		SetExpr("updated_at", "NOW()").
		Where(Eq("id", int64(4))).
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE teams SET name = $1, updated_at = NOW() WHERE id = $2 RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "Iowa Hawkeyes" || args[1] != int64(4) {
		t.Fatalf("unexpected args: %+v", args)
	}
}
