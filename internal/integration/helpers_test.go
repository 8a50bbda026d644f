//go:build integration

package integration

import (
	"database/sql"
	"testing"

	"hotel_rating/internal/testutil"
)

// ---------- helpers ----------

var seed = []string{
	`INSERT INTO hotel VALUES (1, 'Grand Plaza', 'Paris', 'FR')`,
	`INSERT INTO hotel VALUES (2, 'Plaza Inn', 'Paris', 'FR')`,
	`INSERT INTO hotel VALUES (3, 'Quiet Rooms', 'Paris', 'FR')`,
	`INSERT INTO feature VALUES (1, 'Cleanliness', 'Y')`,
	`INSERT INTO feature VALUES (2, 'Service', 'Y')`,
	`INSERT INTO feature VALUES (3, 'Location', 'Y')`,
	`INSERT INTO feature VALUES (4, 'Comfort', 'Y')`,
	`INSERT INTO feature VALUES (5, 'Value', 'Y')`,
	`INSERT INTO feature VALUES (6, 'Wifi', 'Y')`,
	`INSERT INTO feature VALUES (7, 'Breakfast', 'N')`,
	`INSERT INTO rating VALUES (1, 1, 4.0)`,
	`INSERT INTO rating VALUES (1, 2, 5.0)`,
	`INSERT INTO rating VALUES (2, 1, 3.0)`,
	`INSERT INTO review VALUES (1, 1, 'Alice', 'Great stay', '2024-03-01 10:00:00', 5)`,
	`INSERT INTO review VALUES (2, 3, 'Bob', 'ok', '2024-01-01 09:00:00', 3)`,
	`INSERT INTO review VALUES (3, 3, NULL, 'good', '2024-01-02 09:00:00', 4)`,
	`INSERT INTO review VALUES (4, 3, 'Cara', 'good', '2024-01-03 09:00:00', 4)`,
}

// applySchema creates every table for dialect on db and loads the seed rows.
func applySchema(t *testing.T, db *sql.DB, dialect string) {
	t.Helper()
	for _, tbl := range testutil.AllTables {
		if _, err := db.Exec(testutil.DDL[dialect][tbl]); err != nil {
			t.Fatalf("create %s: %v", tbl, err)
		}
	}
	for _, s := range seed {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("seed %q: %v", s, err)
		}
	}
}

func mustExec(t *testing.T, db *sql.DB, stmts ...string) {
	t.Helper()
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("exec %q: %v", s, err)
		}
	}
}
