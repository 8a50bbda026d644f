package hotels_test

import (
	"fmt"
	"testing"

	"hotel_rating/internal/testutil"
)

var seed = []string{
	`INSERT INTO hotel VALUES (1, 'Grand Plaza', 'Paris', 'FR')`,
	`INSERT INTO hotel VALUES (2, 'Plaza Inn', 'Paris', 'FR')`,
	`INSERT INTO hotel VALUES (3, 'Seaside Hotel', 'Nice', 'FR')`,
	`INSERT INTO hotel VALUES (4, 'Quiet Rooms', 'paris', 'FR')`,
	`INSERT INTO hotel VALUES (5, 'Empty House', 'Paris', 'FR')`,

	`INSERT INTO feature VALUES (1, 'Cleanliness', 'Y')`,
	`INSERT INTO feature VALUES (2, 'Staff Service', 'Y')`,
	`INSERT INTO feature VALUES (3, 'Location', 'Y')`,
	`INSERT INTO feature VALUES (4, 'Room Comfort', 'Y')`,
	`INSERT INTO feature VALUES (5, 'Value for money', 'Y')`,
	`INSERT INTO feature VALUES (6, 'Wifi', 'Y')`,
	`INSERT INTO feature VALUES (7, 'Breakfast', 'N')`,

	`INSERT INTO rating VALUES (1, 1, 4.0)`,
	`INSERT INTO rating VALUES (1, 2, 5.0)`,
	`INSERT INTO rating VALUES (2, 1, 3.0)`,
	`INSERT INTO rating VALUES (2, 3, 4.0)`,
	`INSERT INTO rating VALUES (2, 6, 5.0)`,
	`INSERT INTO rating VALUES (3, 1, 4.5)`,

	`INSERT INTO review VALUES (1, 1, 'Alice', 'Great stay', '2024-03-01 10:00:00', 5)`,
	`INSERT INTO review VALUES (2, 1, NULL, 'Fine', '2024-04-01 10:00:00', NULL)`,
	`INSERT INTO review VALUES (3, 4, 'Bob', 'ok', '2024-01-01 09:00:00', 3)`,
	`INSERT INTO review VALUES (4, 4, '  ', 'good', '2024-01-02 09:00:00', 4)`,
	`INSERT INTO review VALUES (5, 4, 'Cara', 'good', '2024-01-03 09:00:00', 4)`,
}

// hotelier returns a session resolved to the attached "hotelier" namespace,
// with an empty main database.
func hotelier(t *testing.T, extra ...string) *testutil.Fixture {
	t.Helper()
	f := testutil.SQLite(t, testutil.DB{}, map[string]testutil.DB{
		"hotelier": testutil.Full(append(append([]string{}, seed...), extra...)...),
	})
	f.Resolve(t, testutil.Attached("hotelier"))
	return f
}

func manyReviews(hotelID, n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, fmt.Sprintf(
			`INSERT INTO review VALUES (%d, %d, 'R%d', 'txt', '2023-%02d-%02d 12:00:00', 4)`,
			1000+i, hotelID, i, 1+i%12, 1+i%28))
	}
	return out
}
