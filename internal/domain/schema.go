package domain

// Relational objects of the hotel-rating schema.
var (
	TableHotel    = MustIdent("hotel")
	TableReview   = MustIdent("review")
	TableRating   = MustIdent("rating")
	TableFeature  = MustIdent("feature")
	TableSeedWord = MustIdent("seed_word")
)

// ExpectedTables must both be visible for a namespace to qualify.
var ExpectedTables = []Ident{TableHotel, TableReview}

// SchemaTables lists every object query templates may reference.
var SchemaTables = []Ident{TableHotel, TableReview, TableRating, TableFeature, TableSeedWord}
