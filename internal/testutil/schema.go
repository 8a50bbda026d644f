// Package testutil builds throwaway hotel-rating databases for tests.
package testutil

// Table names accepted by DB.Tables.
const (
	Hotel    = "hotel"
	Review   = "review"
	Rating   = "rating"
	Feature  = "feature"
	SeedWord = "seed_word"
)

// AllTables is the complete hotel-rating schema.
var AllTables = []string{Hotel, Review, Rating, Feature, SeedWord}

// DDL per dialect and table. Namespaced dialects (MySQL databases, Postgres
// schemas) expect the statement to run with that namespace as default.
var DDL = map[string]map[string]string{
	"sqlite": {
		Hotel: `CREATE TABLE hotel (
			hotel_id INTEGER PRIMARY KEY,
			hotel_name TEXT NOT NULL,
			city TEXT,
			country TEXT)`,
		Review: `CREATE TABLE review (
			review_id INTEGER PRIMARY KEY,
			hotel_id INTEGER NOT NULL,
			reviewer_name TEXT,
			review_text TEXT,
			review_date TIMESTAMP,
			overall_rating REAL)`,
		Rating: `CREATE TABLE rating (
			hotel_id INTEGER NOT NULL,
			feature_id INTEGER NOT NULL,
			score REAL,
			PRIMARY KEY (hotel_id, feature_id))`,
		Feature: `CREATE TABLE feature (
			feature_id INTEGER PRIMARY KEY,
			feature_name TEXT NOT NULL,
			is_active TEXT NOT NULL DEFAULT 'Y')`,
		SeedWord: `CREATE TABLE seed_word (
			seed_id INTEGER PRIMARY KEY,
			feature_id INTEGER NOT NULL,
			seed_phrase TEXT NOT NULL,
			weight INTEGER NOT NULL)`,
	},
	"mysql": {
		Hotel: `CREATE TABLE hotel (
			hotel_id BIGINT PRIMARY KEY,
			hotel_name VARCHAR(255) NOT NULL,
			city VARCHAR(128),
			country VARCHAR(128))`,
		Review: `CREATE TABLE review (
			review_id BIGINT PRIMARY KEY,
			hotel_id BIGINT NOT NULL,
			reviewer_name VARCHAR(255),
			review_text TEXT,
			review_date DATETIME,
			overall_rating DECIMAL(4,2))`,
		Rating: `CREATE TABLE rating (
			hotel_id BIGINT NOT NULL,
			feature_id BIGINT NOT NULL,
			score DECIMAL(4,2),
			PRIMARY KEY (hotel_id, feature_id))`,
		Feature: `CREATE TABLE feature (
			feature_id BIGINT PRIMARY KEY,
			feature_name VARCHAR(255) NOT NULL,
			is_active CHAR(1) NOT NULL DEFAULT 'Y')`,
		SeedWord: `CREATE TABLE seed_word (
			seed_id BIGINT PRIMARY KEY,
			feature_id BIGINT NOT NULL,
			seed_phrase VARCHAR(255) NOT NULL,
			weight INT NOT NULL)`,
	},
	"postgres": {
		Hotel: `CREATE TABLE hotel (
			hotel_id BIGINT PRIMARY KEY,
			hotel_name TEXT NOT NULL,
			city TEXT,
			country TEXT)`,
		Review: `CREATE TABLE review (
			review_id BIGINT PRIMARY KEY,
			hotel_id BIGINT NOT NULL,
			reviewer_name TEXT,
			review_text TEXT,
			review_date TIMESTAMP,
			overall_rating NUMERIC(4,2))`,
		Rating: `CREATE TABLE rating (
			hotel_id BIGINT NOT NULL,
			feature_id BIGINT NOT NULL,
			score NUMERIC(4,2),
			PRIMARY KEY (hotel_id, feature_id))`,
		Feature: `CREATE TABLE feature (
			feature_id BIGINT PRIMARY KEY,
			feature_name TEXT NOT NULL,
			is_active CHAR(1) NOT NULL DEFAULT 'Y')`,
		SeedWord: `CREATE TABLE seed_word (
			seed_id BIGINT PRIMARY KEY,
			feature_id BIGINT NOT NULL,
			seed_phrase TEXT NOT NULL,
			weight INT NOT NULL)`,
	},
}
