package domain

import "context"

type SessionManager interface {
	Validate(ctx context.Context, d ConnectionDescriptor) error
	Elevate(ctx context.Context, systemPassword string) error
	Restore(ctx context.Context) error
	Status() SessionStatus
}

type CapabilityResolver interface {
	Resolve(ctx context.Context) SchemaCapability
}

// Read paths
type RatingReader interface {
	GetRating(ctx context.Context, nameFragment string) (HotelRating, error)
	ListByCity(ctx context.Context, city string) ([]HotelListItem, error)
	GetReviews(ctx context.Context, hotelName string) ([]HotelReview, error)
	Cities(ctx context.Context) ([]string, error)
	HotelsByCity(ctx context.Context, city string) ([]string, error)
}

type HotelSearcher interface {
	Search(ctx context.Context, city string, criteria SearchCriteria) ([]HotelRating, error)
}

type SchemaExplorer interface {
	Namespaces(ctx context.Context) ([]NamespaceTables, error)
	TableData(ctx context.Context, namespace, table string) (TableData, error)
}

// Write paths
type AdminWriter interface {
	AddFeature(ctx context.Context, name string) (int64, error)
	AddSeedWord(ctx context.Context, featureName, phrase string, weight int) (int64, error)
	ActiveFeatures(ctx context.Context) ([]string, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
