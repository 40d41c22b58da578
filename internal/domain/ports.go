package domain

import "context"

type ReviewRepository interface {
	// Write paths
	UpsertPlace(ctx context.Context, p Place) error
	// InsertReviews is insert-if-absent keyed by (place_id, fingerprint):
	// the stored row wins on conflict, NULL columns may be backfilled.
	InsertReviews(ctx context.Context, rs []Review) error
	// ExistingFingerprints returns which of the candidate fingerprints are
	// already stored for the place.
	ExistingFingerprints(ctx context.Context, placeID int64, candidates []string) (map[string]struct{}, error)
	LogNearDuplicate(ctx context.Context, f DuplicateFlag) error
	LogMiss(ctx context.Context, placeID int64, status int, reason string) error

	// Read paths
	GetPlace(ctx context.Context, id int64) (PlaceView, error)
	ListPlaces(ctx context.Context, q PlacesQuery) (PlacesPage, error)
	ListReviews(ctx context.Context, placeID int64, pg PageQuery) (ReviewsPage, error)
	// RecentReviews backs the near-duplicate screen: the newest stored
	// reviews for the place, capped at limit.
	RecentReviews(ctx context.Context, placeID int64, limit int) ([]Review, error)
}

// SourceClient is the outbound reviews-platform API.
type SourceClient interface {
	GetPlace(ctx context.Context, id int64) (map[string]any, error)
	GetReviews(ctx context.Context, id int64, count int) ([]map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Read models & queries
type PlaceView struct {
	ID          int64
	Name        *string
	Country     *string
	City        *string
	Coords      *Coords
	ReviewCount int
	AvgRating   *float64
}

type Coords struct{ Lat, Lon float64 }

type PlacesQuery struct {
	Q             *string
	Country, City *string
	Limit         int
	Cursor        *string
}

type PageQuery struct {
	Limit  int
	Cursor *string
	Sort   string
}

type PlacesPage struct {
	Items      []PlaceView
	NextCursor *string
}

type ReviewsPage struct {
	Items      []Review
	NextCursor *string
}
