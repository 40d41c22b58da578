package domain

import "time"

type Review struct {
	ID          int64
	PlaceID     int64
	Fingerprint string // dedup key, unique per place
	Platform    *string
	Author      *string
	Rating      *int
	Lang        *string
	Comment     *string
	ReviewedAt  *time.Time
	RawJSON     []byte
}

// DuplicateFlag records an advisory near-duplicate hit: the incoming
// fingerprint and the stored review it resembled. Reviews are never deleted
// off the back of one of these; the rows exist for human review.
type DuplicateFlag struct {
	PlaceID     int64
	Fingerprint string
	MatchedID   int64
	Score       float64
}
