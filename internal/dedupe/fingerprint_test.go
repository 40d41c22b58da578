package dedupe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint_Deterministic(t *testing.T) {
	r := Record{Platform: "google", Author: "Marie L.", Rating: 5, Comment: "Excellent !"}
	assert.Equal(t, Fingerprint(r), Fingerprint(r))
	assert.NotEmpty(t, Fingerprint(Record{}))
}

func TestFingerprint_NormalizationEquivalence(t *testing.T) {
	a := Record{Platform: "Google", Author: "Jean Dupont", Rating: 5, Comment: "Très bon accueil!"}
	b := Record{Platform: "google", Author: "jean   dupont", Rating: 5, Comment: "tres bon accueil"}
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprint_RatingDiscriminates(t *testing.T) {
	a := Record{Platform: "google", Author: "Jean", Rating: 5, Comment: "correct"}
	b := a
	b.Rating = 4
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprint_DateOnlyWithoutComment(t *testing.T) {
	march := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	april := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)

	// No comment: the date discriminates.
	a := Record{Platform: "google", Author: "Paul", Rating: 3, ReviewedAt: march}
	b := Record{Platform: "google", Author: "Paul", Rating: 3, ReviewedAt: april}
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))

	// Same records with equivalent comments: the date is ignored.
	a.Comment = "Séjour agréable."
	b.Comment = "sejour agreable"
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprint_DateIsUTCDay(t *testing.T) {
	paris := time.FixedZone("CET", 3600)
	// 00:30 CET on March 2nd is still March 1st in UTC.
	local := time.Date(2024, 3, 2, 0, 30, 0, 0, paris)
	utc := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)
	a := Record{Author: "Paul", Rating: 3, ReviewedAt: local}
	b := Record{Author: "Paul", Rating: 3, ReviewedAt: utc}
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprint_Sentinels(t *testing.T) {
	// Missing author and platform fall back to sentinels, not to empty
	// components: an explicitly matching record produces the same key.
	anon := Record{Rating: 5, Comment: "parfait"}
	named := Record{Platform: "Manual", Author: "Anonyme", Rating: 5, Comment: "parfait"}
	assert.Equal(t, Fingerprint(anon), Fingerprint(named))
}

func TestFingerprint_NoDateNoComment(t *testing.T) {
	// Accepted false positive: textless, dateless records with the same
	// author/rating/platform collide.
	a := Record{Platform: "google", Author: "Paul", Rating: 3}
	b := Record{Platform: "google", Author: "Paul", Rating: 3}
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}
