package app

import (
	"testing"
	"time"

	"reviewsvisor/internal/domain"
)

func strp(s string) *string { return &s }

func TestMapReviews_AliasResolution(t *testing.T) {
	in := []map[string]any{
		{
			"reviewer":     map[string]any{"name": "Marie L."},
			"review_text":  "Excellent !",
			"score":        "4,0",
			"provider":     "google",
			"published_at": "2024-03-01",
		},
		{
			"first_name": "Jean",
			"last_name":  "Dupont",
			"comment":    "Correct",
			"rating":     3.0,
		},
	}
	out := mapReviews(7, in)
	if len(out) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(out))
	}

	first := out[0]
	if first.PlaceID != 7 {
		t.Fatalf("place id: %d", first.PlaceID)
	}
	if first.Author == nil || *first.Author != "Marie L." {
		t.Fatalf("author: %v", first.Author)
	}
	if first.Comment == nil || *first.Comment != "Excellent !" {
		t.Fatalf("comment: %v", first.Comment)
	}
	if first.Rating == nil || *first.Rating != 4 {
		t.Fatalf("rating: %v", first.Rating)
	}
	if first.Platform == nil || *first.Platform != "google" {
		t.Fatalf("platform: %v", first.Platform)
	}
	if first.ReviewedAt == nil || !first.ReviewedAt.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("reviewed_at: %v", first.ReviewedAt)
	}
	if len(first.RawJSON) == 0 {
		t.Fatalf("raw payload should be preserved")
	}

	second := out[1]
	if second.Author == nil || *second.Author != "Jean Dupont" {
		t.Fatalf("composed author: %v", second.Author)
	}
	if second.ReviewedAt != nil {
		t.Fatalf("no date expected, got %v", second.ReviewedAt)
	}
}

func TestMapPlace(t *testing.T) {
	p := mapPlace(7, map[string]any{
		"place_id": "ChIJ123",
		"name":     "Le Bistrot",
		"address":  map[string]any{"city": "Lyon", "country": "FR"},
		"location": map[string]any{"lat": 45.76, "lng": 4.83},
	})
	if p.ID != 7 {
		t.Fatalf("id: %d", p.ID)
	}
	if p.SourceID == nil || *p.SourceID != "ChIJ123" {
		t.Fatalf("source id: %v", p.SourceID)
	}
	if p.City == nil || *p.City != "Lyon" || p.Country == nil || *p.Country != "FR" {
		t.Fatalf("address: %v %v", p.City, p.Country)
	}
	if p.Lat == nil || *p.Lat != 45.76 || p.Lon == nil || *p.Lon != 4.83 {
		t.Fatalf("coords: %v %v", p.Lat, p.Lon)
	}
}

func TestDedupeReviews_OrderAndFingerprints(t *testing.T) {
	revs := []domain.Review{
		{PlaceID: 1, Platform: strp("google"), Author: strp("Marie"), Rating: pint(5), Comment: strp("Excellent !")},
		{PlaceID: 1, Platform: strp("google"), Author: strp("Paul"), Rating: pint(3), Comment: strp("Bof")},
		{PlaceID: 1, Platform: strp("Google"), Author: strp("marie"), Rating: pint(5), Comment: strp("excellent")},
	}
	out, stats := dedupeReviews(revs)
	if len(out) != 2 || stats.Duplicates != 1 {
		t.Fatalf("unexpected: %d kept, %+v", len(out), stats)
	}
	if *out[0].Author != "Marie" || *out[1].Author != "Paul" {
		t.Fatalf("order not preserved: %+v", out)
	}
	for _, rv := range out {
		if rv.Fingerprint == "" {
			t.Fatalf("missing fingerprint on %+v", rv)
		}
	}
	if out[0].Fingerprint == out[1].Fingerprint {
		t.Fatalf("distinct reviews share a fingerprint")
	}
}

func pint(n int) *int { return &n }
