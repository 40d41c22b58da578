package dedupe

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"time"
)

// Sentinels applied when a field is missing. One canonical convention is
// used everywhere so client- and server-side callers produce identical keys.
const (
	sentinelAuthor   = "Anonyme"
	sentinelPlatform = "manual"
)

// Record is the immutable input of the dedup core: one incoming review as
// parsed by a caller (platform payload, CSV row, pasted block). A zero
// ReviewedAt means the date is unknown.
type Record struct {
	Platform   string
	Author     string
	Rating     int
	Comment    string
	ReviewedAt time.Time
}

// Fingerprint derives the stable dedup key for r.
//
// The payload is platform|author|rating|comment when a normalized comment is
// present: free text is the strongest discriminator, and the same
// author/rating/platform can legitimately recur across dates. Without a
// comment the date (UTC day, empty when unknown) stands in, so two terse
// reviews from different days by the same author do not collide. Two textless
// reviews with no usable date at all do collide; that false positive is
// accepted.
//
// The hash is FNV-32a rendered as h<hex>: fast, deterministic, identical in
// every runtime, and deliberately not cryptographic.
func Fingerprint(r Record) string {
	platform := Normalize(r.Platform)
	if platform == "" {
		platform = Normalize(sentinelPlatform)
	}
	author := Normalize(r.Author)
	if author == "" {
		author = Normalize(sentinelAuthor)
	}
	rating := strconv.Itoa(r.Rating)

	last := Normalize(r.Comment)
	if last == "" {
		if !r.ReviewedAt.IsZero() {
			last = r.ReviewedAt.UTC().Format("2006-01-02")
		}
	}

	payload := strings.Join([]string{platform, author, rating, last}, "|")
	h := fnv.New32a()
	_, _ = h.Write([]byte(payload))
	return fmt.Sprintf("h%08x", h.Sum32())
}
