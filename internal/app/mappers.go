package app

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"reviewsvisor/internal/dedupe"
	"reviewsvisor/internal/domain"
)

/********** alias registries (single source of truth) **********/

// Review platforms disagree on field names; these registries encode the
// variants seen in the wild, tried in order.
var reviewAliases = map[string][]string{
	"author":       {"author", "name", "userName", "reviewer", "reviewer.name"},
	"author_first": {"first_name", "firstname", "user.first_name", "user.firstName"},
	"author_last":  {"last_name", "lastname", "user.last_name", "user.lastName"},
	"comment":      {"comment", "text", "review_text", "review", "content", "body", "message"},
	"lang":         {"lang", "language", "language_code", "languageCode", "locale"},
	"platform":     {"platform", "source", "provider", "site", "origin"},
	"rating":       {"rating", "rate", "score", "rating.value", "stars"},
	"date":         {"review_date", "reviewDate", "date", "published_at", "publishedAt", "created_at", "createdAt", "time"},
}

var placeAliases = map[string][]string{
	"source_id": {"place_id", "placeId", "id"},
	"name":      {"name", "place_name", "title"},
	"country":   {"address.country", "country", "countryCode", "country_code"},
	"city":      {"address.city", "city", "locality", "town"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) *string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return &s
		}
	}
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func joinNonEmpty(parts ...string) string {
	var out []string
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, " ")
}

// getFloatFlexible: number from several paths (float64/int/string like "4,0").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// firstInt64Flexible: int64 from several paths (float64/int/string).
func firstInt64Flexible(m map[string]any, paths ...string) *int64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			x := int64(v)
			return &x
		case int:
			x := int64(v)
			return &x
		case int64:
			x := v
			return &x
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				continue
			}
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return &n
			}
		}
	}
	return nil
}

/********** place mapper **********/

func mapPlace(id int64, p map[string]any) domain.Place {
	raw, err := json.Marshal(p)
	if err != nil {
		log.Error().Err(err).Str("context", "mapPlace").Msg("failed to marshal place to JSON")
	}

	return domain.Place{
		ID:       id,
		SourceID: firstNonEmptyAlias(p, placeAliases, "source_id"),
		Name:     firstNonEmptyAlias(p, placeAliases, "name"),
		Country:  firstNonEmptyAlias(p, placeAliases, "country"),
		City:     firstNonEmptyAlias(p, placeAliases, "city"),
		Lat:      getFloatFlexible(p, "latitude", "lat", "location.lat"),
		Lon:      getFloatFlexible(p, "longitude", "lon", "lng", "location.lon", "location.lng"),
		RawJSON:  raw,
	}
}

/********** reviews mapper **********/

func mapReviews(placeID int64, in []map[string]any) []domain.Review {
	out := make([]domain.Review, 0, len(in))
	for _, r := range in {
		var rv domain.Review
		rv.PlaceID = placeID

		// Author: prefer single field; fall back to first + last.
		if s := firstNonEmptyAlias(r, reviewAliases, "author"); s != nil {
			rv.Author = s
		} else {
			first := firstNonEmptyAlias(r, reviewAliases, "author_first")
			last := firstNonEmptyAlias(r, reviewAliases, "author_last")
			if first != nil || last != nil {
				full := strings.TrimSpace(joinNonEmpty(deref(first), deref(last)))
				if full != "" {
					rv.Author = &full
				}
			}
		}

		if s := firstNonEmptyAlias(r, reviewAliases, "comment"); s != nil {
			rv.Comment = s
		}
		if s := firstNonEmptyAlias(r, reviewAliases, "lang"); s != nil {
			rv.Lang = s
		}
		if s := firstNonEmptyAlias(r, reviewAliases, "platform"); s != nil {
			rv.Platform = s
		}

		if f := getFloatFlexible(r, reviewAliases["rating"]...); f != nil {
			n := int(*f)
			rv.Rating = &n
		}

		if s := firstNonEmptyAlias(r, reviewAliases, "date"); s != nil {
			if t := dedupe.ParseDate(*s); !t.IsZero() {
				rv.ReviewedAt = &t
			}
		}

		if raw, err := json.Marshal(r); err == nil {
			rv.RawJSON = raw
		} else {
			log.Error().Err(err).Str("context", "mapReviews").Msg("marshal review failed")
		}

		out = append(out, rv)
	}
	return out
}

/********** dedupe bridge **********/

// recordOf projects the fields the dedup core reads out of a domain review.
func recordOf(rv domain.Review) dedupe.Record {
	rec := dedupe.Record{
		Platform: deref(rv.Platform),
		Author:   deref(rv.Author),
		Comment:  deref(rv.Comment),
	}
	if rv.Rating != nil {
		rec.Rating = *rv.Rating
	}
	if rv.ReviewedAt != nil {
		rec.ReviewedAt = *rv.ReviewedAt
	}
	return rec
}

// dedupeReviews runs the in-batch dedup over domain reviews: every review
// gets its fingerprint, the first occurrence of each fingerprint survives in
// input order.
func dedupeReviews(revs []domain.Review) ([]domain.Review, dedupe.Stats) {
	records := make([]dedupe.Record, len(revs))
	for i, rv := range revs {
		records[i] = recordOf(rv)
	}
	keyed, stats := dedupe.BatchStats(records)

	// First writer wins, matching the core's first-occurrence rule.
	byFP := make(map[string]domain.Review, len(revs))
	for i, rv := range revs {
		fp := dedupe.Fingerprint(records[i])
		if _, ok := byFP[fp]; !ok {
			rv.Fingerprint = fp
			byFP[fp] = rv
		}
	}

	out := make([]domain.Review, 0, len(keyed))
	for _, k := range keyed {
		out = append(out, byFP[k.Fingerprint])
	}
	return out, stats
}
