package mysql

const upsertPlaceSQL = `
INSERT INTO places
  (id, source_id, name, country, city, lat, lon, raw)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  source_id  = VALUES(source_id),
  name       = VALUES(name),
  country    = VALUES(country),
  city       = VALUES(city),
  lat        = VALUES(lat),
  lon        = VALUES(lon),
  raw        = VALUES(raw),
  updated_at = CURRENT_TIMESTAMP
`

const insertReviewsPrefix = "INSERT INTO reviews\n  (place_id, fingerprint, platform, author, rating, lang, comment, reviewed_at, raw)\nVALUES "

// Insert-if-absent on the (place_id, fingerprint) unique key: the stored row
// wins, COALESCE only backfills columns the stored row left NULL.
const insertReviewsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  platform    = COALESCE(reviews.platform, VALUES(platform)),\n" +
	"  author      = COALESCE(reviews.author, VALUES(author)),\n" +
	"  rating      = COALESCE(reviews.rating, VALUES(rating)),\n" +
	"  lang        = COALESCE(reviews.lang, VALUES(lang)),\n" +
	"  comment     = COALESCE(reviews.comment, VALUES(comment)),\n" +
	"  reviewed_at = COALESCE(reviews.reviewed_at, VALUES(reviewed_at)),\n" +
	"  raw         = COALESCE(reviews.raw, VALUES(raw))\n"

const existingFingerprintsPrefix = `SELECT fingerprint FROM reviews WHERE place_id = ? AND fingerprint IN `

const insertDuplicateSQL = `
INSERT INTO review_duplicates (place_id, fingerprint, matched_review_id, score)
VALUES (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE score = VALUES(score), seen_at = CURRENT_TIMESTAMP
`

const insertMissSQL = `
INSERT INTO import_misses (place_id, http_status, reason)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE seen_at = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Single place with review rollups. AVG over NULL ratings skips them.
const getPlaceSQL = `
SELECT
  p.id,
  p.name,
  p.country,
  p.city,
  p.lat,
  p.lon,
  COUNT(r.id),
  AVG(r.rating)
FROM places p
LEFT JOIN reviews r ON r.place_id = p.id
WHERE p.id = ?
GROUP BY p.id, p.name, p.country, p.city, p.lat, p.lon
`

const listReviewsSQL = `
SELECT
  id,
  place_id,
  fingerprint,
  platform,
  author,
  rating,
  lang,
  comment,
  reviewed_at,
  raw
FROM reviews
WHERE place_id = ?
ORDER BY reviewed_at DESC, id DESC
LIMIT ?
`
