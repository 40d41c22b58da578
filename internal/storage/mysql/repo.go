package mysql

import (
	"context"
	"database/sql"
	"strings"

	"reviewsvisor/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertPlace(ctx context.Context, p domain.Place) error {
	_, err := r.db.ExecContext(ctx, upsertPlaceSQL,
		p.ID,
		valStr(p.SourceID),
		valStr(p.Name),
		valStr(p.Country),
		valStr(p.City),
		valF64(p.Lat),
		valF64(p.Lon),
		valJSON(p.RawJSON),
	)
	return err
}

func (r *Repo) InsertReviews(ctx context.Context, rs []domain.Review) error {
	if len(rs) == 0 {
		return nil
	}
	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*9) // 9 params per row
	for _, rv := range rs {
		// Columns (from insertReviewsPrefix):
		// (place_id, fingerprint, platform, author, rating, lang, comment, reviewed_at, raw)
		values = append(values, "(?,?,?,?,?,?,?,?,?)")
		var reviewedAt any
		if rv.ReviewedAt != nil {
			reviewedAt = rv.ReviewedAt.UTC()
		}
		args = append(args,
			rv.PlaceID,
			rv.Fingerprint,
			valStr(rv.Platform),
			valStr(rv.Author),
			valInt(rv.Rating),
			valStr(rv.Lang),
			valStr(rv.Comment),
			reviewedAt,
			valJSON(rv.RawJSON),
		)
	}
	sqlStr := insertReviewsPrefix + strings.Join(values, ",") + insertReviewsOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *Repo) ExistingFingerprints(ctx context.Context, placeID int64, candidates []string) (map[string]struct{}, error) {
	out := make(map[string]struct{}, len(candidates))
	if len(candidates) == 0 {
		return out, nil
	}
	placeholders := make([]string, len(candidates))
	args := make([]any, 0, len(candidates)+1)
	args = append(args, placeID)
	for i, fp := range candidates {
		placeholders[i] = "?"
		args = append(args, fp)
	}
	q := existingFingerprintsPrefix + "(" + strings.Join(placeholders, ",") + ")"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, err
		}
		out[fp] = struct{}{}
	}
	return out, rows.Err()
}

func (r *Repo) LogNearDuplicate(ctx context.Context, f domain.DuplicateFlag) error {
	_, err := r.db.ExecContext(ctx, insertDuplicateSQL, f.PlaceID, f.Fingerprint, f.MatchedID, f.Score)
	return err
}

func (r *Repo) LogMiss(ctx context.Context, placeID int64, status int, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, placeID, status, reason)
	return err
}

func (r *Repo) GetPlace(ctx context.Context, id int64) (domain.PlaceView, error) {
	row := r.db.QueryRowContext(ctx, getPlaceSQL, id)

	var pv domain.PlaceView
	var name, country, city sql.NullString
	var lat, lon sql.NullFloat64
	var avg sql.NullFloat64

	if err := row.Scan(
		&pv.ID,
		&name,
		&country,
		&city,
		&lat, &lon,
		&pv.ReviewCount,
		&avg,
	); err != nil {
		if err == sql.ErrNoRows {
			return domain.PlaceView{}, domain.ErrNotFound
		}
		return domain.PlaceView{}, err
	}

	if name.Valid {
		s := name.String
		pv.Name = &s
	}
	if country.Valid {
		s := country.String
		pv.Country = &s
	}
	if city.Valid {
		s := city.String
		pv.City = &s
	}
	if lat.Valid && lon.Valid {
		pv.Coords = &domain.Coords{Lat: lat.Float64, Lon: lon.Float64}
	}
	if avg.Valid {
		f := avg.Float64
		pv.AvgRating = &f
	}
	return pv, nil
}

func (r *Repo) ListPlaces(ctx context.Context, q domain.PlacesQuery) (domain.PlacesPage, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT p.id, p.name, p.country, p.city, p.lat, p.lon
FROM places p
ORDER BY p.id
LIMIT ?`, q.Limit)
	if err != nil {
		return domain.PlacesPage{}, err
	}
	defer rows.Close()

	var out []domain.PlaceView
	for rows.Next() {
		var pv domain.PlaceView
		var name, country, city sql.NullString
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&pv.ID, &name, &country, &city, &lat, &lon); err != nil {
			return domain.PlacesPage{}, err
		}
		if name.Valid {
			s := name.String
			pv.Name = &s
		}
		if country.Valid {
			s := country.String
			pv.Country = &s
		}
		if city.Valid {
			s := city.String
			pv.City = &s
		}
		if lat.Valid && lon.Valid {
			pv.Coords = &domain.Coords{Lat: lat.Float64, Lon: lon.Float64}
		}
		out = append(out, pv)
	}
	return domain.PlacesPage{Items: out}, rows.Err()
}

func (r *Repo) ListReviews(ctx context.Context, placeID int64, pg domain.PageQuery) (domain.ReviewsPage, error) {
	items, err := r.scanReviews(ctx, placeID, pg.Limit)
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	return domain.ReviewsPage{Items: items}, nil
}

func (r *Repo) RecentReviews(ctx context.Context, placeID int64, limit int) ([]domain.Review, error) {
	return r.scanReviews(ctx, placeID, limit)
}

func (r *Repo) scanReviews(ctx context.Context, placeID int64, limit int) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, listReviewsSQL, placeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var rv domain.Review
		var (
			platform   sql.NullString
			author     sql.NullString
			rating     sql.NullInt64
			lang       sql.NullString
			comment    sql.NullString
			reviewedAt sql.NullTime
			rawB       sql.RawBytes
		)
		if err := rows.Scan(
			&rv.ID,
			&rv.PlaceID,
			&rv.Fingerprint,
			&platform,
			&author,
			&rating,
			&lang,
			&comment,
			&reviewedAt,
			&rawB,
		); err != nil {
			return nil, err
		}

		if platform.Valid {
			s := platform.String
			rv.Platform = &s
		}
		if author.Valid {
			s := author.String
			rv.Author = &s
		}
		if rating.Valid {
			n := int(rating.Int64)
			rv.Rating = &n
		}
		if lang.Valid {
			s := lang.String
			rv.Lang = &s
		}
		if comment.Valid {
			s := comment.String
			rv.Comment = &s
		}
		if reviewedAt.Valid {
			t := reviewedAt.Time
			rv.ReviewedAt = &t
		}
		if len(rawB) > 0 {
			rv.RawJSON = append([]byte(nil), rawB...)
		}

		out = append(out, rv)
	}
	return out, rows.Err()
}
