package app

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"reviewsvisor/internal/adapters/observability"
	"reviewsvisor/internal/dedupe"
	"reviewsvisor/internal/domain"
)

const (
	// insertChunkSize bounds one INSERT statement. Transport sizing only:
	// chunk boundaries never change the dedup outcome.
	insertChunkSize = 500

	// nearDupWindow caps how many stored reviews the advisory check scans.
	nearDupWindow = 200
)

// ImportResult reports what happened to one submitted batch.
type ImportResult struct {
	Received          int        `json:"received"`
	InBatchDuplicates int        `json:"in_batch_duplicates"`
	AlreadyStored     int        `json:"already_stored"`
	NearDuplicates    int        `json:"near_duplicates"`
	Inserted          int        `json:"inserted"`
	Errors            []RowError `json:"errors,omitempty"`
}

// RowError pins a validation failure to its input row.
type RowError struct {
	Row   int    `json:"row"`
	Field string `json:"field"`
	Error string `json:"error"`
}

type ImportService struct {
	repo  domain.ReviewRepository
	cache domain.Cache
}

func NewImportService(r domain.ReviewRepository, cache domain.Cache) *ImportService {
	return &ImportService{repo: r, cache: cache}
}

// ImportBatch runs one batch through the full pipeline: in-batch dedup,
// screening against stored fingerprints, advisory near-duplicate flagging,
// then chunked insert-if-absent. The storage uniqueness constraint on
// (place_id, fingerprint) remains the correctness backstop; everything here
// is a pre-filter.
func (s *ImportService) ImportBatch(ctx context.Context, placeID int64, revs []domain.Review) (ImportResult, error) {
	res := ImportResult{Received: len(revs)}
	if len(revs) == 0 {
		return res, nil
	}

	deduped, stats := dedupeReviews(revs)
	res.InBatchDuplicates = stats.Duplicates
	observability.ObserveDedupN("in_batch_duplicate", stats.Duplicates)

	candidates := make([]string, len(deduped))
	for i, rv := range deduped {
		candidates[i] = rv.Fingerprint
	}
	stored, err := s.repo.ExistingFingerprints(ctx, placeID, candidates)
	if err != nil {
		return res, fmt.Errorf("screen fingerprints for place %d: %w", placeID, err)
	}

	toInsert := make([]domain.Review, 0, len(deduped))
	for _, rv := range deduped {
		if _, ok := stored[rv.Fingerprint]; ok {
			res.AlreadyStored++
			continue
		}
		toInsert = append(toInsert, rv)
	}
	observability.ObserveDedupN("already_stored", res.AlreadyStored)

	res.NearDuplicates = s.flagNearDuplicates(ctx, placeID, toInsert)

	for start := 0; start < len(toInsert); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(toInsert) {
			end = len(toInsert)
		}
		if err := s.repo.InsertReviews(ctx, toInsert[start:end]); err != nil {
			// IMPORTANT: do not swallow this; surface so we know inserts failed
			return res, fmt.Errorf("insert reviews for place %d: %w", placeID, err)
		}
		res.Inserted += end - start
	}
	observability.ObserveDedupN("inserted", res.Inserted)

	if s.cache != nil && res.Inserted > 0 {
		s.invalidateReviews(ctx, placeID)
		s.invalidatePlace(ctx, placeID)
	}

	log.Info().
		Int64("place_id", placeID).
		Int("received", res.Received).
		Int("in_batch_duplicates", res.InBatchDuplicates).
		Int("already_stored", res.AlreadyStored).
		Int("near_duplicates", res.NearDuplicates).
		Int("inserted", res.Inserted).
		Msg("import batch processed")
	return res, nil
}

// ImportCSV parses a CSV body and feeds the valid rows through ImportBatch.
// Row-level validation failures are reported in the result, not as an error.
func (s *ImportService) ImportCSV(ctx context.Context, placeID int64, r io.Reader) (ImportResult, error) {
	revs, rowErrs, err := parseCSVReviews(placeID, r)
	if err != nil {
		return ImportResult{}, err
	}
	res, err := s.ImportBatch(ctx, placeID, revs)
	res.Errors = rowErrs
	return res, err
}

// flagNearDuplicates compares candidates against a recent stored window and
// records hits. Advisory only: candidates are still inserted, and a flag
// always references the stored review it matched.
func (s *ImportService) flagNearDuplicates(ctx context.Context, placeID int64, candidates []domain.Review) int {
	if len(candidates) == 0 {
		return 0
	}
	recent, err := s.repo.RecentReviews(ctx, placeID, nearDupWindow)
	if err != nil {
		log.Warn().Int64("place_id", placeID).Err(err).Msg("near-duplicate screen skipped")
		return 0
	}
	if len(recent) == 0 {
		return 0
	}

	flagged := 0
	for _, cand := range candidates {
		rec := recordOf(cand)
		for _, old := range recent {
			if !dedupe.NearDuplicate(rec, recordOf(old)) {
				continue
			}
			score := dedupe.Similarity(
				dedupe.Normalize(deref(cand.Comment)),
				dedupe.Normalize(deref(old.Comment)),
			)
			_ = s.repo.LogNearDuplicate(ctx, domain.DuplicateFlag{
				PlaceID:     placeID,
				Fingerprint: cand.Fingerprint,
				MatchedID:   old.ID,
				Score:       score,
			})
			flagged++
			break
		}
	}
	observability.ObserveDedupN("near_duplicate", flagged)
	return flagged
}

func (s *ImportService) invalidatePlace(ctx context.Context, id int64) {
	_ = s.cache.Del(ctx, fmt.Sprintf("place:%d", id))
}

// invalidate the most common review cache variants
func (s *ImportService) invalidateReviews(ctx context.Context, id int64) {
	// API default is limit=50, sort=-reviewed_at; clear that first, then a
	// couple of common limits.
	for _, lim := range []int{50, 100, 200} {
		_ = s.cache.Del(ctx, fmt.Sprintf("reviews:%d:%d:%s", id, lim, "-reviewed_at"))
	}
}
