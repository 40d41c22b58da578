package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"reviewsvisor/internal/domain"
)

type IngestionService struct {
	source domain.SourceClient
	repo   domain.ReviewRepository
	cache  domain.Cache
	imp    *ImportService
}

func NewIngestionService(c domain.SourceClient, r domain.ReviewRepository, cache domain.Cache) *IngestionService {
	return &IngestionService{source: c, repo: r, cache: cache, imp: NewImportService(r, cache)}
}

// IngestPlace pulls one place and its reviews from the platform and runs the
// reviews through the import pipeline. Known 404/401/403 responses are
// recorded as misses and stop the ingestion gracefully; anything else
// (network/5xx/JSON) bubbles up.
func (s *IngestionService) IngestPlace(ctx context.Context, id int64, reviewCount int) error {
	p, err := s.source.GetPlace(ctx, id)
	if err != nil {
		low := strings.ToLower(err.Error())

		// 404: place not found -> record miss, clear caches, stop gracefully.
		if errors.Is(err, domain.ErrNotFound) || strings.Contains(low, "not found") {
			_ = s.repo.LogMiss(ctx, id, 404, "not found")
			if s.cache != nil {
				s.imp.invalidatePlace(ctx, id)
				s.imp.invalidateReviews(ctx, id)
			}
			return nil
		}

		// 401/403: unauthorized/forbidden/inactive -> same treatment.
		if strings.Contains(low, "403") || strings.Contains(low, "forbidden") ||
			strings.Contains(low, "401") || strings.Contains(low, "unauthorized") {
			_ = s.repo.LogMiss(ctx, id, 403, "inactive")
			if s.cache != nil {
				s.imp.invalidatePlace(ctx, id)
				s.imp.invalidateReviews(ctx, id)
			}
			return nil
		}

		return err
	}

	// Parent upsert first to satisfy the FK for reviews.
	if err := s.repo.UpsertPlace(ctx, mapPlace(id, p)); err != nil {
		return err
	}
	if s.cache != nil {
		s.imp.invalidatePlace(ctx, id)
	}

	// Reviews: best-effort on 404/401/403, bubble up everything else. The
	// reviews cache is invalidated after any successful call (even an empty
	// list) to avoid serving a stale page.
	revs, rerr := s.source.GetReviews(ctx, id, reviewCount)
	if rerr != nil {
		low := strings.ToLower(rerr.Error())
		switch {
		case errors.Is(rerr, domain.ErrNotFound) || strings.Contains(low, "not found"):
			_ = s.repo.LogMiss(ctx, id, 404, "reviews")
		case strings.Contains(low, "403") || strings.Contains(low, "forbidden") ||
			strings.Contains(low, "401") || strings.Contains(low, "unauthorized"):
			_ = s.repo.LogMiss(ctx, id, 403, "reviews")
		default:
			return rerr
		}
		if s.cache != nil {
			s.imp.invalidateReviews(ctx, id)
		}
		return nil
	}

	if len(revs) > 0 {
		if _, err := s.imp.ImportBatch(ctx, id, mapReviews(id, revs)); err != nil {
			return fmt.Errorf("import reviews failed for %d: %w", id, err)
		}
	}
	if s.cache != nil {
		s.imp.invalidateReviews(ctx, id)
	}
	return nil
}
