package app_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"reviewsvisor/internal/app"
	"reviewsvisor/internal/dedupe"
	"reviewsvisor/internal/domain"
)

func review(platform, author string, rating int, comment string) domain.Review {
	rv := domain.Review{PlaceID: 1, Rating: pint(rating)}
	if platform != "" {
		rv.Platform = ptr(platform)
	}
	if author != "" {
		rv.Author = ptr(author)
	}
	if comment != "" {
		rv.Comment = ptr(comment)
	}
	return rv
}

func TestImportBatch_DropsInBatchDuplicates(t *testing.T) {
	repo := &fakeRepo{}
	s := app.NewImportService(repo, nil)

	paul := review("google", "Paul", 3, "")
	paulDate := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	paul.ReviewedAt = &paulDate

	batch := []domain.Review{
		review("google", "Marie L.", 5, "Excellent !"),
		review("Google", "marie l", 5, "excellent"),
		paul,
	}

	res, err := s.ImportBatch(context.Background(), 1, batch)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if res.Received != 3 || res.InBatchDuplicates != 1 || res.Inserted != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(repo.inserted) != 1 || len(repo.inserted[0]) != 2 {
		t.Fatalf("unexpected inserts: %+v", repo.inserted)
	}
	// first occurrence wins, order preserved
	if deref(repo.inserted[0][0].Author) != "Marie L." || deref(repo.inserted[0][1].Author) != "Paul" {
		t.Fatalf("unexpected order: %+v", repo.inserted[0])
	}
	if repo.inserted[0][0].Fingerprint == "" {
		t.Fatalf("inserted review misses fingerprint")
	}
}

func TestImportBatch_ScreensStoredFingerprints(t *testing.T) {
	stored := dedupe.Fingerprint(dedupe.Record{Platform: "google", Author: "Marie L.", Rating: 5, Comment: "Excellent !"})
	repo := &fakeRepo{stored: map[string]struct{}{stored: {}}}
	s := app.NewImportService(repo, nil)

	res, err := s.ImportBatch(context.Background(), 1, []domain.Review{
		review("google", "Marie L.", 5, "Excellent !"),
		review("google", "Paul", 4, "Correct sans plus"),
	})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if res.AlreadyStored != 1 || res.Inserted != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if deref(repo.inserted[0][0].Author) != "Paul" {
		t.Fatalf("expected only Paul inserted, got %+v", repo.inserted[0])
	}
}

func TestImportBatch_FlagsNearDuplicates(t *testing.T) {
	old := review("google", "Luc", 5, "Super accueil et plats délicieux")
	old.ID = 99
	repo := &fakeRepo{recent: []domain.Review{old}}
	s := app.NewImportService(repo, nil)

	res, err := s.ImportBatch(context.Background(), 1, []domain.Review{
		review("google", "Luc", 5, "Super accueil et plat délicieux"),
	})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	// flagged but still inserted; the flag references the stored review
	if res.NearDuplicates != 1 || res.Inserted != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(repo.flags) != 1 || repo.flags[0].MatchedID != 99 {
		t.Fatalf("unexpected flags: %+v", repo.flags)
	}
	if repo.flags[0].Score < 0.9 {
		t.Fatalf("expected score >= 0.9, got %f", repo.flags[0].Score)
	}
}

func TestImportBatch_Empty(t *testing.T) {
	repo := &fakeRepo{}
	s := app.NewImportService(repo, nil)
	res, err := s.ImportBatch(context.Background(), 1, nil)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if res.Received != 0 || res.Inserted != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(repo.inserted) != 0 {
		t.Fatalf("expected no insert calls")
	}
}

func TestImportBatch_ChunksInserts(t *testing.T) {
	repo := &fakeRepo{}
	s := app.NewImportService(repo, nil)

	batch := make([]domain.Review, 1200)
	for i := range batch {
		batch[i] = review("google", fmt.Sprintf("user-%d", i), 5, fmt.Sprintf("commentaire numero %d tout a fait unique", i))
	}
	res, err := s.ImportBatch(context.Background(), 1, batch)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if res.Inserted != 1200 {
		t.Fatalf("unexpected inserted: %d", res.Inserted)
	}
	if len(repo.inserted) != 3 {
		t.Fatalf("expected 3 chunks of at most 500, got %d", len(repo.inserted))
	}
	if len(repo.inserted[0]) != 500 || len(repo.inserted[2]) != 200 {
		t.Fatalf("unexpected chunk sizes: %d, %d, %d",
			len(repo.inserted[0]), len(repo.inserted[1]), len(repo.inserted[2]))
	}
}

func TestImportCSV(t *testing.T) {
	repo := &fakeRepo{}
	s := app.NewImportService(repo, nil)

	csv := strings.Join([]string{
		"platform,author,rating,comment,date",
		`google,Marie L.,5,Excellent !,2024-02-10`,
		`google,marie l,5,excellent,2024-02-11`,
		`google,Paul,3,,2024-03-01`,
		`google,Jean,9,Trop bien,2024-03-02`,
	}, "\n")

	res, err := s.ImportCSV(context.Background(), 1, strings.NewReader(csv))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if res.Received != 3 {
		t.Fatalf("expected 3 valid rows, got %d", res.Received)
	}
	if res.InBatchDuplicates != 1 || res.Inserted != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(res.Errors) != 1 || res.Errors[0].Row != 4 || res.Errors[0].Field != "rating" {
		t.Fatalf("unexpected row errors: %+v", res.Errors)
	}
}

func TestImportCSV_BadHeader(t *testing.T) {
	s := app.NewImportService(&fakeRepo{}, nil)
	_, err := s.ImportCSV(context.Background(), 1, strings.NewReader("author,comment\nMarie,super"))
	if err == nil {
		t.Fatalf("expected error for missing rating column")
	}
}
