package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	redisad "reviewsvisor/internal/adapters/redis"
	"reviewsvisor/internal/domain"
)

func TestCache_RoundTrip(t *testing.T) {
	srv := miniredis.RunT(t)

	c := redisad.New(srv.Addr(), "", 0)
	ctx := context.Background()

	name := "Le Bistrot"
	in := domain.PlaceView{ID: 7, Name: &name, ReviewCount: 12}
	if err := c.Set(ctx, "place:7", in, 60); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out domain.PlaceView
	ok, err := c.Get(ctx, "place:7", &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected hit")
	}
	if out.ID != 7 || out.Name == nil || *out.Name != "Le Bistrot" || out.ReviewCount != 12 {
		t.Fatalf("unexpected value: %+v", out)
	}

	if err := c.Del(ctx, "place:7"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	ok, err = c.Get(ctx, "place:7", &out)
	if err != nil {
		t.Fatalf("Get after Del: %v", err)
	}
	if ok {
		t.Fatalf("expected miss after Del")
	}
}

func TestCache_MissOnUnknownKey(t *testing.T) {
	srv := miniredis.RunT(t)

	c := redisad.New(srv.Addr(), "", 0)
	var out domain.ReviewsPage
	ok, err := c.Get(context.Background(), "reviews:1:50:-reviewed_at", &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatalf("expected miss")
	}
}
