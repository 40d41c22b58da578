package dedupe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBatch_Empty(t *testing.T) {
	out := Batch(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)

	out = Batch([]Record{})
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestBatch_FirstOccurrenceWins(t *testing.T) {
	a := Record{Platform: "google", Author: "Marie", Rating: 5, Comment: "Excellent !"}
	b := Record{Platform: "google", Author: "Paul", Rating: 3, Comment: "Correct"}
	aPrime := Record{Platform: "Google", Author: "marie", Rating: 5, Comment: "excellent"}

	out := Batch([]Record{a, b, aPrime})
	if assert.Len(t, out, 2) {
		assert.Equal(t, "Marie", out[0].Author)
		assert.Equal(t, "Paul", out[1].Author)
		assert.Equal(t, Fingerprint(a), out[0].Fingerprint)
	}
}

func TestBatch_Idempotent(t *testing.T) {
	in := []Record{
		{Platform: "google", Author: "Marie L.", Rating: 5, Comment: "Excellent !"},
		{Platform: "Google", Author: "marie l", Rating: 5, Comment: "excellent"},
		{Platform: "google", Author: "Paul", Rating: 3, ReviewedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	first := Batch(in)

	again := make([]Record, len(first))
	for i, k := range first {
		again[i] = k.Record
	}
	second := Batch(again)

	assert.Equal(t, first, second)
}

func TestBatchStats(t *testing.T) {
	in := []Record{
		{Platform: "google", Author: "Marie L.", Rating: 5, Comment: "Excellent !"},
		{Platform: "Google", Author: "marie l", Rating: 5, Comment: "excellent"},
		{Platform: "google", Author: "Paul", Rating: 3, ReviewedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	out, stats := BatchStats(in)
	assert.Len(t, out, 2)
	assert.Equal(t, Stats{Input: 3, Kept: 2, Duplicates: 1}, stats)
}

func TestBatch_DoesNotMutateInput(t *testing.T) {
	in := []Record{
		{Platform: "google", Author: "Marie", Rating: 5, Comment: "Excellent"},
	}
	orig := in[0]
	_ = Batch(in)
	assert.Equal(t, orig, in[0])
}
