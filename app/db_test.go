package app

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"
	"time"

	"example/aoe4-reviewer/app/models"
)

func TestReviewIndexRecordAndRecent(t *testing.T) {
	dsn := os.Getenv("REVIEW_TEST_DSN")
	if dsn == "" {
		t.Skip("REVIEW_TEST_DSN not set")
	}
	d, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer d.Close()

	ctx := context.Background()
	idx := NewReviewIndex(d)
	if err := idx.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	t.Cleanup(func() {
		_, _ = d.Exec(`DELETE FROM saved_reviews WHERE match_name LIKE 'test-%'`)
	})

	base := time.Now().UTC().Truncate(time.Second)
	first := models.SavedReview{MatchName: "test-a", GameID: 1, ViewerID: "1", Map: "Altai", Kind: "rm_1v1", StartedAt: "2024-06-01T12:00:00.000Z", FilePath: "data/test-a.json", SavedAt: base}
	second := first
	second.MatchName = "test-b"
	second.SavedAt = base.Add(time.Minute)

	for _, r := range []models.SavedReview{first, second} {
		if err := idx.Record(ctx, r); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	// same name again overwrites
	first.GameID = 99
	first.SavedAt = base.Add(2 * time.Minute)
	if err := idx.Record(ctx, first); err != nil {
		t.Fatalf("Record overwrite: %v", err)
	}

	all, err := idx.Recent(ctx, 100)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	var got []models.SavedReview
	for _, r := range all {
		if strings.HasPrefix(r.MatchName, "test-") {
			got = append(got, r)
		}
	}
	if len(got) != 2 || got[0].MatchName != "test-a" || got[0].GameID != 99 || got[1].MatchName != "test-b" {
		t.Fatalf("recent = %+v", got)
	}
}
