package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestClamp(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{0, DefaultLimit},
		{-3, DefaultLimit},
		{10, 10},
		{MaxLimit, MaxLimit},
		{MaxLimit + 50, MaxLimit},
	}
	for _, tc := range cases {
		if got := Clamp(tc.in); got != tc.want {
			t.Fatalf("Clamp(%d) = %d, want %d", tc.in, got, tc.want)
		}
		if got := Probe(tc.in); got != tc.want+1 {
			t.Fatalf("Probe(%d) = %d, want %d", tc.in, got, tc.want+1)
		}
	}
}

func TestTokenRoundTrip(t *testing.T) {
	cursor := Cursor{
		CreatedAt: time.Date(2026, time.March, 5, 12, 30, 0, 123456789, time.UTC),
		ID:        uuid.New(),
	}

	decoded, err := Decode(cursor.Token())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded == nil {
		t.Fatal("expected a cursor")
	}
	if !decoded.CreatedAt.Equal(cursor.CreatedAt) {
		t.Fatalf("created_at changed: %v vs %v", decoded.CreatedAt, cursor.CreatedAt)
	}
	if decoded.ID != cursor.ID {
		t.Fatalf("id changed: %s vs %s", decoded.ID, cursor.ID)
	}
}

func TestDecodeEmptyMeansFirstPage(t *testing.T) {
	cursor, err := Decode("  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cursor != nil {
		t.Fatalf("expected nil cursor, got %+v", cursor)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for _, token := range []string{"not base64!!", "bm8tc2VwYXJhdG9y", "MTIzOm5vdC1hLXV1aWQ"} {
		if _, err := Decode(token); err == nil {
			t.Fatalf("expected error for token %q", token)
		}
	}
}
