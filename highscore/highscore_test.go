package highscore

import (
	"path/filepath"
	"testing"
)

func TestSubmitIsMonotonic(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	best, err := store.Best()
	if err != nil {
		t.Fatalf("best: %v", err)
	}
	if best != 0 {
		t.Errorf("wanted a fresh store at 0, got %d", best)
	}

	tests := []struct {
		submit, want int
	}{
		{500, 500},
		{300, 500}, // lower score never overwrites
		{800, 800},
		{800, 800},
	}
	for _, tt := range tests {
		got, err := store.Submit(tt.submit)
		if err != nil {
			t.Fatalf("submit %d: %v", tt.submit, err)
		}
		if got != tt.want {
			t.Errorf("Submit(%d) = %d, want %d", tt.submit, got, tt.want)
		}
	}
}

func TestOpenReusesExistingDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, err := store.Submit(1200); err != nil {
		t.Fatalf("submit: %v", err)
	}
	store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()
	best, err := reopened.Best()
	if err != nil {
		t.Fatalf("best: %v", err)
	}
	if best != 1200 {
		t.Errorf("wanted 1200 after reopen, got %d", best)
	}
}
