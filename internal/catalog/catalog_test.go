package catalog_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/alex-user-go/treks/internal/catalog"
)

// stubSource is a test source returning predefined records.
type stubSource struct {
	packages []catalog.Package
	err      error
}

func (s *stubSource) Package(ctx context.Context, id string) (*catalog.Package, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, pkg := range s.packages {
		if pkg.ID == id {
			return &pkg, nil
		}
	}
	return nil, catalog.ErrPackageNotFound
}

func (s *stubSource) List(ctx context.Context) ([]catalog.Package, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.packages, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func TestService_List_SortAndFilter(t *testing.T) {
	source := &stubSource{packages: []catalog.Package{
		{ID: "act-17", Title: "Annapurna Circuit Trek", Price: 1250, Duration: 17, Difficulty: "TOUGH"},
		{ID: "ghor-5", Title: "Ghorepani Poon Hill Trek", Price: 450, Duration: 5, Difficulty: "EASY"},
		{ID: "ebc-14", Title: "Everest Base Camp Trek", Price: 1400, Duration: 14, Difficulty: "TOUGH"},
	}}
	service := catalog.NewService(source, testLogger())

	tests := []struct {
		name    string
		opts    catalog.ListOptions
		wantIDs []string
	}{
		{
			name:    "default sorts by price",
			opts:    catalog.ListOptions{},
			wantIDs: []string{"ghor-5", "act-17", "ebc-14"},
		},
		{
			name:    "sort by duration",
			opts:    catalog.ListOptions{SortBy: "duration"},
			wantIDs: []string{"ghor-5", "ebc-14", "act-17"},
		},
		{
			name:    "sort by title",
			opts:    catalog.ListOptions{SortBy: "title"},
			wantIDs: []string{"act-17", "ebc-14", "ghor-5"},
		},
		{
			name:    "filter by difficulty",
			opts:    catalog.ListOptions{Difficulty: catalog.DifficultyTough},
			wantIDs: []string{"act-17", "ebc-14"},
		},
		{
			name:    "filter with no matches",
			opts:    catalog.ListOptions{Difficulty: catalog.DifficultyVeryTough},
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packages, err := service.List(context.Background(), tt.opts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(packages) != len(tt.wantIDs) {
				t.Fatalf("expected %d packages, got %d", len(tt.wantIDs), len(packages))
			}
			for i, want := range tt.wantIDs {
				if packages[i].ID != want {
					t.Errorf("position %d: expected %q, got %q", i, want, packages[i].ID)
				}
			}
		})
	}
}

func TestService_List_DropsMalformedRecords(t *testing.T) {
	source := &stubSource{packages: []catalog.Package{
		{ID: "", Title: "No ID", Price: 100},
		{ID: "no-title", Title: "  ", Price: 100},
		{ID: "ok", Title: "  Valid Trek  ", Price: -50, Difficulty: "bogus"},
	}}
	service := catalog.NewService(source, testLogger())

	packages, err := service.List(context.Background(), catalog.ListOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(packages) != 1 {
		t.Fatalf("expected 1 package, got %d", len(packages))
	}

	pkg := packages[0]
	if pkg.Title != "Valid Trek" {
		t.Errorf("expected trimmed title, got %q", pkg.Title)
	}
	if pkg.Price != 0 {
		t.Errorf("expected negative price coerced to 0, got %v", pkg.Price)
	}
	if pkg.Difficulty != catalog.DifficultyMedium {
		t.Errorf("expected unknown difficulty to default to MEDIUM, got %q", pkg.Difficulty)
	}
}

func TestService_Get(t *testing.T) {
	source := &stubSource{packages: []catalog.Package{
		{ID: "ebc-14", Title: "Everest Base Camp Trek", Price: 1400, Difficulty: "tough"},
	}}
	service := catalog.NewService(source, testLogger())

	pkg, err := service.Get(context.Background(), "ebc-14")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pkg.Difficulty != catalog.DifficultyTough {
		t.Errorf("expected difficulty normalized to TOUGH, got %q", pkg.Difficulty)
	}

	if _, err := service.Get(context.Background(), "nope"); !errors.Is(err, catalog.ErrPackageNotFound) {
		t.Errorf("expected ErrPackageNotFound, got %v", err)
	}

	if _, err := service.Get(context.Background(), "  "); !errors.Is(err, catalog.ErrPackageNotFound) {
		t.Errorf("expected ErrPackageNotFound for blank id, got %v", err)
	}
}

func TestService_Get_SourceError(t *testing.T) {
	source := &stubSource{err: catalog.ErrCatalogUnavailable}
	service := catalog.NewService(source, testLogger())

	_, err := service.Get(context.Background(), "ebc-14")
	if !errors.Is(err, catalog.ErrCatalogUnavailable) {
		t.Errorf("expected ErrCatalogUnavailable, got %v", err)
	}
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in     string
		want   catalog.Difficulty
		wantOK bool
	}{
		{"EASY", catalog.DifficultyEasy, true},
		{"easy", catalog.DifficultyEasy, true},
		{" Medium ", catalog.DifficultyMedium, true},
		{"VERY_TOUGH", catalog.DifficultyVeryTough, true},
		{"extreme", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := catalog.ParseDifficulty(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseDifficulty(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
