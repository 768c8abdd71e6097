// Package catalog provides access to the trek package catalog.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Difficulty grades a trek package.
type Difficulty string

const (
	DifficultyEasy      Difficulty = "EASY"
	DifficultyMedium    Difficulty = "MEDIUM"
	DifficultyTough     Difficulty = "TOUGH"
	DifficultyVeryTough Difficulty = "VERY_TOUGH"
)

// ParseDifficulty normalizes a difficulty string.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch Difficulty(strings.ToUpper(strings.TrimSpace(s))) {
	case DifficultyEasy:
		return DifficultyEasy, true
	case DifficultyMedium:
		return DifficultyMedium, true
	case DifficultyTough:
		return DifficultyTough, true
	case DifficultyVeryTough:
		return DifficultyVeryTough, true
	}
	return "", false
}

// Package is one bookable trek. Price is the per-person base price.
type Package struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Price       float64    `json:"price"`
	Duration    int        `json:"duration"`
	Altitude    int        `json:"altitude"`
	Difficulty  Difficulty `json:"difficulty"`
	Description string     `json:"description,omitempty"`
	Images      []string   `json:"images,omitempty"`
}

// ListOptions filters and orders a package listing.
type ListOptions struct {
	SortBy     string // "price", "duration" or "title"; empty keeps source order
	Difficulty Difficulty
}

// Service normalizes and serves packages from a single configured source.
type Service struct {
	source Source
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(source Source, logger *slog.Logger) *Service {
	return &Service{source: source, logger: logger}
}

// Get returns one normalized package by ID.
func (s *Service) Get(ctx context.Context, id string) (*Package, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrPackageNotFound
	}

	pkg, err := s.source.Package(ctx, id)
	if err != nil {
		return nil, err
	}

	normalized := normalizePackage(*pkg)
	if normalized == nil {
		s.logger.Warn("dropping malformed package record", "package_id", id)
		return nil, ErrPackageNotFound
	}
	return normalized, nil
}

// List returns the normalized catalog, filtered and sorted per opts.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Package, error) {
	records, err := s.source.List(ctx)
	if err != nil {
		return nil, err
	}

	packages := make([]Package, 0, len(records))
	for _, record := range records {
		normalized := normalizePackage(record)
		if normalized == nil {
			s.logger.Warn("dropping malformed package record", "package_id", record.ID)
			continue
		}
		if opts.Difficulty != "" && normalized.Difficulty != opts.Difficulty {
			continue
		}
		packages = append(packages, *normalized)
	}

	switch opts.SortBy {
	case "", "price":
		sort.SliceStable(packages, func(i, j int) bool {
			return packages[i].Price < packages[j].Price
		})
	case "duration":
		sort.SliceStable(packages, func(i, j int) bool {
			return packages[i].Duration < packages[j].Duration
		})
	case "title":
		sort.SliceStable(packages, func(i, j int) bool {
			return packages[i].Title < packages[j].Title
		})
	default:
		return nil, fmt.Errorf("unknown sort key %q", opts.SortBy)
	}

	return packages, nil
}

func normalizePackage(p Package) *Package {
	// Drop invalid data
	id := strings.TrimSpace(p.ID)
	if id == "" {
		return nil
	}

	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil
	}

	price := p.Price
	if price < 0 {
		price = 0
	}

	difficulty, ok := ParseDifficulty(string(p.Difficulty))
	if !ok {
		difficulty = DifficultyMedium
	}

	return &Package{
		ID:          id,
		Title:       title,
		Price:       price,
		Duration:    p.Duration,
		Altitude:    p.Altitude,
		Difficulty:  difficulty,
		Description: strings.TrimSpace(p.Description),
		Images:      p.Images,
	}
}
