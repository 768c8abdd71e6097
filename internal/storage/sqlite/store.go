// Package sqlite provides the SQLite-backed storage implementation. The
// store doubles as the default catalog source when no upstream catalog is
// configured.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/alex-user-go/treks/internal/catalog"
	"github.com/alex-user-go/treks/internal/storage"
	"github.com/alex-user-go/treks/internal/storage/sqlite/migrations"
)

// Store persists packages and bookings in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Package returns one package by ID. Implements catalog.Source.
func (s *Store) Package(ctx context.Context, id string) (*catalog.Package, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, catalog.ErrPackageNotFound
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, title, price, duration, altitude, difficulty, description, images
		 FROM packages WHERE id = ?`,
		id,
	)
	pkg, err := scanPackage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrPackageNotFound
		}
		return nil, fmt.Errorf("get package: %w", err)
	}
	return pkg, nil
}

// List returns every stored package. Implements catalog.Source.
func (s *Store) List(ctx context.Context) ([]catalog.Package, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, title, price, duration, altitude, difficulty, description, images
		 FROM packages ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var packages []catalog.Package
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan package: %w", err)
		}
		packages = append(packages, *pkg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	return packages, nil
}

// UpsertPackage inserts or replaces one package record.
func (s *Store) UpsertPackage(ctx context.Context, pkg catalog.Package) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id := strings.TrimSpace(pkg.ID)
	if id == "" {
		return fmt.Errorf("package id is required")
	}
	if strings.TrimSpace(pkg.Title) == "" {
		return fmt.Errorf("package title is required")
	}

	images, err := json.Marshal(pkg.Images)
	if err != nil {
		return fmt.Errorf("encode images: %w", err)
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO packages (id, title, price, duration, altitude, difficulty, description, images)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   title = excluded.title,
		   price = excluded.price,
		   duration = excluded.duration,
		   altitude = excluded.altitude,
		   difficulty = excluded.difficulty,
		   description = excluded.description,
		   images = excluded.images`,
		id,
		strings.TrimSpace(pkg.Title),
		pkg.Price,
		pkg.Duration,
		pkg.Altitude,
		string(pkg.Difficulty),
		strings.TrimSpace(pkg.Description),
		string(images),
	)
	if err != nil {
		return fmt.Errorf("upsert package: %w", err)
	}
	return nil
}

// CreateBooking inserts one confirmed booking.
func (s *Store) CreateBooking(ctx context.Context, b storage.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id := strings.TrimSpace(b.ID)
	if id == "" {
		return fmt.Errorf("booking id is required")
	}
	if strings.TrimSpace(b.PackageID) == "" {
		return fmt.Errorf("package id is required")
	}
	if len(b.Travelers) == 0 {
		return fmt.Errorf("at least one traveler is required")
	}
	status := b.Status
	if status == "" {
		status = storage.StatusConfirmed
	}
	createdAt := b.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	travelers, err := json.Marshal(b.Travelers)
	if err != nil {
		return fmt.Errorf("encode travelers: %w", err)
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO bookings (id, package_id, travelers, additional_info, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id,
		strings.TrimSpace(b.PackageID),
		string(travelers),
		b.AdditionalInfo,
		status,
		toMillis(createdAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

// Booking returns one booking by confirmation ID.
func (s *Store) Booking(ctx context.Context, id string) (storage.Booking, error) {
	if err := ctx.Err(); err != nil {
		return storage.Booking{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.Booking{}, storage.ErrBookingNotFound
	}

	var (
		b         storage.Booking
		travelers string
		createdAt int64
	)
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, package_id, travelers, additional_info, status, created_at
		 FROM bookings WHERE id = ?`,
		id,
	)
	err := row.Scan(&b.ID, &b.PackageID, &travelers, &b.AdditionalInfo, &b.Status, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Booking{}, storage.ErrBookingNotFound
		}
		return storage.Booking{}, fmt.Errorf("get booking: %w", err)
	}

	if err := json.Unmarshal([]byte(travelers), &b.Travelers); err != nil {
		return storage.Booking{}, fmt.Errorf("decode travelers: %w", err)
	}
	b.CreatedAt = fromMillis(createdAt)
	return b, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPackage(row rowScanner) (*catalog.Package, error) {
	var (
		pkg    catalog.Package
		images string
	)
	err := row.Scan(
		&pkg.ID,
		&pkg.Title,
		&pkg.Price,
		&pkg.Duration,
		&pkg.Altitude,
		&pkg.Difficulty,
		&pkg.Description,
		&images,
	)
	if err != nil {
		return nil, err
	}
	if images != "" {
		if err := json.Unmarshal([]byte(images), &pkg.Images); err != nil {
			return nil, fmt.Errorf("decode images: %w", err)
		}
	}
	return &pkg, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
