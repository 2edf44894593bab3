package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tasksync/internal/db"
	"github.com/alexanderramin/tasksync/internal/domain"
	"github.com/google/uuid"
)

// SQLiteRecordRepo implements RecordRepo using a SQLite database.
// Collection IDs double as routing database refs.
type SQLiteRecordRepo struct {
	db          db.DBTX
	collections *SQLiteCollectionRepo
}

// NewSQLiteRecordRepo creates a new SQLiteRecordRepo.
func NewSQLiteRecordRepo(conn db.DBTX) *SQLiteRecordRepo {
	return &SQLiteRecordRepo{db: conn, collections: NewSQLiteCollectionRepo(conn)}
}

const recordColumns = `id, collection_id, stable_id, name, duration_hours, billing_month_hours,
	record_date, category, client, created_at, updated_at`

func (r *SQLiteRecordRepo) QueryExisting(ctx context.Context, collectionID string, date time.Time) ([]domain.ExistingRecord, error) {
	if _, err := r.collections.GetByID(ctx, collectionID); err != nil {
		return nil, err
	}

	query := `SELECT id, stable_id, name, duration_hours FROM records
		WHERE collection_id = ? AND record_date = ?
		ORDER BY rowid`
	out, err := db.QueryAll(ctx, r.db, scanExisting, query, collectionID, formatDate(date))
	if err != nil {
		return nil, fmt.Errorf("querying existing records: %w", err)
	}
	return out, nil
}

func scanExisting(row db.RowScanner) (domain.ExistingRecord, error) {
	var rec domain.ExistingRecord
	var hours sql.NullFloat64
	if err := row.Scan(&rec.RecordID, &rec.StableID, &rec.Name, &hours); err != nil {
		return rec, fmt.Errorf("scanning existing record: %w", err)
	}
	rec.DurationHours = parseNullableFloat(hours)
	return rec, nil
}

func (r *SQLiteRecordRepo) GetBillingAnchor(ctx context.Context, collectionID string) (int, error) {
	c, err := r.collections.GetByID(ctx, collectionID)
	if err != nil {
		return 0, err
	}
	return c.BillingAnchorDay, nil
}

func (r *SQLiteRecordRepo) CreateRecord(ctx context.Context, collectionID string, fields domain.RecordFields) (string, error) {
	if fields.Date == nil {
		return "", fmt.Errorf("creating record %q: date is required", fields.Name)
	}
	id := uuid.New().String()
	now := nowUTC()
	query := `INSERT INTO records (` + recordColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		id,
		collectionID,
		fields.StableID,
		fields.Name,
		fields.DurationHours,
		nullableFloatToValue(fields.BillingMonthHours),
		formatDate(*fields.Date),
		string(fields.Category),
		fields.Client,
		now,
		now,
	)
	if err != nil {
		return "", fmt.Errorf("inserting record: %w", err)
	}
	return id, nil
}

// UpdateRecord overwrites the duration and every non-empty field in fields.
func (r *SQLiteRecordRepo) UpdateRecord(ctx context.Context, recordID string, fields domain.RecordFields) error {
	sets := []string{"duration_hours = ?", "updated_at = ?"}
	args := []any{fields.DurationHours, nowUTC()}

	if fields.Name != "" {
		sets = append(sets, "name = ?")
		args = append(args, fields.Name)
	}
	if fields.Category != "" {
		sets = append(sets, "category = ?")
		args = append(args, string(fields.Category))
	}
	if fields.StableID != "" {
		sets = append(sets, "stable_id = ?")
		args = append(args, fields.StableID)
	}
	if fields.Client != "" {
		sets = append(sets, "client = ?")
		args = append(args, fields.Client)
	}
	if fields.Date != nil {
		sets = append(sets, "record_date = ?")
		args = append(args, formatDate(*fields.Date))
	}
	if fields.BillingMonthHours != nil {
		sets = append(sets, "billing_month_hours = ?")
		args = append(args, *fields.BillingMonthHours)
	}
	args = append(args, recordID)

	query := `UPDATE records SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("record %s: %w", recordID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteRecordRepo) GetByID(ctx context.Context, id string) (*domain.StoredRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE id = ?`
	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record: %w", ErrNotFound)
	}
	return rec, err
}

// ListByCollection lists records in a collection, optionally limited to one date.
func (r *SQLiteRecordRepo) ListByCollection(ctx context.Context, collectionID string, date *time.Time) ([]*domain.StoredRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE collection_id = ?`
	args := []any{collectionID}
	if date != nil {
		query += ` AND record_date = ?`
		args = append(args, formatDate(*date))
	}
	query += ` ORDER BY record_date, rowid`

	out, err := db.QueryAll(ctx, r.db, scanRecord, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	return out, nil
}

func scanRecord(row db.RowScanner) (*domain.StoredRecord, error) {
	var rec domain.StoredRecord
	var billing sql.NullFloat64
	var category, recordDate, createdAt, updatedAt string

	err := row.Scan(
		&rec.ID, &rec.CollectionID, &rec.StableID, &rec.Name, &rec.DurationHours, &billing,
		&recordDate, &category, &rec.Client, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning record: %w", err)
	}

	rec.BillingMonthHours = parseNullableFloat(billing)
	rec.Category = domain.Category(category)
	if rec.RecordDate, err = time.Parse(dateLayout, recordDate); err != nil {
		return nil, fmt.Errorf("parsing record_date: %w", err)
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &rec, nil
}
