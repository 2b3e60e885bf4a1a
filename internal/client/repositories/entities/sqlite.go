package entities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/geosync/internal/client/models"
	"github.com/dmitrijs2005/geosync/internal/common"
	"github.com/dmitrijs2005/geosync/internal/dbx"
	"github.com/dmitrijs2005/geosync/internal/timex"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func checkTable(t models.Table) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", common.ErrUnknownTable, t)
	}
	return nil
}

// columns lists the writable columns of t in a fixed order.
func columns(t models.Table) []string {
	cols := []string{"uuid", "name", "last_updated", "deleted_at"}
	if pc := t.ParentColumn(); pc != "" {
		cols = append(cols, pc)
	}
	return cols
}

func values(t models.Table, r models.Record) []any {
	args := []any{r.UUID, r.Name, r.LastUpdated, nullable(r.DeletedAt)}
	if t.ParentColumn() != "" {
		args = append(args, nullable(r.ParentUUID))
	}
	return args
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func fromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func upsertQuery(t models.Table, guarded bool) string {
	cols := columns(t)
	set := make([]string, 0, len(cols)-1)
	for _, c := range cols[1:] {
		set = append(set, fmt.Sprintf("%s = excluded.%s", c, c))
	}
	q := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)
		ON CONFLICT(uuid) DO UPDATE SET %s`,
		t, strings.Join(cols, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "),
		strings.Join(set, ", "))
	if guarded {
		q += fmt.Sprintf(" WHERE excluded.last_updated >= %s.last_updated", t)
	}
	return q
}

// Save upserts by uuid unconditionally.
func (r *SQLiteRepository) Save(ctx context.Context, t models.Table, rec *models.Record) (string, error) {
	if err := checkTable(t); err != nil {
		return "", err
	}
	if rec.UUID == "" {
		rec.UUID = common.NewID()
	}
	if rec.LastUpdated == "" {
		rec.LastUpdated = timex.Now()
	}

	if _, err := r.db.ExecContext(ctx, upsertQuery(t, false), values(t, *rec)...); err != nil {
		return "", fmt.Errorf("failed to save %s[%s]: %w", t, rec.UUID, err)
	}
	return rec.UUID, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, t models.Table, uuid string) (*models.Record, error) {
	if err := checkTable(t); err != nil {
		return nil, err
	}

	parent := "NULL"
	if pc := t.ParentColumn(); pc != "" {
		parent = pc
	}
	query := fmt.Sprintf(`SELECT uuid, name, last_updated, deleted_at, %s FROM %s WHERE uuid = ?`, parent, t)

	var (
		rec               models.Record
		deleted, parentID sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, uuid).Scan(&rec.UUID, &rec.Name, &rec.LastUpdated, &deleted, &parentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s[%s]: %w", t, uuid, err)
	}
	rec.DeletedAt = fromNull(deleted)
	rec.ParentUUID = fromNull(parentID)
	return &rec, nil
}

func (r *SQLiteRepository) List(ctx context.Context, t models.Table) ([]models.RecordView, error) {
	if err := checkTable(t); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT e.uuid, e.name, e.last_updated, e.deleted_at, NULL, NULL
		FROM %s e WHERE e.deleted_at IS NULL ORDER BY e.name ASC`, t)
	if pc := t.ParentColumn(); pc != "" {
		query = fmt.Sprintf(`SELECT e.uuid, e.name, e.last_updated, e.deleted_at, e.%s, p.name
			FROM %s e LEFT JOIN %s p ON p.uuid = e.%s
			WHERE e.deleted_at IS NULL ORDER BY e.name ASC`, pc, t, t.ParentTable(), pc)
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", t, err)
	}
	defer rows.Close()

	result := []models.RecordView{}
	for rows.Next() {
		var (
			v                             models.RecordView
			deleted, parentID, parentName sql.NullString
		)
		if err := rows.Scan(&v.UUID, &v.Name, &v.LastUpdated, &deleted, &parentID, &parentName); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", t, err)
		}
		v.DeletedAt = fromNull(deleted)
		v.ParentUUID = fromNull(parentID)
		v.ParentName = fromNull(parentName)
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", t, err)
	}
	return result, nil
}

// SoftDelete expects exactly one live row to be affected.
func (r *SQLiteRepository) SoftDelete(ctx context.Context, t models.Table, uuid string, at string) error {
	if err := checkTable(t); err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE %s SET deleted_at = ?, last_updated = ? WHERE uuid = ? AND deleted_at IS NULL`, t)
	res, err := r.db.ExecContext(ctx, query, at, at, uuid)
	if err != nil {
		return fmt.Errorf("failed to delete %s[%s]: %w", t, uuid, err)
	}
	n, err := dbx.Affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) SoftDeleteIfChildless(ctx context.Context, t models.Table, uuid string, at string) error {
	if err := checkTable(t); err != nil {
		return err
	}
	child := t.ChildTable()
	if child == "" {
		return r.SoftDelete(ctx, t, uuid, at)
	}

	query := fmt.Sprintf(`UPDATE %s SET deleted_at = ?, last_updated = ?
		WHERE uuid = ? AND deleted_at IS NULL
		AND NOT EXISTS (SELECT 1 FROM %s c WHERE c.%s = ? AND c.deleted_at IS NULL)`,
		t, child, child.ParentColumn())
	res, err := r.db.ExecContext(ctx, query, at, at, uuid, uuid)
	if err != nil {
		return fmt.Errorf("failed to delete %s[%s]: %w", t, uuid, err)
	}
	n, err := dbx.Affected(res)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	// Nothing changed: tell a missing row from a guarded one.
	rec, err := r.Get(ctx, t, uuid)
	if err != nil {
		return err
	}
	if rec.DeletedAt != nil {
		return common.ErrNotFound
	}
	return common.ErrHasChildren
}

func (r *SQLiteRepository) HasChildren(ctx context.Context, t models.Table, parentUUID string) (bool, error) {
	if err := checkTable(t); err != nil {
		return false, err
	}
	child := t.ChildTable()
	if child == "" {
		return false, nil
	}

	var n int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = ? AND deleted_at IS NULL`, child, child.ParentColumn())
	if err := r.db.QueryRowContext(ctx, query, parentUUID).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to count %s of %s[%s]: %w", child, t, parentUUID, err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) ApplyRemote(ctx context.Context, t models.Table, rec models.Record) (bool, error) {
	if err := checkTable(t); err != nil {
		return false, err
	}
	if rec.UUID == "" {
		return false, fmt.Errorf("%w: empty uuid", common.ErrValidation)
	}
	if rec.LastUpdated == "" {
		rec.LastUpdated = timex.Now()
	}

	res, err := r.db.ExecContext(ctx, upsertQuery(t, true), values(t, rec)...)
	if err != nil {
		return false, fmt.Errorf("failed to apply %s[%s]: %w", t, rec.UUID, err)
	}
	return dbx.Changed(res)
}

func (r *SQLiteRepository) ApplyRemoteDelete(ctx context.Context, t models.Table, uuid, deletedAt, lastUpdated string) (bool, error) {
	if err := checkTable(t); err != nil {
		return false, err
	}
	query := fmt.Sprintf(`UPDATE %s SET deleted_at = ?, last_updated = ? WHERE uuid = ? AND last_updated <= ?`, t)
	res, err := r.db.ExecContext(ctx, query, deletedAt, lastUpdated, uuid, lastUpdated)
	if err != nil {
		return false, fmt.Errorf("failed to apply delete %s[%s]: %w", t, uuid, err)
	}
	return dbx.Changed(res)
}

// Clear deletes children before parents.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	tables := models.Tables()
	for i := len(tables) - 1; i >= 0; i-- {
		if _, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, tables[i])); err != nil {
			return fmt.Errorf("failed to clear %s: %w", tables[i], err)
		}
	}
	return nil
}
