package repository

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/draftboard/internal/db"
	"github.com/alexanderramin/draftboard/internal/domain"
)

// SQLiteNoteRepo implements NoteRepo using a SQLite database.
type SQLiteNoteRepo struct {
	db db.DBTX
}

// NewSQLiteNoteRepo creates a new SQLiteNoteRepo. conn may be a *sql.DB or
// a *sql.Tx handed out by a UnitOfWork.
func NewSQLiteNoteRepo(conn db.DBTX) *SQLiteNoteRepo {
	return &SQLiteNoteRepo{db: conn}
}

const noteColumns = `id, title, content, tags, project_id, status, priority, target_release, due_date,
	stakeholders, generated_features, generated_tasks, canvas_data, created_at, updated_at`

func (r *SQLiteNoteRepo) Create(ctx context.Context, n *domain.Note) error {
	cols, err := encodeNoteColumns(n)
	if err != nil {
		return err
	}
	query := `INSERT INTO notes (` + noteColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		n.ID,
		n.Title,
		n.Content,
		cols.tags,
		nullableString(n.ProjectID),
		string(cmp.Or(n.Metadata.Status, domain.NoteDraft)),
		string(n.Metadata.Priority),
		n.Metadata.TargetRelease,
		nullableTimeToString(n.Metadata.DueDate, dateLayout),
		cols.stakeholders,
		cols.features,
		cols.tasks,
		n.CanvasData,
		n.CreatedAt.UTC().Format(time.RFC3339),
		n.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting note: %w", err)
	}
	return nil
}

func (r *SQLiteNoteRepo) GetByID(ctx context.Context, id string) (*domain.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = ?`
	n, err := scanNote(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("note %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return n, nil
}

func (r *SQLiteNoteRepo) List(ctx context.Context, filter NoteFilter) ([]*domain.Note, error) {
	var where []string
	var args []any
	if filter.ProjectID != "" {
		where = append(where, "project_id = ?")
		args = append(args, filter.ProjectID)
	}
	if filter.IDPrefix != "" {
		where = append(where, "id LIKE ? ESCAPE '\\'")
		args = append(args, escapeLike(filter.IDPrefix)+"%")
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Tag != "" {
		where = append(where, "EXISTS (SELECT 1 FROM json_each(notes.tags) WHERE json_each.value = ?)")
		args = append(args, filter.Tag)
	}

	query := `SELECT ` + noteColumns + ` FROM notes`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY updated_at DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	defer rows.Close()

	var notes []*domain.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notes: %w", err)
	}
	return notes, nil
}

func (r *SQLiteNoteRepo) ApplyPatch(ctx context.Context, id string, patch domain.NotePatch) error {
	var sets []string
	var args []any
	set := func(col string, val any) {
		sets = append(sets, col+" = ?")
		args = append(args, val)
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Content != nil {
		set("content", *patch.Content)
	}
	if patch.Tags != nil {
		tags, err := toJSONColumn(domain.NormalizeTags(*patch.Tags))
		if err != nil {
			return err
		}
		set("tags", tags)
	}
	if patch.ProjectID != nil {
		set("project_id", nullableString(patch.ProjectID))
	}
	if patch.Metadata != nil {
		m := patch.Metadata
		stakeholders, err := toJSONColumn(m.Stakeholders)
		if err != nil {
			return err
		}
		set("status", string(cmp.Or(m.Status, domain.NoteDraft)))
		set("priority", string(m.Priority))
		set("target_release", m.TargetRelease)
		set("due_date", nullableTimeToString(m.DueDate, dateLayout))
		set("stakeholders", stakeholders)
	}
	if patch.GeneratedFeatures != nil {
		features, err := toJSONColumn(*patch.GeneratedFeatures)
		if err != nil {
			return err
		}
		set("generated_features", features)
	}
	if patch.GeneratedTasks != nil {
		tasks, err := toJSONColumn(*patch.GeneratedTasks)
		if err != nil {
			return err
		}
		set("generated_tasks", tasks)
	}
	if patch.CanvasData != nil {
		set("canvas_data", *patch.CanvasData)
	}

	set("updated_at", nowUTC())
	args = append(args, id)

	query := `UPDATE notes SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("patching note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("patching note: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteNoteRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	return nil
}

type encodedNoteColumns struct {
	tags, stakeholders, features, tasks string
}

func encodeNoteColumns(n *domain.Note) (encodedNoteColumns, error) {
	var cols encodedNoteColumns
	var err error
	if cols.tags, err = toJSONColumn(domain.NormalizeTags(n.Tags)); err != nil {
		return cols, err
	}
	if cols.stakeholders, err = toJSONColumn(n.Metadata.Stakeholders); err != nil {
		return cols, err
	}
	if cols.features, err = toJSONColumn(n.GeneratedFeatures); err != nil {
		return cols, err
	}
	if cols.tasks, err = toJSONColumn(n.GeneratedTasks); err != nil {
		return cols, err
	}
	return cols, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*domain.Note, error) {
	var n domain.Note
	var tagsJSON, stakeholdersJSON, featuresJSON, tasksJSON string
	var statusStr, priorityStr, createdAtStr, updatedAtStr string
	var projectID, dueDateStr sql.NullString

	err := row.Scan(
		&n.ID, &n.Title, &n.Content, &tagsJSON, &projectID,
		&statusStr, &priorityStr, &n.Metadata.TargetRelease, &dueDateStr,
		&stakeholdersJSON, &featuresJSON, &tasksJSON, &n.CanvasData,
		&createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning note: %w", err)
	}

	n.Metadata.Status = domain.NoteStatus(statusStr)
	n.Metadata.Priority = domain.Priority(priorityStr)
	n.Metadata.DueDate = parseNullableTime(dueDateStr, dateLayout)
	if projectID.Valid && projectID.String != "" {
		pid := projectID.String
		n.ProjectID = &pid
	}

	if n.Tags, err = fromJSONColumn[string](tagsJSON, "tags"); err != nil {
		return nil, err
	}
	if n.Metadata.Stakeholders, err = fromJSONColumn[string](stakeholdersJSON, "stakeholders"); err != nil {
		return nil, err
	}
	if n.GeneratedFeatures, err = fromJSONColumn[domain.GeneratedItem](featuresJSON, "generated_features"); err != nil {
		return nil, err
	}
	if n.GeneratedTasks, err = fromJSONColumn[domain.GeneratedItem](tasksJSON, "generated_tasks"); err != nil {
		return nil, err
	}

	if n.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if n.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &n, nil
}
