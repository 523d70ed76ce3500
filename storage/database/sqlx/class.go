package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/hocdan/guitarschool/core"
	"github.com/hocdan/guitarschool/core/schedule"
)

const classColumns = "id, name, grade, sessions, created_at, updated_at"

type classRow struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	Grade     int            `db:"grade"`
	Sessions  types.JSONText `db:"sessions"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

type classRepository struct {
	exec sqlx.ExtContext
}

var _ schedule.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(exec sqlx.ExtContext) schedule.Repository {
	return &classRepository{exec: exec}
}

func (repo classRepository) toRow(class schedule.ClassSchedule) (classRow, error) {
	sessions := class.Sessions
	if sessions == nil {
		sessions = []schedule.Session{}
	}
	raw, err := json.Marshal(sessions)
	if err != nil {
		return classRow{}, wrapErr(err, "encoding sessions")
	}
	return classRow{
		ID:        class.ID,
		Name:      class.Name,
		Grade:     class.Grade,
		Sessions:  types.JSONText(raw),
		CreatedAt: class.CreatedAt.UTC(),
		UpdatedAt: class.UpdatedAt.UTC(),
	}, nil
}

func (repo classRepository) fromRow(row classRow) (schedule.ClassSchedule, error) {
	var sessions []schedule.Session
	if err := row.Sessions.Unmarshal(&sessions); err != nil {
		return schedule.ClassSchedule{}, errors.Wrapf(err, "decoding sessions of class %s", row.ID)
	}
	return schedule.ClassSchedule{
		ID:        row.ID,
		Name:      row.Name,
		Grade:     row.Grade,
		Sessions:  sessions,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}, nil
}

// trapNoRowsErr maps psql "no rows" err to schedule.ErrNotFound
func (repo classRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return schedule.ErrNotFound
	}
	return wrapErr(err, msg)
}

func (repo classRepository) CreateClass(ctx context.Context, class schedule.ClassSchedule) (schedule.ClassSchedule, error) {
	class.ID = uuid.NewString()
	row, err := repo.toRow(class)
	if err != nil {
		return schedule.ClassSchedule{}, err
	}

	q := `INSERT INTO classes (` + classColumns + `)
		VALUES (:id, :name, :grade, :sessions, :created_at, :updated_at)`
	if _, err = sqlx.NamedExecContext(ctx, repo.exec, q, row); err != nil {
		return schedule.ClassSchedule{}, wrapErr(err, "inserting class")
	}
	return repo.fromRow(row)
}

// buildClassQuery turns the filter and ordering into a SELECT with positional args.
func buildClassQuery(filter *schedule.QueryFilter, ordering []core.DBOrdering) (string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.Search != "" {
			where = append(where, "name ILIKE '%' || "+arg(filter.Search)+" || '%'")
		}
		if filter.Grade != 0 {
			where = append(where, "grade = "+arg(filter.Grade))
		}
		if filter.DayOfWeek != nil {
			where = append(where, "sessions @> "+arg(fmt.Sprintf(`[{"day_of_week": %d}]`, *filter.DayOfWeek))+"::jsonb")
		}
	}

	var b strings.Builder
	b.WriteString("SELECT " + classColumns + " FROM classes")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}

	order := make([]string, 0, len(ordering)+2)
	for _, o := range ordering {
		if isOrderingField(o.Field) {
			order = append(order, o.String())
		}
	}
	order = append(order, "name ASC", "id ASC")
	b.WriteString(" ORDER BY " + strings.Join(order, ", "))
	return b.String(), args
}

func isOrderingField(field string) bool {
	for _, f := range schedule.OrderingFields {
		if f == field {
			return true
		}
	}
	return false
}

func (repo classRepository) QueryClasses(
	ctx context.Context,
	filter *schedule.QueryFilter,
	ordering []core.DBOrdering,
) ([]schedule.ClassSchedule, error) {
	q, args := buildClassQuery(filter, ordering)
	var rows []classRow
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, q, args...); err != nil {
		return nil, wrapErr(err, "selecting classes")
	}

	classes := make([]schedule.ClassSchedule, 0, len(rows))
	for _, row := range rows {
		class, err := repo.fromRow(row)
		if err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}
	return classes, nil
}

func (repo classRepository) GetClass(ctx context.Context, id string) (schedule.ClassSchedule, error) {
	if _, err := uuid.Parse(id); err != nil {
		return schedule.ClassSchedule{}, schedule.ErrNotFound
	}
	var row classRow
	q := "SELECT " + classColumns + " FROM classes WHERE id = $1"
	if err := sqlx.GetContext(ctx, repo.exec, &row, q, id); err != nil {
		return schedule.ClassSchedule{}, repo.trapNoRowsErr(err, "selecting class")
	}
	return repo.fromRow(row)
}

func (repo classRepository) UpdateClass(ctx context.Context, class schedule.ClassSchedule) (schedule.ClassSchedule, error) {
	if _, err := uuid.Parse(class.ID); err != nil {
		return schedule.ClassSchedule{}, schedule.ErrNotFound
	}
	row, err := repo.toRow(class)
	if err != nil {
		return schedule.ClassSchedule{}, err
	}

	q := `UPDATE classes SET name = $2, grade = $3, sessions = $4, updated_at = $5
		WHERE id = $1 RETURNING ` + classColumns
	var updated classRow
	err = sqlx.GetContext(ctx, repo.exec, &updated, q, row.ID, row.Name, row.Grade, row.Sessions, row.UpdatedAt)
	if err != nil {
		return schedule.ClassSchedule{}, repo.trapNoRowsErr(err, "updating class")
	}
	return repo.fromRow(updated)
}

func (repo classRepository) DeleteClassesByID(ctx context.Context, ids ...string) (int, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return 0, nil
	}

	res, err := repo.exec.ExecContext(ctx, "DELETE FROM classes WHERE id = ANY($1::uuid[])", pq.Array(valid))
	if err != nil {
		return 0, wrapErr(err, "deleting classes")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrapErr(err, "deleting classes")
	}
	return int(n), nil
}
