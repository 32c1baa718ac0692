package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/rawdahq/rawda/core/billing"
)

// directory joins the registry tables into billing's view of the billable
// populations. Read-only, so it queries the root handle directly.
type directory struct {
	db *sqlx.DB
}

var _ billing.Directory = (*directory)(nil) // interface compliance check

func NewDirectory(db *sql.DB) billing.Directory {
	return &directory{db: sqlx.NewDb(db, "postgres")}
}

type relationshipRow struct {
	StudentID    string          `db:"student_id"`
	StudentName  string          `db:"student_name"`
	CourseID     sql.NullString  `db:"course_id"`
	CourseTitle  sql.NullString  `db:"course_title"`
	MonthlyPrice decimal.Decimal `db:"monthly_price"`
}

func (dir *directory) ListActiveRelationships(ctx context.Context, pop billing.Population) ([]billing.Relationship, error) {
	var query string
	switch pop {
	case billing.PopulationRegular:
		query = `SELECT s.id AS student_id, s.first_name || ' ' || s.last_name AS student_name,
				NULL::uuid AS course_id, NULL::text AS course_title, 0::numeric AS monthly_price
			FROM students s
			WHERE s.status = 'ACTIVE'
			ORDER BY s.last_name, s.first_name`
	case billing.PopulationExtra:
		query = `SELECT e.student_id, x.first_name || ' ' || x.last_name AS student_name,
				e.course_id, c.title AS course_title, c.monthly_price
			FROM extra_enrollments e
			JOIN extra_students x ON x.id = e.student_id
			JOIN extra_courses c ON c.id = e.course_id
			WHERE e.status = 'ACTIVE'
			ORDER BY x.last_name, x.first_name`
	default:
		return nil, billing.ErrRelationshipNotFound
	}

	rows := make([]relationshipRow, 0)
	if err := dir.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "listing billable relationships")
	}

	rels := make([]billing.Relationship, 0, len(rows))
	for _, row := range rows {
		rels = append(rels, row.relationship(pop))
	}
	return rels, nil
}

func (dir *directory) GetRelationship(ctx context.Context, pop billing.Population, studentID, courseID string) (billing.Relationship, error) {
	var query string
	args := []interface{}{studentID}
	switch pop {
	case billing.PopulationRegular:
		query = `SELECT s.id AS student_id, s.first_name || ' ' || s.last_name AS student_name,
				NULL::uuid AS course_id, NULL::text AS course_title, 0::numeric AS monthly_price
			FROM students s
			WHERE s.id = $1`
	case billing.PopulationExtra:
		query = `SELECT x.id AS student_id, x.first_name || ' ' || x.last_name AS student_name,
				c.id AS course_id, c.title AS course_title, c.monthly_price
			FROM extra_students x
			JOIN extra_courses c ON c.id = $2
			WHERE x.id = $1`
		args = append(args, courseID)
	default:
		return billing.Relationship{}, billing.ErrRelationshipNotFound
	}

	var row relationshipRow
	if err := dir.db.GetContext(ctx, &row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return billing.Relationship{}, billing.ErrRelationshipNotFound
		}
		return billing.Relationship{}, errors.Wrap(err, "getting billable relationship")
	}
	return row.relationship(pop), nil
}

func (row relationshipRow) relationship(pop billing.Population) billing.Relationship {
	return billing.Relationship{
		Population:   pop,
		StudentID:    row.StudentID,
		StudentName:  row.StudentName,
		CourseID:     row.CourseID.String,
		CourseTitle:  row.CourseTitle.String,
		MonthlyPrice: row.MonthlyPrice,
	}
}
