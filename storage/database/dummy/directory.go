package dummydb

import (
	"context"

	"github.com/rawdahq/rawda/core/billing"
	"github.com/rawdahq/rawda/core/course"
	"github.com/rawdahq/rawda/core/student"
)

// directory joins the registry tables into billing's view of the billable
// populations.
type directory struct {
	db *DB
}

var _ billing.Directory = (*directory)(nil) // interface compliance check

func NewDirectory(db *DB) billing.Directory {
	return &directory{db: db}
}

func (dir *directory) ListActiveRelationships(_ context.Context, pop billing.Population) ([]billing.Relationship, error) {
	switch pop {
	case billing.PopulationRegular:
		return dir.regularRelationships(), nil
	case billing.PopulationExtra:
		return dir.extraRelationships(), nil
	}
	return nil, billing.ErrRelationshipNotFound
}

func (dir *directory) GetRelationship(_ context.Context, pop billing.Population, studentID, courseID string) (billing.Relationship, error) {
	switch pop {
	case billing.PopulationRegular:
		dir.db.student.RLock()
		defer dir.db.student.RUnlock()
		if std, ok := dir.db.student.table[studentID]; ok {
			return regularRelationship(*std), nil
		}
	case billing.PopulationExtra:
		dir.db.extraStudent.RLock()
		std, ok := dir.db.extraStudent.table[studentID]
		dir.db.extraStudent.RUnlock()
		if !ok {
			break
		}
		dir.db.course.RLock()
		crs, ok := dir.db.course.table[courseID]
		dir.db.course.RUnlock()
		if !ok {
			break
		}
		return extraRelationship(*std, *crs), nil
	}
	return billing.Relationship{}, billing.ErrRelationshipNotFound
}

func (dir *directory) regularRelationships() []billing.Relationship {
	dir.db.student.RLock()
	defer dir.db.student.RUnlock()

	rels := make([]billing.Relationship, 0)
	for _, std := range dir.db.student.table {
		if std.Status == student.StatusActive {
			rels = append(rels, regularRelationship(*std))
		}
	}
	return rels
}

func (dir *directory) extraRelationships() []billing.Relationship {
	dir.db.enrollment.RLock()
	enrollments := make([]course.Enrollment, 0)
	for _, enr := range dir.db.enrollment.table {
		if enr.Status == course.EnrollmentActive {
			enrollments = append(enrollments, *enr)
		}
	}
	dir.db.enrollment.RUnlock()

	rels := make([]billing.Relationship, 0, len(enrollments))
	for _, enr := range enrollments {
		dir.db.extraStudent.RLock()
		std, stdOK := dir.db.extraStudent.table[enr.StudentID]
		dir.db.extraStudent.RUnlock()

		dir.db.course.RLock()
		crs, crsOK := dir.db.course.table[enr.CourseID]
		dir.db.course.RUnlock()

		if stdOK && crsOK {
			rels = append(rels, extraRelationship(*std, *crs))
		}
	}
	return rels
}

func regularRelationship(std student.Student) billing.Relationship {
	return billing.Relationship{
		Population:  billing.PopulationRegular,
		StudentID:   std.ID,
		StudentName: std.FullName(),
	}
}

func extraRelationship(std course.ExtraStudent, crs course.Course) billing.Relationship {
	return billing.Relationship{
		Population:   billing.PopulationExtra,
		StudentID:    std.ID,
		StudentName:  std.FullName(),
		CourseID:     crs.ID,
		CourseTitle:  crs.Title,
		MonthlyPrice: crs.MonthlyPrice,
	}
}
