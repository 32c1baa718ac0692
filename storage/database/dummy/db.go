package dummydb

import (
	"sync"

	"github.com/rawdahq/rawda/core/billing"
	"github.com/rawdahq/rawda/core/course"
	"github.com/rawdahq/rawda/core/staff"
	"github.com/rawdahq/rawda/core/student"
)

// DB is the in-memory store used as a test double and for local hacking.
// Each table guards itself; repositories are atomic without transactions.
type (
	DB struct {
		invoice      *invoiceTable
		student      *studentTable
		staff        *staffTable
		course       *courseTable
		extraStudent *extraStudentTable
		enrollment   *enrollmentTable
	}

	invoiceTable struct {
		sync.RWMutex
		table map[string]*billing.Invoice
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
	}

	staffTable struct {
		sync.RWMutex
		table map[string]*staff.Staff
	}

	courseTable struct {
		sync.RWMutex
		table map[string]*course.Course
	}

	extraStudentTable struct {
		sync.RWMutex
		table map[string]*course.ExtraStudent
	}

	enrollmentTable struct {
		sync.RWMutex
		table map[string]*course.Enrollment
	}
)

func Open() (*DB, error) {
	db := &DB{
		invoice:      &invoiceTable{table: make(map[string]*billing.Invoice)},
		student:      &studentTable{table: make(map[string]*student.Student)},
		staff:        &staffTable{table: make(map[string]*staff.Staff)},
		course:       &courseTable{table: make(map[string]*course.Course)},
		extraStudent: &extraStudentTable{table: make(map[string]*course.ExtraStudent)},
		enrollment:   &enrollmentTable{table: make(map[string]*course.Enrollment)},
	}
	return db, nil
}
