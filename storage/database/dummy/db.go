package dummydb

import (
	"sync"

	"github.com/tshiala/kampus/core/catalog"
	"github.com/tshiala/kampus/core/finance"
	"github.com/tshiala/kampus/core/user"
)

type enrollmentKey struct {
	studentID int
	courseID  int
}

// DB is an in-memory store mirroring the relational schema, used by
// service and API tests.
type DB struct {
	sync.RWMutex

	users        map[int]*user.User
	institutes   map[int]*catalog.Institute
	courses      map[int]*catalog.Course
	semesters    map[int]*catalog.Semester
	enrollments  map[enrollmentKey]bool
	standardFees map[int]*finance.StandardFee
	studentFees  map[int]*finance.StudentFee
	payments     map[int]*finance.Payment
	receipts     map[int]*finance.Receipt

	seq map[string]int
}

func Open() (*DB, error) {
	db := &DB{
		users:        make(map[int]*user.User),
		institutes:   make(map[int]*catalog.Institute),
		courses:      make(map[int]*catalog.Course),
		semesters:    make(map[int]*catalog.Semester),
		enrollments:  make(map[enrollmentKey]bool),
		standardFees: make(map[int]*finance.StandardFee),
		studentFees:  make(map[int]*finance.StudentFee),
		payments:     make(map[int]*finance.Payment),
		receipts:     make(map[int]*finance.Receipt),
		seq:          make(map[string]int),
	}
	return db, nil
}

// nextID must be called with the write lock held.
func (db *DB) nextID(table string) int {
	db.seq[table]++
	return db.seq[table]
}

// Reset empties all tables and restarts the id sequences.
func (db *DB) Reset() {
	db.Lock()
	defer db.Unlock()

	db.users = make(map[int]*user.User)
	db.institutes = make(map[int]*catalog.Institute)
	db.courses = make(map[int]*catalog.Course)
	db.semesters = make(map[int]*catalog.Semester)
	db.enrollments = make(map[enrollmentKey]bool)
	db.standardFees = make(map[int]*finance.StandardFee)
	db.studentFees = make(map[int]*finance.StudentFee)
	db.payments = make(map[int]*finance.Payment)
	db.receipts = make(map[int]*finance.Receipt)
	db.seq = make(map[string]int)
}
