package inmemdb

import (
	"sync"

	"github.com/trezcool/dossiers/core/document"
	"github.com/trezcool/dossiers/core/student"
)

type (
	// DB keeps every table under one lock so that student deletes cascade atomically.
	DB struct {
		mutex     sync.RWMutex
		students  map[string]*student.Student
		documents map[string]map[document.Type]*document.Record // {studentID: {type: record}}
	}
)

func Open() *DB {
	return &DB{
		students:  make(map[string]*student.Student),
		documents: make(map[string]map[document.Type]*document.Record),
	}
}

// Reset empties every table.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.students = make(map[string]*student.Student)
	db.documents = make(map[string]map[document.Type]*document.Record)
}
