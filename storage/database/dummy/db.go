package dummydb

import (
	"context"
	"database/sql"
	"sync"

	"github.com/pkg/errors"

	"github.com/shraddhaWorks/new-timelly-sub001/core"
	"github.com/shraddhaWorks/new-timelly-sub001/core/school"
	"github.com/shraddhaWorks/new-timelly-sub001/core/student"
	"github.com/shraddhaWorks/new-timelly-sub001/core/tc"
	"github.com/shraddhaWorks/new-timelly-sub001/core/user"
)

var errRawSQLNotSupported = errors.New("dummydb: raw SQL not supported")

type (
	// DB is an in-memory store for tests. Mutations issued through a Tx are
	// staged and only applied on Commit, so rollback semantics behave like
	// the real thing.
	DB struct {
		mu sync.RWMutex

		users        map[string]*user.User
		schools      map[string]*school.School
		schoolAdmins map[string][]string // schoolID -> admin user ids
		students     map[string]*student.Student
		histories    map[string]*student.History
		tcs          map[string]*tc.TransferCertificate
	}

	// Tx stages mutations until Commit.
	Tx struct {
		db  *DB
		ops []func()
	}
)

var (
	_ core.DB           = (*DB)(nil)
	_ core.DBTransactor = (*Tx)(nil)
)

func Open() (*DB, error) {
	return &DB{
		users:        make(map[string]*user.User),
		schools:      make(map[string]*school.School),
		schoolAdmins: make(map[string][]string),
		students:     make(map[string]*student.Student),
		histories:    make(map[string]*student.History),
		tcs:          make(map[string]*tc.TransferCertificate),
	}, nil
}

func (db *DB) BeginTx(_ context.Context, _ *sql.TxOptions) (core.DBTransactor, error) {
	return &Tx{db: db}, nil
}

// read runs fn under the read lock.
func (db *DB) read(fn func()) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	fn()
}

// write runs fn under the write lock.
func (db *DB) write(fn func()) {
	db.mu.Lock()
	defer db.mu.Unlock()
	fn()
}

func (tx *Tx) stage(fn func()) {
	tx.ops = append(tx.ops, fn)
}

func (tx *Tx) Commit() error {
	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()
	for _, op := range tx.ops {
		op()
	}
	tx.ops = nil
	return nil
}

func (tx *Tx) Rollback() error {
	tx.ops = nil
	return nil
}

// apply stages the mutation when exec carries a Tx, otherwise applies it
// immediately under the write lock.
func (db *DB) apply(exec []core.DBExecutor, fn func()) {
	if len(exec) > 0 {
		if tx, ok := exec[0].(*Tx); ok {
			tx.stage(fn)
			return
		}
	}
	db.write(fn)
}

// raw SQL surface; unused by the dummy repositories

func (db *DB) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, errRawSQLNotSupported
}

func (db *DB) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errRawSQLNotSupported
}

func (db *DB) GetContext(context.Context, interface{}, string, ...interface{}) error {
	return errRawSQLNotSupported
}

func (db *DB) SelectContext(context.Context, interface{}, string, ...interface{}) error {
	return errRawSQLNotSupported
}

func (tx *Tx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, errRawSQLNotSupported
}

func (tx *Tx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errRawSQLNotSupported
}

func (tx *Tx) GetContext(context.Context, interface{}, string, ...interface{}) error {
	return errRawSQLNotSupported
}

func (tx *Tx) SelectContext(context.Context, interface{}, string, ...interface{}) error {
	return errRawSQLNotSupported
}
