package dummydb

import (
	"context"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/shraddhaWorks/new-timelly-sub001/core"
	"github.com/shraddhaWorks/new-timelly-sub001/core/student"
)

type StudentRepository struct {
	db *DB

	// FailCreateHistory, when set, makes CreateStudentHistory fail with it;
	// used to exercise transaction rollback.
	FailCreateHistory error
}

var _ student.Repository = (*StudentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// AddStudent seeds a student; test helper.
func (repo *StudentRepository) AddStudent(stu student.Student) student.Student {
	if stu.ID == "" {
		stu.ID = uuid.New().String()
	}
	repo.db.write(func() {
		s := stu
		repo.db.students[s.ID] = &s
	})
	return stu
}

// Histories returns all history rows; test helper.
func (repo *StudentRepository) Histories() []student.History {
	var hists []student.History
	repo.db.read(func() {
		for _, h := range repo.db.histories {
			hists = append(hists, *h)
		}
	})
	return hists
}

func (repo *StudentRepository) GetStudentByID(_ context.Context, id, schoolID string, _ ...core.DBExecutor) (student.Student, error) {
	var (
		found student.Student
		err   = student.ErrNotFound
	)
	repo.db.read(func() {
		if stu, ok := repo.db.students[id]; ok && stu.SchoolID == schoolID {
			found, err = *stu, nil
		}
	})
	return found, err
}

func (repo *StudentRepository) DetachStudentFromClass(_ context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.apply(exec, func() {
		if stu, ok := repo.db.students[id]; ok {
			stu.ClassID = null.String{}
		}
	})
	return nil
}

func (repo *StudentRepository) CreateStudentHistory(_ context.Context, hist student.History, exec ...core.DBExecutor) (student.History, error) {
	if repo.FailCreateHistory != nil {
		return student.History{}, repo.FailCreateHistory
	}
	if hist.ID == "" {
		hist.ID = uuid.New().String()
	}
	repo.db.apply(exec, func() {
		h := hist
		repo.db.histories[h.ID] = &h
	})
	return hist, nil
}
