package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/shraddhaWorks/new-timelly-sub001/core"
	"github.com/shraddhaWorks/new-timelly-sub001/core/school"
)

type SchoolRepository struct {
	db *DB
}

var _ school.Repository = (*SchoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *DB) *SchoolRepository {
	return &SchoolRepository{db: db}
}

// AddSchool seeds a school; test helper.
func (repo *SchoolRepository) AddSchool(sch school.School) school.School {
	if sch.ID == "" {
		sch.ID = uuid.New().String()
	}
	repo.db.write(func() {
		s := sch
		repo.db.schools[s.ID] = &s
	})
	return sch
}

// AddAdmin binds a user to a school's administrators relation; test helper.
func (repo *SchoolRepository) AddAdmin(schoolID, userID string) {
	repo.db.write(func() {
		repo.db.schoolAdmins[schoolID] = append(repo.db.schoolAdmins[schoolID], userID)
	})
}

func (repo *SchoolRepository) GetSchoolByID(_ context.Context, id string, _ ...core.DBExecutor) (school.School, error) {
	var (
		found school.School
		err   = school.ErrNotFound
	)
	repo.db.read(func() {
		if sch, ok := repo.db.schools[id]; ok {
			found, err = *sch, nil
		}
	})
	return found, err
}

func (repo *SchoolRepository) FirstSchoolIDForAdmin(_ context.Context, userID string, _ ...core.DBExecutor) (string, error) {
	var (
		found string
		err   = school.ErrNotFound
	)
	repo.db.read(func() {
		ids := make([]string, 0, len(repo.db.schoolAdmins))
		for id := range repo.db.schoolAdmins {
			ids = append(ids, id)
		}
		sort.Strings(ids) // deterministic "first"
		for _, id := range ids {
			for _, admin := range repo.db.schoolAdmins[id] {
				if admin == userID {
					found, err = id, nil
					return
				}
			}
		}
	})
	return found, err
}
