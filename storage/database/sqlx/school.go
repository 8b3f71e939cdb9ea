package sqlxrepos

import (
	"context"

	"github.com/shraddhaWorks/new-timelly-sub001/core"
	"github.com/shraddhaWorks/new-timelly-sub001/core/school"
)

type schoolRepository struct {
	exec core.DBExecutor
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(exec core.DBExecutor) *schoolRepository {
	return &schoolRepository{exec: exec}
}

func (repo *schoolRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo *schoolRepository) GetSchoolByID(ctx context.Context, id string, exec ...core.DBExecutor) (school.School, error) {
	var sch school.School
	err := repo.getExec(exec).GetContext(ctx, &sch,
		`SELECT id, name, code, created_at FROM school WHERE id = $1`, id)
	if err != nil {
		return school.School{}, trapNoRowsErr(err, school.ErrNotFound, "getting school by id")
	}
	return sch, nil
}

func (repo *schoolRepository) FirstSchoolIDForAdmin(ctx context.Context, userID string, exec ...core.DBExecutor) (string, error) {
	var id string
	err := repo.getExec(exec).GetContext(ctx, &id,
		`SELECT school_id FROM school_admin WHERE user_id = $1 ORDER BY created_at LIMIT 1`, userID)
	if err != nil {
		return "", trapNoRowsErr(err, school.ErrNotFound, "getting admin school")
	}
	return id, nil
}
