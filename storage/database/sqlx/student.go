package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/shraddhaWorks/new-timelly-sub001/core"
	"github.com/shraddhaWorks/new-timelly-sub001/core/student"
)

type studentRepository struct {
	exec core.DBExecutor
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(exec core.DBExecutor) *studentRepository {
	return &studentRepository{exec: exec}
}

func (repo *studentRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

const studentColumns = `id, user_id, school_id, class_id, father_name, aadhaar_no, phone_no, roll_no, dob, address, created_at`

func (repo *studentRepository) GetStudentByID(ctx context.Context, id, schoolID string, exec ...core.DBExecutor) (student.Student, error) {
	var stu student.Student
	err := repo.getExec(exec).GetContext(ctx, &stu,
		`SELECT `+studentColumns+` FROM student WHERE id = $1 AND school_id = $2`, id, schoolID)
	if err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "getting student by id")
	}
	return stu, nil
}

func (repo *studentRepository) DetachStudentFromClass(ctx context.Context, id string, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx,
		`UPDATE student SET class_id = NULL WHERE id = $1`, id)
	return errors.Wrap(err, "detaching student from class")
}

func (repo *studentRepository) CreateStudentHistory(ctx context.Context, hist student.History, exec ...core.DBExecutor) (student.History, error) {
	if hist.ID == "" {
		hist.ID = uuid.New().String()
	}
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO student_history
		   (id, original_student_id, user_id, school_id, class_id, father_name,
		    aadhaar_no, phone_no, roll_no, dob, address, student_created_at,
		    deactivated_by, reason, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		hist.ID, hist.OriginalStudentID, hist.UserID, hist.SchoolID, hist.ClassID,
		hist.FatherName, hist.AadhaarNo, hist.PhoneNo, hist.RollNo, hist.DOB,
		hist.Address, hist.StudentCreatedAt, hist.DeactivatedBy, hist.Reason, hist.CreatedAt)
	if err != nil {
		return student.History{}, errors.Wrap(err, "inserting student history")
	}
	return hist, nil
}
