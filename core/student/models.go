package student

import (
	"context"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/shraddhaWorks/new-timelly-sub001/core"
)

var ErrNotFound = errors.New("student not found")

type Student struct {
	ID         string      `db:"id" json:"id"`
	UserID     string      `db:"user_id" json:"user_id"`
	SchoolID   string      `db:"school_id" json:"school_id"`
	ClassID    null.String `db:"class_id" json:"class_id"`
	FatherName string      `db:"father_name" json:"father_name"`
	AadhaarNo  string      `db:"aadhaar_no" json:"aadhaar_no"`
	PhoneNo    string      `db:"phone_no" json:"phone_no"`
	RollNo     string      `db:"roll_no" json:"roll_no"`
	DOB        null.Time   `db:"dob" json:"dob"`
	Address    string      `db:"address" json:"address"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"` // UTC
}

// History is a point-in-time snapshot of a Student, taken when a lifecycle
// event removes them from active rolls. Insert-only.
type History struct {
	ID                string      `db:"id" json:"id"`
	OriginalStudentID string      `db:"original_student_id" json:"original_student_id"`
	UserID            string      `db:"user_id" json:"user_id"`
	SchoolID          string      `db:"school_id" json:"school_id"`
	ClassID           null.String `db:"class_id" json:"class_id"` // class at the time of the event
	FatherName        string      `db:"father_name" json:"father_name"`
	AadhaarNo         string      `db:"aadhaar_no" json:"aadhaar_no"`
	PhoneNo           string      `db:"phone_no" json:"phone_no"`
	RollNo            string      `db:"roll_no" json:"roll_no"`
	DOB               null.Time   `db:"dob" json:"dob"`
	Address           string      `db:"address" json:"address"`
	StudentCreatedAt  time.Time   `db:"student_created_at" json:"student_created_at"`
	DeactivatedBy     string      `db:"deactivated_by" json:"deactivated_by"`
	Reason            string      `db:"reason" json:"reason"`
	CreatedAt         time.Time   `db:"created_at" json:"created_at"` // UTC
}

// Snapshot captures the student's current fields into a History record.
func Snapshot(stu Student, deactivatedBy, reason string) History {
	return History{
		OriginalStudentID: stu.ID,
		UserID:            stu.UserID,
		SchoolID:          stu.SchoolID,
		ClassID:           stu.ClassID,
		FatherName:        stu.FatherName,
		AadhaarNo:         stu.AadhaarNo,
		PhoneNo:           stu.PhoneNo,
		RollNo:            stu.RollNo,
		DOB:               stu.DOB,
		Address:           stu.Address,
		StudentCreatedAt:  stu.CreatedAt,
		DeactivatedBy:     deactivatedBy,
		Reason:            reason,
		CreatedAt:         time.Now().UTC(),
	}
}

type Repository interface {
	GetStudentByID(ctx context.Context, id, schoolID string, exec ...core.DBExecutor) (Student, error)
	// DetachStudentFromClass nulls the student's class while leaving the
	// record and its account untouched.
	DetachStudentFromClass(ctx context.Context, id string, exec ...core.DBExecutor) error
	CreateStudentHistory(ctx context.Context, hist History, exec ...core.DBExecutor) (History, error)
}
