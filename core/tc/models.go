package tc

import (
	"context"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/shraddhaWorks/new-timelly-sub001/core"
)

// Status of a TransferCertificate. PENDING is the initial state; APPROVED
// and REJECTED are terminal.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// TransferCertificate certifies a student's departure from a school. It is
// created PENDING by a parent request and mutated exactly once, by approval
// or rejection; never deleted.
type TransferCertificate struct {
	ID            string      `db:"id" json:"id"`
	SchoolID      string      `db:"school_id" json:"school_id"`
	StudentID     string      `db:"student_id" json:"student_id"`
	Status        Status      `db:"status" json:"status"`
	Reason        null.String `db:"reason" json:"reason"`
	IssuedDate    null.Time   `db:"issued_date" json:"issued_date"`
	TCDocumentURL null.String `db:"tc_document_url" json:"tc_document_url"`
	ApprovedByID  null.String `db:"approved_by_id" json:"approved_by_id"`
	RequestedByID null.String `db:"requested_by_id" json:"requested_by_id"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"` // UTC
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"` // UTC
}

// NewTransferCertificate contains information needed to request a new TC.
type NewTransferCertificate struct {
	StudentID string `json:"student_id" validate:"required,uuid4"`
	Reason    string `json:"reason"`
}

func (nt *NewTransferCertificate) Clean() {
	nt.StudentID = core.CleanString(nt.StudentID)
	nt.Reason = core.CleanString(nt.Reason)
}

// Filter narrows TC listings. Zero values mean "all".
type Filter struct {
	Status    Status `query:"status"`
	StudentID string `query:"student_id"`
}

func (f *Filter) Clean() {
	f.Status = Status(strings.ToUpper(core.CleanString(string(f.Status))))
	f.StudentID = core.CleanString(f.StudentID)
}

const scopeAll = "all"

func (f Filter) scopeKey() string {
	if f.StudentID != "" {
		return f.StudentID
	}
	return scopeAll
}

func (f Filter) statusKey() string {
	if f.Status == "" {
		return scopeAll
	}
	return string(f.Status)
}

type Repository interface {
	CreateTC(ctx context.Context, cert TransferCertificate, exec ...core.DBExecutor) (TransferCertificate, error)
	// GetTCByID is tenant-scoped: a TC of another school is ErrNotFound.
	GetTCByID(ctx context.Context, id, schoolID string, exec ...core.DBExecutor) (TransferCertificate, error)
	// GetTCByIDForUpdate locks the TC row until the surrounding transaction
	// resolves, serializing concurrent approvals.
	GetTCByIDForUpdate(ctx context.Context, id, schoolID string, exec ...core.DBExecutor) (TransferCertificate, error)
	FilterTCs(ctx context.Context, schoolID string, filter Filter, exec ...core.DBExecutor) ([]TransferCertificate, error)
	UpdateTC(ctx context.Context, cert TransferCertificate, exec ...core.DBExecutor) (TransferCertificate, error)
}
