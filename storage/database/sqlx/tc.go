package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/shraddhaWorks/new-timelly-sub001/core"
	"github.com/shraddhaWorks/new-timelly-sub001/core/tc"
)

type tcRepository struct {
	exec core.DBExecutor
}

var _ tc.Repository = (*tcRepository)(nil) // interface compliance check

func NewTCRepository(exec core.DBExecutor) *tcRepository {
	return &tcRepository{exec: exec}
}

func (repo *tcRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

const tcColumns = `id, school_id, student_id, status, reason, issued_date, tc_document_url, approved_by_id, requested_by_id, created_at, updated_at`

func (repo *tcRepository) CreateTC(ctx context.Context, cert tc.TransferCertificate, exec ...core.DBExecutor) (tc.TransferCertificate, error) {
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO transfer_certificate (`+tcColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		cert.ID, cert.SchoolID, cert.StudentID, cert.Status, cert.Reason,
		cert.IssuedDate, cert.TCDocumentURL, cert.ApprovedByID, cert.RequestedByID,
		cert.CreatedAt, cert.UpdatedAt)
	if err != nil {
		return tc.TransferCertificate{}, errors.Wrap(err, "inserting transfer certificate")
	}
	return cert, nil
}

func (repo *tcRepository) get(ctx context.Context, id, schoolID, suffix string, exec []core.DBExecutor) (tc.TransferCertificate, error) {
	var cert tc.TransferCertificate
	err := repo.getExec(exec).GetContext(ctx, &cert,
		`SELECT `+tcColumns+` FROM transfer_certificate WHERE id = $1 AND school_id = $2`+suffix,
		id, schoolID)
	if err != nil {
		return tc.TransferCertificate{}, trapNoRowsErr(err, tc.ErrNotFound, "getting transfer certificate")
	}
	return cert, nil
}

func (repo *tcRepository) GetTCByID(ctx context.Context, id, schoolID string, exec ...core.DBExecutor) (tc.TransferCertificate, error) {
	return repo.get(ctx, id, schoolID, "", exec)
}

func (repo *tcRepository) GetTCByIDForUpdate(ctx context.Context, id, schoolID string, exec ...core.DBExecutor) (tc.TransferCertificate, error) {
	return repo.get(ctx, id, schoolID, " FOR UPDATE", exec)
}

func (repo *tcRepository) FilterTCs(ctx context.Context, schoolID string, filter tc.Filter, exec ...core.DBExecutor) ([]tc.TransferCertificate, error) {
	query := `SELECT ` + tcColumns + ` FROM transfer_certificate WHERE school_id = $1`
	args := []interface{}{schoolID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = $2`
	}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		if filter.Status != "" {
			query += ` AND student_id = $3`
		} else {
			query += ` AND student_id = $2`
		}
	}
	query += ` ORDER BY created_at DESC`

	certs := make([]tc.TransferCertificate, 0)
	if err := repo.getExec(exec).SelectContext(ctx, &certs, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering transfer certificates")
	}
	return certs, nil
}

func (repo *tcRepository) UpdateTC(ctx context.Context, cert tc.TransferCertificate, exec ...core.DBExecutor) (tc.TransferCertificate, error) {
	_, err := repo.getExec(exec).ExecContext(ctx,
		`UPDATE transfer_certificate
		 SET status = $2, reason = $3, issued_date = $4, tc_document_url = $5,
		     approved_by_id = $6, updated_at = $7
		 WHERE id = $1`,
		cert.ID, cert.Status, cert.Reason, cert.IssuedDate, cert.TCDocumentURL,
		cert.ApprovedByID, cert.UpdatedAt)
	if err != nil {
		return tc.TransferCertificate{}, errors.Wrap(err, "updating transfer certificate")
	}
	return cert, nil
}
