package dummydb

import (
	"context"
	"sort"

	"github.com/shraddhaWorks/new-timelly-sub001/core"
	"github.com/shraddhaWorks/new-timelly-sub001/core/tc"
)

type TCRepository struct {
	db *DB
}

var _ tc.Repository = (*TCRepository)(nil) // interface compliance check

func NewTCRepository(db *DB) *TCRepository {
	return &TCRepository{db: db}
}

func (repo *TCRepository) CreateTC(_ context.Context, cert tc.TransferCertificate, exec ...core.DBExecutor) (tc.TransferCertificate, error) {
	repo.db.apply(exec, func() {
		c := cert
		repo.db.tcs[c.ID] = &c
	})
	return cert, nil
}

func (repo *TCRepository) get(id, schoolID string) (tc.TransferCertificate, error) {
	var (
		found tc.TransferCertificate
		err   = tc.ErrNotFound
	)
	repo.db.read(func() {
		if cert, ok := repo.db.tcs[id]; ok && cert.SchoolID == schoolID {
			found, err = *cert, nil
		}
	})
	return found, err
}

func (repo *TCRepository) GetTCByID(_ context.Context, id, schoolID string, _ ...core.DBExecutor) (tc.TransferCertificate, error) {
	return repo.get(id, schoolID)
}

func (repo *TCRepository) GetTCByIDForUpdate(_ context.Context, id, schoolID string, _ ...core.DBExecutor) (tc.TransferCertificate, error) {
	// no real row locks here; tests are single-actor
	return repo.get(id, schoolID)
}

func (repo *TCRepository) FilterTCs(_ context.Context, schoolID string, filter tc.Filter, _ ...core.DBExecutor) ([]tc.TransferCertificate, error) {
	certs := make([]tc.TransferCertificate, 0)
	repo.db.read(func() {
		for _, cert := range repo.db.tcs {
			if cert.SchoolID != schoolID {
				continue
			}
			if filter.Status != "" && cert.Status != filter.Status {
				continue
			}
			if filter.StudentID != "" && cert.StudentID != filter.StudentID {
				continue
			}
			certs = append(certs, *cert)
		}
	})
	sort.Slice(certs, func(i, j int) bool { return certs[i].CreatedAt.After(certs[j].CreatedAt) })
	return certs, nil
}

func (repo *TCRepository) UpdateTC(_ context.Context, cert tc.TransferCertificate, exec ...core.DBExecutor) (tc.TransferCertificate, error) {
	repo.db.apply(exec, func() {
		c := cert
		repo.db.tcs[c.ID] = &c
	})
	return cert, nil
}
