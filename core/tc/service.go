package tc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/shraddhaWorks/new-timelly-sub001/core"
	"github.com/shraddhaWorks/new-timelly-sub001/core/school"
	"github.com/shraddhaWorks/new-timelly-sub001/core/student"
	"github.com/shraddhaWorks/new-timelly-sub001/core/user"
)

const noReasonText = "No reason provided"

type Service struct {
	db       core.DB
	repo     Repository
	students student.Repository
	schools  school.Repository
	users    user.Repository
	cache    core.Cache
	mailSvc  core.EmailService
	logger   core.Logger
	validate *validator.Validate
	conf     *core.Config
}

func NewService(
	db core.DB,
	repo Repository,
	students student.Repository,
	schools school.Repository,
	users user.Repository,
	cache core.Cache,
	mailSvc core.EmailService,
	logger core.Logger,
	validate *validator.Validate,
	conf *core.Config,
) *Service {
	return &Service{
		db:       db,
		repo:     repo,
		students: students,
		schools:  schools,
		users:    users,
		cache:    cache,
		mailSvc:  mailSvc,
		logger:   logger,
		validate: validate,
		conf:     conf,
	}
}

// resolveSchool determines the acting user's tenant: the school on their
// account, or the first school listing them as an administrator.
func (svc *Service) resolveSchool(ctx context.Context, actor user.User) (string, error) {
	if actor.SchoolID.Valid {
		return actor.SchoolID.String, nil
	}
	id, err := svc.schools.FirstSchoolIDForAdmin(ctx, actor.ID)
	if err != nil {
		if errors.Cause(err) == school.ErrNotFound {
			return "", ErrSchoolNotResolved
		}
		return "", err
	}
	return id, nil
}

// Request creates a PENDING TC for a student of the acting user's school.
func (svc *Service) Request(ctx context.Context, actor user.User, nt NewTransferCertificate) (TransferCertificate, error) {
	nt.Clean()
	if err := svc.validate.Struct(nt); err != nil {
		return TransferCertificate{}, err
	}

	schoolID, err := svc.resolveSchool(ctx, actor)
	if err != nil {
		return TransferCertificate{}, err
	}

	if _, err = svc.students.GetStudentByID(ctx, nt.StudentID, schoolID); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return TransferCertificate{}, core.NewValidationError(err,
				core.FieldError{Field: "student_id", Error: student.ErrNotFound.Error()})
		}
		return TransferCertificate{}, err
	}

	now := time.Now().UTC()
	cert := TransferCertificate{
		ID:            uuid.New().String(),
		SchoolID:      schoolID,
		StudentID:     nt.StudentID,
		Status:        StatusPending,
		Reason:        null.NewString(nt.Reason, nt.Reason != ""),
		RequestedByID: null.StringFrom(actor.ID),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	cert, err = svc.repo.CreateTC(ctx, cert)
	if err != nil {
		return TransferCertificate{}, err
	}

	svc.invalidateListings(ctx, schoolID, cert.StudentID)
	return cert, nil
}

// Get fetches a TC within the acting user's school.
func (svc *Service) Get(ctx context.Context, actor user.User, id string) (TransferCertificate, error) {
	schoolID, err := svc.resolveSchool(ctx, actor)
	if err != nil {
		return TransferCertificate{}, err
	}
	return svc.repo.GetTCByID(ctx, id, schoolID)
}

// List returns the school's TCs matching filter, reading through the cache.
// Cache failures fall back to the database and are never surfaced.
func (svc *Service) List(ctx context.Context, actor user.User, filter Filter) ([]TransferCertificate, error) {
	filter.Clean()
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, core.NewValidationError(nil,
			core.FieldError{Field: "status", Error: "must be one of PENDING, APPROVED, REJECTED"})
	}

	schoolID, err := svc.resolveSchool(ctx, actor)
	if err != nil {
		return nil, err
	}

	key := listKey(schoolID, filter.scopeKey(), filter.statusKey())
	if raw, err := svc.cache.Get(ctx, key); err == nil {
		var certs []TransferCertificate
		if err = json.Unmarshal(raw, &certs); err == nil {
			return certs, nil
		}
		svc.logger.Warn("tc: dropping undecodable cache entry", err, map[string]interface{}{"key": key})
	} else if errors.Cause(err) != core.ErrCacheMiss {
		svc.logger.Warn("tc: cache read failed", err, map[string]interface{}{"key": key})
	}

	certs, err := svc.repo.FilterTCs(ctx, schoolID, filter)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(certs); err == nil {
		if err = svc.cache.Set(ctx, key, raw, svc.conf.Redis.TCListTTL); err != nil {
			svc.logger.Warn("tc: cache write failed", err, map[string]interface{}{"key": key})
		}
	}
	return certs, nil
}

// Approve transitions a PENDING TC to APPROVED, snapshots the student into
// history and detaches them from their class; the three mutations commit
// atomically. Listing caches are invalidated best-effort after the commit.
func (svc *Service) Approve(ctx context.Context, actor user.User, id string, docURL *string) (TransferCertificate, error) {
	schoolID, err := svc.resolveSchool(ctx, actor)
	if err != nil {
		return TransferCertificate{}, err
	}

	cert, err := svc.repo.GetTCByID(ctx, id, schoolID)
	if err != nil {
		return TransferCertificate{}, err
	}
	if cert.Status != StatusPending {
		return TransferCertificate{}, &NotPendingError{Status: cert.Status}
	}

	now := time.Now().UTC()
	err = core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		// re-read under a row lock; the loser of a concurrent approval race
		// sees the terminal status here
		locked, err := svc.repo.GetTCByIDForUpdate(ctx, cert.ID, schoolID, tx)
		if err != nil {
			return err
		}
		if locked.Status != StatusPending {
			return &NotPendingError{Status: locked.Status}
		}

		stu, err := svc.students.GetStudentByID(ctx, locked.StudentID, schoolID, tx)
		if err != nil {
			return err
		}

		cert = locked
		cert.Status = StatusApproved
		cert.ApprovedByID = null.StringFrom(actor.ID)
		cert.IssuedDate = null.TimeFrom(now)
		cert.TCDocumentURL = null.StringFromPtr(docURL)
		cert.UpdatedAt = now
		if cert, err = svc.repo.UpdateTC(ctx, cert, tx); err != nil {
			return err
		}

		hist := student.Snapshot(stu, actor.ID, approvalReason(locked.Reason))
		hist.ID = uuid.New().String()
		if _, err = svc.students.CreateStudentHistory(ctx, hist, tx); err != nil {
			return err
		}

		return svc.students.DetachStudentFromClass(ctx, stu.ID, tx)
	})
	if err != nil {
		return TransferCertificate{}, err
	}

	svc.invalidateListings(ctx, schoolID, cert.StudentID)
	svc.notifyRequester(ctx, cert, "approved")
	return cert, nil
}

// Reject transitions a PENDING TC to REJECTED. No student side effects.
func (svc *Service) Reject(ctx context.Context, actor user.User, id string, reason *string) (TransferCertificate, error) {
	schoolID, err := svc.resolveSchool(ctx, actor)
	if err != nil {
		return TransferCertificate{}, err
	}

	cert, err := svc.repo.GetTCByID(ctx, id, schoolID)
	if err != nil {
		return TransferCertificate{}, err
	}
	if cert.Status != StatusPending {
		return TransferCertificate{}, &NotPendingError{Status: cert.Status}
	}

	now := time.Now().UTC()
	err = core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		locked, err := svc.repo.GetTCByIDForUpdate(ctx, cert.ID, schoolID, tx)
		if err != nil {
			return err
		}
		if locked.Status != StatusPending {
			return &NotPendingError{Status: locked.Status}
		}

		cert = locked
		cert.Status = StatusRejected
		cert.ApprovedByID = null.StringFrom(actor.ID)
		if reason != nil && *reason != "" {
			cert.Reason = null.StringFromPtr(reason)
		}
		cert.UpdatedAt = now
		cert, err = svc.repo.UpdateTC(ctx, cert, tx)
		return err
	})
	if err != nil {
		return TransferCertificate{}, err
	}

	svc.invalidateListings(ctx, schoolID, cert.StudentID)
	svc.notifyRequester(ctx, cert, "rejected")
	return cert, nil
}

// approvalReason derives the history snapshot reason from the TC's reason.
func approvalReason(reason null.String) string {
	r := noReasonText
	if reason.Valid && reason.String != "" {
		r = reason.String
	}
	return "Transfer Certificate approved - " + r
}

func listKey(schoolID, scope, status string) string {
	return fmt.Sprintf("tcs:%s:%s:%s", schoolID, scope, status)
}

// invalidateListings deletes the school's listing cache entries across all
// status scopes, school-wide and student-scoped. Best-effort: each key is
// deleted independently and failures are only logged.
func (svc *Service) invalidateListings(ctx context.Context, schoolID, studentID string) {
	statuses := []string{scopeAll, string(StatusPending), string(StatusApproved), string(StatusRejected)}
	for _, scope := range []string{scopeAll, studentID} {
		for _, status := range statuses {
			key := listKey(schoolID, scope, status)
			if err := svc.cache.Delete(ctx, key); err != nil {
				svc.logger.Warn("tc: cache invalidation failed", err, map[string]interface{}{"key": key})
			}
		}
	}
}

// notifyRequester emails the requesting user about the outcome; best-effort.
func (svc *Service) notifyRequester(ctx context.Context, cert TransferCertificate, outcome string) {
	if !cert.RequestedByID.Valid {
		return
	}
	usr, err := svc.users.GetUserByID(ctx, cert.RequestedByID.String)
	if err != nil {
		svc.logger.Warn("tc: looking up requester for notification", err)
		return
	}
	if usr.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: fmt.Sprintf("Transfer Certificate request %s", outcome),
		BodyStr: fmt.Sprintf("Your Transfer Certificate request has been %s.", outcome),
	})
}
