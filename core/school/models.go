package school

import (
	"context"
	"errors"
	"time"

	"github.com/shraddhaWorks/new-timelly-sub001/core"
)

var ErrNotFound = errors.New("school not found")

type School struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	CreatedAt time.Time `db:"created_at" json:"created_at"` // UTC
}

type Repository interface {
	GetSchoolByID(ctx context.Context, id string, exec ...core.DBExecutor) (School, error)
	// FirstSchoolIDForAdmin returns the id of the first school listing the
	// user in its administrators relation, or ErrNotFound.
	FirstSchoolIDForAdmin(ctx context.Context, userID string, exec ...core.DBExecutor) (string, error)
}
