package tc

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both a bad id and a TC belonging to another school;
	// the two are deliberately indistinguishable to the caller.
	ErrNotFound = errors.New("transfer certificate not found")

	// ErrSchoolNotResolved means the acting user is not bound to any school,
	// neither directly nor through the administrators relation.
	ErrSchoolNotResolved = errors.New("no school found for user")
)

// NotPendingError reports an approval or rejection attempted on a TC that
// has already left the PENDING state.
type NotPendingError struct {
	Status Status
}

func (e *NotPendingError) Error() string {
	return fmt.Sprintf("transfer certificate is already %s", e.Status)
}
