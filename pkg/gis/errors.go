package gis

import (
	"errors"
	"fmt"
	"strings"
)

// PlatformError is an error payload returned by the platform inside an
// otherwise successful HTTP response. The raw message and details are
// preserved for operator logs.
type PlatformError struct {
	Op      string
	Code    int
	Message string
	Details []string
}

func (e *PlatformError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("%s: platform error %d: %s", e.Op, e.Code, e.Message)
	}
	return fmt.Sprintf(
		"%s: platform error %d: %s (%s)",
		e.Op, e.Code, e.Message, strings.Join(e.Details, "; "),
	)
}

// IsLock reports whether err is a platform lock conflict. The platform
// locks a hosted service while a view attaches to it, so concurrent
// attaches against the same source can fail this way transiently.
func IsLock(err error) bool {
	perr := new(PlatformError)
	if !errors.As(err, &perr) {
		return false
	}
	if strings.Contains(strings.ToLower(perr.Message), "lock") {
		return true
	}
	for _, d := range perr.Details {
		if strings.Contains(strings.ToLower(d), "lock") {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err means the target does not exist. The
// platform signals this with code 400. Deletion treats it as
// already-deleted.
func IsNotFound(err error) bool {
	perr := new(PlatformError)
	return errors.As(err, &perr) && perr.Code == 400
}

// IsUnauthorized reports whether err is a token rejection.
func IsUnauthorized(err error) bool {
	perr := new(PlatformError)
	return errors.As(err, &perr) && (perr.Code == 401 || perr.Code == 403 || perr.Code == 498)
}
