package sqlxrepos

import (
	"database/sql"
	"fmt"

	"github.com/pkg/errors"

	"github.com/hocdan/guitarschool/core"
)

// wrapErr annotates err with msg. A connection that was already returned or closed
// will not recover, so it asks the API to shut down instead.
func wrapErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrConnDone {
		return core.NewShutdownError(fmt.Sprintf("%s: %v", msg, err))
	}
	return errors.Wrap(err, msg)
}
