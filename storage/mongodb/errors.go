package mongorepos

import (
	"fmt"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hocdan/guitarschool/core"
)

// wrapErr annotates err with msg. A disconnected client cannot serve any request again,
// so it asks the API to shut down instead.
func wrapErr(err error, msg string) error {
	if errors.Cause(err) == mongo.ErrClientDisconnected {
		return core.NewShutdownError(fmt.Sprintf("%s: %v", msg, err))
	}
	return errors.Wrap(err, msg)
}
