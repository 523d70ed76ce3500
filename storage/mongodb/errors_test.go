package mongorepos

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hocdan/guitarschool/core"
)

func TestWrapErr(t *testing.T) {
	err := wrapErr(mongo.ErrClientDisconnected, "finding classes")
	assert.True(t, core.IsShutdown(err))
	assert.Equal(t, "finding classes: "+mongo.ErrClientDisconnected.Error(), err.Error())

	cause := errors.New("timeout")
	err = wrapErr(cause, "finding classes")
	assert.False(t, core.IsShutdown(err))
	assert.Equal(t, cause, errors.Cause(err))
}
