package sqlxrepos

import (
	"database/sql"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/hocdan/guitarschool/core"
)

func TestWrapErr(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantShutdown bool
		wantMsg      string
	}{
		{name: "query error", err: errors.New("syntax error"), wantMsg: "selecting classes: syntax error"},
		{name: "no rows", err: sql.ErrNoRows, wantMsg: "selecting classes: " + sql.ErrNoRows.Error()},
		{name: "connection done", err: sql.ErrConnDone, wantShutdown: true, wantMsg: "selecting classes: " + sql.ErrConnDone.Error()},
		{name: "wrapped connection done", err: errors.Wrap(sql.ErrConnDone, "tx"), wantShutdown: true, wantMsg: "selecting classes: tx: " + sql.ErrConnDone.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := wrapErr(tt.err, "selecting classes")
			assert.Equal(t, tt.wantShutdown, core.IsShutdown(err))
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}
