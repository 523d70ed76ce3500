package logsvc

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/hocdan/guitarschool/core"
)

// RollbarLogger reports to rollbar and mirrors every entry on a std logger, one line per entry.
// Args are errors and map[string]interface{} extras; anything else is ignored.
type RollbarLogger struct {
	std   *log.Logger
	debug bool
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "" && !conf.Debug)
	return &RollbarLogger{std: std, debug: conf.Debug}
}

// split separates the errors from the merged extras of args.
func split(args []interface{}) (errs []error, extras map[string]interface{}) {
	for _, arg := range args {
		switch a := arg.(type) {
		case error:
			errs = append(errs, a)
		case map[string]interface{}:
			if extras == nil {
				extras = make(map[string]interface{}, len(a))
			}
			for k, v := range a {
				extras[k] = v
			}
		}
	}
	return errs, extras
}

func (l RollbarLogger) report(level, msg string, args []interface{}) {
	errs, extras := split(args)
	items := make([]interface{}, 0, len(errs)+2)
	items = append(items, msg)
	for _, err := range errs {
		items = append(items, err)
	}
	if extras != nil {
		items = append(items, extras)
	}
	rollbar.Log(level, items...)
	_ = l.std.Output(3, format(level, msg, errs, extras))
}

// format renders "LEVEL msg key=value ... error=..." with sorted keys.
func format(level, msg string, errs []error, extras map[string]interface{}) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(level))
	b.WriteByte(' ')
	b.WriteString(msg)

	keys := make([]string, 0, len(extras))
	for k := range extras {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, extras[k])
	}
	for _, err := range errs {
		fmt.Fprintf(&b, " error=%q", err.Error())
	}
	return b.String()
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.report(rollbar.DEBUG, msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	l.report(rollbar.INFO, msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	l.report(rollbar.WARN, msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	l.report(rollbar.ERR, msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.report(rollbar.CRIT, msg, args)
	rollbar.Wait()
	l.std.Fatal(msg)
}

// Close flushes pending reports.
func (l RollbarLogger) Close() {
	rollbar.Close()
}
