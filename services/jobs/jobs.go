package jobs

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/hocdan/guitarschool/core"
	"github.com/hocdan/guitarschool/core/exam"
)

const sweepTimeout = time.Minute

// Runner runs the periodic background jobs of the API process.
type Runner struct {
	cron   *cron.Cron
	logger core.Logger
}

func NewRunner(logger core.Logger) *Runner {
	return &Runner{
		cron:   cron.New(cron.WithChain(cron.Recover(cronLogger{logger}), cron.SkipIfStillRunning(cronLogger{logger}))),
		logger: logger,
	}
}

// AddExamSweep schedules the auto-submission of attempts left open after their exam ended.
func (r *Runner) AddExamSweep(spec string, svc exam.Service) error {
	_, err := r.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		if _, err := svc.AutoSubmitExpired(ctx, time.Now()); err != nil {
			r.logger.Error("exam sweep failed", err)
		}
	})
	if err != nil {
		return errors.Wrapf(err, "scheduling exam sweep %q", spec)
	}
	return nil
}

func (r *Runner) Start() {
	r.cron.Start()
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (r *Runner) Stop(ctx context.Context) error {
	select {
	case <-r.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for jobs")
	}
}

// cronLogger adapts core.Logger to cron.Logger.
type cronLogger struct {
	logger core.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, kv(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, err, kv(keysAndValues))
}

func kv(keysAndValues []interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if k, ok := keysAndValues[i].(string); ok {
			m[k] = keysAndValues[i+1]
		}
	}
	return m
}
