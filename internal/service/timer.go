package service

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CronScheduler runs periodic jobs on a dedicated cron instance per job.
type CronScheduler struct {
	logger *zap.Logger
}

// NewCronScheduler creates a new CronScheduler.
func NewCronScheduler(logger *zap.Logger) *CronScheduler {
	return &CronScheduler{logger: logger}
}

// Every starts fn on a constant-delay schedule. Intervals below one second are
// rounded up to one second. The returned stop function is safe to call more than once
// and does not wait for a running fn.
func (s *CronScheduler) Every(interval time.Duration, fn func()) (stop func()) {
	log := cronLogger{logger: s.logger}

	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(log),
		cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
	)
	c.Schedule(cron.Every(interval), cron.FuncJob(fn))
	c.Start()

	var once sync.Once
	return func() {
		once.Do(func() { c.Stop() })
	}
}

// cronLogger adapts zap to the cron.Logger interface.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
