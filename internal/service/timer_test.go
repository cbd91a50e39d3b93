package service

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestCronScheduler_StopIsIdempotent(t *testing.T) {
	s := NewCronScheduler(zap.NewNop())

	stop := s.Every(time.Hour, func() {})
	stop()
	stop()
}

func TestCronLogger(t *testing.T) {
	l := cronLogger{logger: zap.NewNop()}

	l.Info("job scheduled", "entry", 1)
	l.Error(errors.New("boom"), "job failed", "entry", 1)
}

func TestCronScheduler_Fires(t *testing.T) {
	s := NewCronScheduler(zap.NewNop())

	fired := make(chan struct{}, 1)
	stop := s.Every(time.Second, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	defer stop()

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not fire")
	}
}
