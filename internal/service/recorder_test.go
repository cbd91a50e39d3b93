package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/certprep-bot/internal/domain/entities"
)

type blockingAttemptRepo struct {
	release  chan struct{}
	err      error
	answers  atomic.Int32
	attempts atomic.Int32
}

func (r *blockingAttemptRepo) RecordAnswer(ctx context.Context, _ entities.AnswerRecord) error {
	r.answers.Add(1)
	select {
	case <-r.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	return r.err
}

func (r *blockingAttemptRepo) CompleteAttempt(ctx context.Context, _ entities.AttemptRecord) error {
	r.attempts.Add(1)
	select {
	case <-r.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	return r.err
}

func TestAsyncRecorder_DoesNotBlock(t *testing.T) {
	repo := &blockingAttemptRepo{release: make(chan struct{})}
	rec := NewAsyncRecorder(repo, time.Minute, zap.NewNop())

	done := make(chan struct{})
	go func() {
		rec.RecordAnswer(entities.AnswerRecord{SessionID: "s1", ContentID: "q1"})
		rec.CompleteAttempt(entities.AttemptRecord{SessionID: "s1"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("recorder blocked on a slow repository")
	}

	close(repo.release)
	rec.Wait()

	if repo.answers.Load() != 1 || repo.attempts.Load() != 1 {
		t.Fatalf("calls = %d/%d, want 1/1", repo.answers.Load(), repo.attempts.Load())
	}
}

func TestAsyncRecorder_NoRetryOnFailure(t *testing.T) {
	release := make(chan struct{})
	close(release)
	repo := &blockingAttemptRepo{release: release, err: errors.New("insert failed")}
	rec := NewAsyncRecorder(repo, time.Minute, zap.NewNop())

	rec.RecordAnswer(entities.AnswerRecord{SessionID: "s1"})
	rec.CompleteAttempt(entities.AttemptRecord{SessionID: "s1"})
	rec.Wait()

	if repo.answers.Load() != 1 || repo.attempts.Load() != 1 {
		t.Fatalf("calls = %d/%d, want 1/1", repo.answers.Load(), repo.attempts.Load())
	}
}

func TestAsyncRecorder_Timeout(t *testing.T) {
	repo := &blockingAttemptRepo{release: make(chan struct{})}
	rec := NewAsyncRecorder(repo, 10*time.Millisecond, zap.NewNop())

	rec.RecordAnswer(entities.AnswerRecord{SessionID: "s1"})
	rec.Wait()

	if repo.answers.Load() != 1 {
		t.Fatalf("calls = %d, want 1", repo.answers.Load())
	}
}

func TestSession_SlowSinkDoesNotBlockAnswers(t *testing.T) {
	repo := &blockingAttemptRepo{release: make(chan struct{})}
	rec := NewAsyncRecorder(repo, time.Minute, zap.NewNop())
	s := NewSession(nil, rec, &manualScheduler{}, zap.NewNop())
	if err := s.Start(sessionQuestions(entities.LanguageEN), SessionOptions{}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	done := make(chan entities.ResultSummary, 1)
	go func() {
		s.Answer("q1", []string{"A"})
		s.Next()
		done <- s.Finalize()
	}()

	select {
	case res := <-done:
		if res.Correct != 1 {
			t.Fatalf("Correct = %d, want 1", res.Correct)
		}
	case <-time.After(time.Second):
		t.Fatal("session blocked on a slow repository")
	}

	close(repo.release)
	rec.Wait()
}
