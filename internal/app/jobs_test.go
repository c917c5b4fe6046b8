package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

type resetRepoStub struct {
	accounts int64
	err      error
	calls    int
}

func (s *resetRepoStub) ResetAllAccounts(ctx context.Context) (int64, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	return s.accounts, nil
}

func newTestJobs(repo ResetRepository) *Jobs {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewJobs(repo, logger)
}

func TestRunMonthlyReset_InvokesBulkUpdate(t *testing.T) {
	repo := &resetRepoStub{accounts: 42}
	jobs := newTestJobs(repo)

	jobs.RunMonthlyReset()

	if repo.calls != 1 {
		t.Fatalf("expected one reset invocation, got %d", repo.calls)
	}
}

func TestRunMonthlyReset_FailureIsSwallowed(t *testing.T) {
	repo := &resetRepoStub{err: errors.New("connection reset")}
	jobs := newTestJobs(repo)

	// failures are operator-visible only; the job must not panic or retry
	jobs.RunMonthlyReset()

	if repo.calls != 1 {
		t.Fatalf("expected one reset invocation, got %d", repo.calls)
	}
}
