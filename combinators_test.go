package async

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// recordingHandler is a [slog.Handler] that keeps every record it is given,
// so a test can assert on what got logged without parsing formatted text.
type recordingHandler struct {
	records *[]slog.Record
}

func (h recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h recordingHandler) Handle(_ context.Context, r slog.Record) error {
	*h.records = append(*h.records, r)
	return nil
}

func (h recordingHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h recordingHandler) WithGroup(_ string) slog.Handler      { return h }

// Timer cleanup (#6): after CancelableWait returns, normally or via
// cancellation, no host timer remains attributable to that call.
func TestCancelableWaitClearsItsTimer(t *testing.T) {
	exec, host := newTestExecutor()

	exec.Spawn(func(s *Strand) {
		_ = CancelableWait(s, 1)
	})

	host.Advance(1100 * time.Millisecond)
	assert.Equal(t, 0, host.Pending())

	exec2, host2 := newTestExecutor()
	exec2.Spawn(func(s *Strand) {
		_, _ = Cancelable(s, func(s *Strand) (struct{}, error) {
			Fork(s, func(s *Strand) error { return CancelableWait(s, 1) })
			Cancel(s)
			return struct{}{}, nil
		})
	})
	assert.Equal(t, 0, host2.Pending())
}

// S2: timeout(100ms, { wait(50ms); "ok" }) with the clock advanced 60ms
// returns Some("ok"); the same action with wait(200ms) and the clock
// advanced 150ms returns None.
func TestScenarioS2(t *testing.T) {
	exec, host := newTestExecutor()

	var value string
	var err error

	exec.Spawn(func(s *Strand) {
		value, err = Timeout(s, 0.1, func(s *Strand) (string, error) {
			if werr := Wait(s, 0.05); werr != nil {
				return "", werr
			}
			return "ok", nil
		})
	})

	host.Advance(60 * time.Millisecond)

	assert.NoError(t, err)
	assert.Equal(t, "ok", value)

	exec2, host2 := newTestExecutor()

	var err2 error

	exec2.Spawn(func(s *Strand) {
		_, err2 = Timeout(s, 0.1, func(s *Strand) (string, error) {
			if werr := Wait(s, 0.2); werr != nil {
				return "", werr
			}
			return "late", nil
		})
	})

	host2.Advance(150 * time.Millisecond)

	assert.True(t, errors.Is(err2, ErrTimeout))
}

// S3: firstof { wait(250ms); "A" } { wait(300ms); "B" } returns "A"; a
// later advance past 300ms produces no further side effects. Both waits
// are above Wait's 200ms threshold, so each goes through CancelableWait.
func TestScenarioS3(t *testing.T) {
	exec, host := newTestExecutor()

	var result string
	var trace []string

	exec.Spawn(func(s *Strand) {
		v, _ := FirstOf(s,
			func(s *Strand) (string, error) {
				if err := Wait(s, 0.25); err != nil {
					return "", err
				}
				trace = append(trace, "A")
				return "A", nil
			},
			func(s *Strand) (string, error) {
				if err := Wait(s, 0.3); err != nil {
					return "", err
				}
				trace = append(trace, "B")
				return "B", nil
			},
		)
		result = v
	})

	host.Advance(250 * time.Millisecond)
	assert.Equal(t, "A", result)
	assert.Equal(t, []string{"A"}, trace)

	host.Advance(100 * time.Millisecond)
	assert.Equal(t, []string{"A"}, trace)
}

// Yield owns no timer id to clear, but the await it registers is still an
// ordinary entry in whatever scope is active: canceling that scope still
// delivers ErrCancel to it.
func TestYieldAwaitStillReachedByCancel(t *testing.T) {
	exec, host := newTestExecutor()

	var err error
	exec.Spawn(func(s *Strand) {
		_, _ = Cancelable(s, func(s *Strand) (struct{}, error) {
			Fork(s, func(s *Strand) error {
				err = Yield(s, 0.01)
				return nil
			})
			Cancel(s)
			return struct{}{}, nil
		})
	})

	host.Advance(20 * time.Millisecond)
	assert.True(t, IsCancel(err))
}

// A panic inside a Forked action must not escape the strand that called
// Fork: the spawner keeps running, and the panic is recovered and reported
// through Logger rather than crashing whatever goroutine happens to be
// driving the forked strand.
func TestForkRecoversPanicAndReportsThroughLogger(t *testing.T) {
	var records []slog.Record
	prev := Logger
	Logger = slog.New(recordingHandler{records: &records})
	defer func() { Logger = prev }()

	exec, _ := newTestExecutor()

	var continuedAfterFork bool
	assert.NotPanics(t, func() {
		exec.Spawn(func(s *Strand) {
			Fork(s, func(s *Strand) error {
				panic("boom")
			})
			continuedAfterFork = true
		})
	})

	assert.True(t, continuedAfterFork)
	assert.Len(t, records, 1)
	assert.Contains(t, records[0].Message, "forked strand failed")
}

// OnCancel runs its handler only when action fails with ErrCancel, and
// leaves any other error -- including success -- untouched.
func TestOnCancelRunsHandlerOnlyForCancelError(t *testing.T) {
	exec, host := newTestExecutor()

	var ran bool
	var err error
	exec.Spawn(func(s *Strand) {
		_, _ = Cancelable(s, func(s *Strand) (struct{}, error) {
			Fork(s, func(s *Strand) error {
				err = OnCancel(s, func() { ran = true }, func(s *Strand) error {
					return Yield(s, 0.01)
				})
				return nil
			})
			Cancel(s)
			return struct{}{}, nil
		})
	})

	host.Advance(20 * time.Millisecond)
	assert.True(t, IsCancel(err))
	assert.True(t, ran)

	exec2, host2 := newTestExecutor()

	var ran2 bool
	var err2 error
	boom := errors.New("boom")
	exec2.Spawn(func(s *Strand) {
		err2 = OnCancel(s, func() { ran2 = true }, func(s *Strand) error {
			return boom
		})
	})

	host2.Advance(0)
	assert.Equal(t, boom, err2)
	assert.False(t, ran2)
}
