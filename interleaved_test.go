package async

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// S4: interleavedx({ throw E1 }, { wait(10ms); 7 }): result
// (Left(E1), Right(7)).
func TestScenarioS4(t *testing.T) {
	exec, host := newTestExecutor()

	errE1 := errors.New("E1")

	var results []Result[int]

	exec.Spawn(func(s *Strand) {
		results = InterleavedX(s,
			func(s *Strand) (int, error) { return 0, errE1 },
			func(s *Strand) (int, error) {
				if err := Wait(s, 0.01); err != nil {
					return 0, err
				}
				return 7, nil
			},
		)
	})

	host.Advance(20 * time.Millisecond)

	assert.Len(t, results, 2)
	assert.ErrorIs(t, results[0].Err, errE1)
	assert.Equal(t, 7, results[1].Value)
	assert.NoError(t, results[1].Err)
}

func TestInterleavedPropagatesFirstError(t *testing.T) {
	exec, host := newTestExecutor()

	errBoom := errors.New("boom")

	var values []int
	var err error

	exec.Spawn(func(s *Strand) {
		values, err = Interleaved(s,
			func(s *Strand) (int, error) {
				if werr := Wait(s, 0.01); werr != nil {
					return 0, werr
				}
				return 1, nil
			},
			func(s *Strand) (int, error) { return 0, errBoom },
		)
	})

	host.Advance(20 * time.Millisecond)

	assert.Nil(t, values)
	assert.ErrorIs(t, err, errBoom)
}

// Each action passed to InterleavedX runs independently: between any two
// suspensions of one, the other's own ready continuation still runs, since
// both are driven by the same single-threaded queue rather than one
// blocking the other.
func TestInterleavedInterleavesRatherThanSerializes(t *testing.T) {
	exec, host := newTestExecutor()

	var trace []string

	exec.Spawn(func(s *Strand) {
		InterleavedX(s,
			func(s *Strand) (struct{}, error) {
				for i := 0; i < 3; i++ {
					if err := Wait(s, 0.01); err != nil {
						return struct{}{}, err
					}
					trace = append(trace, "a")
				}
				return struct{}{}, nil
			},
			func(s *Strand) (struct{}, error) {
				for i := 0; i < 3; i++ {
					if err := Wait(s, 0.01); err != nil {
						return struct{}{}, err
					}
					trace = append(trace, "b")
				}
				return struct{}{}, nil
			},
		)
	})

	host.Advance(10 * time.Millisecond)
	host.Advance(10 * time.Millisecond)
	host.Advance(10 * time.Millisecond)

	assert.Equal(t, []string{"a", "b", "a", "b", "a", "b"}, trace)
}

// Fork order, reinterpreted for real strands: every index passed to
// InterleavedX is represented in the result exactly once, each by its own
// strand.
func TestInterleavedDeliversEachIndexExactlyOnce(t *testing.T) {
	exec, _ := newTestExecutor()

	const n = 5
	actions := make([]func(s *Strand) (int, error), n)
	for i := 0; i < n; i++ {
		i := i
		actions[i] = func(s *Strand) (int, error) { return i, nil }
	}

	var results []Result[int]
	exec.Spawn(func(s *Strand) {
		results = InterleavedX(s, actions...)
	})

	assert.Len(t, results, n)
	for i, r := range results {
		assert.Equal(t, i, r.Value)
		assert.NoError(t, r.Err)
	}
}
