package pipe

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ConcurrentMapProcessesEveryValue(t *testing.T) {
	ctx := context.Background()
	values := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	results := Collect(ctx, ConcurrentMap(ctx, 3, Generate(ctx, values...), func(_ context.Context, v int) Result[int] {
		if v%5 == 0 {
			return Result[int]{Error: errors.New("multiple of five"), Value: v}
		}
		return Result[int]{Value: v * v}
	}))

	assert.Len(t, results, len(values))

	var squares []int
	var failures int
	for _, r := range results {
		if r.Error != nil {
			failures++
			continue
		}
		squares = append(squares, r.Value)
	}
	sort.Ints(squares)

	assert.Equal(t, 2, failures)
	assert.Equal(t, []int{1, 4, 9, 16, 36, 49, 64, 81}, squares)
}

func Test_ConcurrentMapWithoutWorkersUsesOne(t *testing.T) {
	ctx := context.Background()

	results := Collect(ctx, ConcurrentMap(ctx, 0, Generate(ctx, "a", "b"), func(_ context.Context, v string) Result[string] {
		return Result[string]{Value: v + v}
	}))

	assert.Equal(t, []Result[string]{{Value: "aa"}, {Value: "bb"}}, results)
}

func Test_CancelledContextStopsPipeline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := make(chan int)
	results := Collect(ctx, ConcurrentMap(ctx, 4, in, func(_ context.Context, v int) Result[int] {
		return Result[int]{Value: v}
	}))

	assert.Empty(t, results)
}
