package pipe

import (
	"context"
	"sync"
)

type Result[T any] struct {
	Error error
	Value T
}

// Streams the given values until they are exhausted or ctx is done
func Generate[T any](ctx context.Context, values ...T) <-chan T {
	out := make(chan T)

	go func() {
		defer close(out)

		for _, v := range values {
			select {
			case <-ctx.Done():
				return
			case out <- v:
			}
		}
	}()

	return out
}

// Ensures that the goroutine is finished on ctx being done
func OrDone[T any](ctx context.Context, c <-chan T) <-chan T {
	stream := make(chan T)

	go func() {
		defer close(stream)

		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-c:
				if !ok {
					return
				}
				select {
				case stream <- v:
				case <-ctx.Done():
				}
			}
		}
	}()

	return stream
}

// Maps from channel of type A to a channel of type B with a fixed number of workers
func ConcurrentMap[A, B any](ctx context.Context, workers int, in <-chan A, mapper func(context.Context, A) Result[B]) <-chan Result[B] {
	if workers <= 0 {
		workers = 1
	}

	out := make(chan Result[B], workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()

			for val := range OrDone(ctx, in) {
				select {
				case <-ctx.Done():
					return
				case out <- mapper(ctx, val):
				}
			}
		}()
	}

	go func() {
		defer close(out)
		wg.Wait()
	}()

	return out
}

// Drains the channel into a slice until it is closed or ctx is done
func Collect[T any](ctx context.Context, in <-chan T) []T {
	var values []T
	for v := range OrDone(ctx, in) {
		values = append(values, v)
	}
	return values
}
