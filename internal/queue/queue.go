package queue

// StringQueue is a queue of owned string values. Implementations are not
// safe for concurrent use.
type StringQueue interface {
	InsertHead(*string) error
	InsertTail(*string) error
	RemoveHead(buf []byte) error
	Pop() (string, error)
	Size() int
	Reverse()
	Free()
}

// Allocator accounts for every block of storage a queue owns. Reserve
// reports false when the request cannot be satisfied; a refused block must
// not be released.
type Allocator interface {
	Reserve(size int) bool
	Release(size int)
}

type unbounded struct{}

func (unbounded) Reserve(int) bool { return true }
func (unbounded) Release(int) {}

// Unbounded returns an Allocator that never refuses.
func Unbounded() Allocator {
	return unbounded{}
}
