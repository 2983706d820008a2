package queue

import "github.com/zeebo/errs"

var (
	// ErrInvalidArgument is returned for an absent queue or value.
	ErrInvalidArgument = errs.Class("invalid argument")
	// ErrAllocationFailure is returned when the allocator refuses a block.
	ErrAllocationFailure = errs.Class("allocation failure")
	// ErrEmpty is returned when removing from an empty queue.
	ErrEmpty = errs.Class("empty queue")
)
