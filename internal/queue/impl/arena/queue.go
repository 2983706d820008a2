// Package arena implements queue.StringQueue as a singly-linked list whose
// nodes live in a slice and refer to each other by index.
package arena

import (
	"strings"

	"github.com/Philanthropists/strqueue/internal/queue"
)

const none = -1

// Block sizes reserved from the allocator.
const (
	RecordSize = 32
	NodeSize   = 16
)

// StringSize is the block reserved for a copy of s, terminator included.
func StringSize(s string) int {
	return len(s) + 1
}

type node struct {
	value string
	next  int
}

// Queue is a string queue with O(1) insertion at both ends and O(1)
// removal at the head. The zero value is not usable; call New.
type Queue struct {
	slots []node
	free  []int
	head  int
	tail  int
	size  int

	alloc    queue.Allocator
	released bool
}

var _ queue.StringQueue = (*Queue)(nil)

// New creates an empty queue whose storage is accounted by alloc. A nil
// alloc never refuses.
func New(alloc queue.Allocator) (*Queue, error) {
	if alloc == nil {
		alloc = queue.Unbounded()
	}

	if !alloc.Reserve(RecordSize) {
		return nil, queue.ErrAllocationFailure.New("queue record")
	}

	return &Queue{
		head:  none,
		tail:  none,
		alloc: alloc,
	}, nil
}

func (q *Queue) valid() bool {
	return q != nil && !q.released
}

// InsertHead copies *s into a new node placed before the current head.
func (q *Queue) InsertHead(s *string) error {
	idx, err := q.newNode(s)
	if err != nil {
		return err
	}

	q.slots[idx].next = q.head
	q.head = idx
	if q.tail == none {
		q.tail = idx
	}
	q.size++

	return nil
}

// InsertTail copies *s into a new node placed after the current tail.
func (q *Queue) InsertTail(s *string) error {
	idx, err := q.newNode(s)
	if err != nil {
		return err
	}

	if q.tail == none {
		q.head = idx
	} else {
		q.slots[q.tail].next = idx
	}
	q.tail = idx
	q.size++

	return nil
}

// RemoveHead removes the head element. When buf is not empty, up to
// len(buf)-1 bytes of the removed value are copied into it followed by a
// zero byte; longer values are truncated.
func (q *Queue) RemoveHead(buf []byte) error {
	value, err := q.unlinkHead()
	if err != nil {
		return err
	}

	if len(buf) > 0 {
		n := copy(buf[:len(buf)-1], value)
		buf[n] = 0
	}

	return nil
}

// Pop removes the head element and returns its value.
func (q *Queue) Pop() (string, error) {
	return q.unlinkHead()
}

// Size returns the number of elements, 0 for an absent queue.
func (q *Queue) Size() int {
	if !q.valid() {
		return 0
	}
	return q.size
}

// Reverse relinks the nodes in place so that the tail becomes the head.
// Nothing is reserved or released.
func (q *Queue) Reverse() {
	if !q.valid() || q.size < 2 {
		return
	}

	prev, cur := none, q.head
	for cur != none {
		next := q.slots[cur].next
		q.slots[cur].next = prev
		prev, cur = cur, next
	}

	q.head, q.tail = q.tail, q.head
}

// Free releases every node and the queue record. The queue must not be
// used afterwards; further calls treat it as absent.
func (q *Queue) Free() {
	if !q.valid() {
		return
	}

	for cur := q.head; cur != none; {
		n := q.slots[cur]
		q.alloc.Release(StringSize(n.value))
		q.alloc.Release(NodeSize)
		cur = n.next
	}

	q.slots, q.free = nil, nil
	q.head, q.tail, q.size = none, none, 0

	q.alloc.Release(RecordSize)
	q.released = true
}

func (q *Queue) newNode(s *string) (int, error) {
	if !q.valid() {
		return none, queue.ErrInvalidArgument.New("absent queue")
	}
	if s == nil {
		return none, queue.ErrInvalidArgument.New("nil value")
	}

	if !q.alloc.Reserve(NodeSize) {
		return none, queue.ErrAllocationFailure.New("node")
	}
	if !q.alloc.Reserve(StringSize(*s)) {
		q.alloc.Release(NodeSize)
		return none, queue.ErrAllocationFailure.New("string of %d bytes", len(*s))
	}

	n := node{
		value: strings.Clone(*s),
		next:  none,
	}

	if last := len(q.free) - 1; last >= 0 {
		idx := q.free[last]
		q.free = q.free[:last]
		q.slots[idx] = n
		return idx, nil
	}

	q.slots = append(q.slots, n)
	return len(q.slots) - 1, nil
}

func (q *Queue) unlinkHead() (string, error) {
	if !q.valid() {
		return "", queue.ErrInvalidArgument.New("absent queue")
	}
	if q.size == 0 {
		return "", queue.ErrEmpty.New("nothing to remove")
	}

	idx := q.head
	value := q.slots[idx].value

	q.head = q.slots[idx].next
	if q.head == none {
		q.tail = none
	}
	q.size--

	q.alloc.Release(StringSize(value))
	q.alloc.Release(NodeSize)
	q.slots[idx] = node{next: none}

	// the arena is compacted whenever it drains
	if q.size == 0 {
		q.slots = q.slots[:0]
		q.free = q.free[:0]
	} else {
		q.free = append(q.free, idx)
	}

	return value, nil
}
