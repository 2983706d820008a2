package qtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ModelKeepsQueueOrder(t *testing.T) {
	var m model

	m.pushTail("b")
	m.pushHead("a")
	m.pushTail("c")
	m.pushHead("z")

	assert.Equal(t, 4, m.len())
	assert.Equal(t, []string{"z", "a", "b", "c"}, m.head(10))
	assert.Equal(t, []string{"z", "a"}, m.head(2))

	m.reverse()
	assert.Equal(t, []string{"c", "b", "a", "z"}, m.head(10))

	var popped []string
	for {
		v, ok := m.popHead()
		if !ok {
			break
		}
		popped = append(popped, v)
	}
	assert.Equal(t, []string{"c", "b", "a", "z"}, popped)
	assert.Equal(t, 0, m.len())
}

func Test_ModelReset(t *testing.T) {
	var m model
	m.pushTail("a")
	m.pushHead("b")

	m.reset()

	assert.Equal(t, 0, m.len())
	assert.Empty(t, m.head(3))
}
