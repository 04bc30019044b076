package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeadline_Order(t *testing.T) {
	q := NewDeadline[string]()
	base := time.Now()

	q.Push("c", base.Add(3*time.Second))
	q.Push("a", base.Add(1*time.Second))
	q.Push("b", base.Add(2*time.Second))

	assert.Equal(t, 3, q.Len())

	v, deadline, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, "a", v)
	assert.Equal(t, base.Add(1*time.Second), deadline)

	var got []string
	for {
		v, ok := q.Pop()
		if !ok {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, 0, q.Len())
}

func TestDeadline_TiesServeFIFO(t *testing.T) {
	q := NewDeadline[int]()
	deadline := time.Now().Add(time.Second)

	for i := 0; i < 10; i++ {
		q.Push(i, deadline)
	}

	for want := 0; want < 10; want++ {
		v, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, want, v)
	}
}

func TestDeadline_Empty(t *testing.T) {
	q := NewDeadline[string]()

	_, _, ok := q.Peek()
	assert.False(t, ok)

	_, ok = q.Pop()
	assert.False(t, ok)

	assert.Empty(t, q.Drain())
}

func TestDeadline_Drain(t *testing.T) {
	q := NewDeadline[string]()
	base := time.Now()

	q.Push("late", base.Add(5*time.Second))
	q.Push("early", base.Add(1*time.Second))

	assert.Equal(t, []string{"early", "late"}, q.Drain())
	assert.Equal(t, 0, q.Len())
}

func TestFIFO(t *testing.T) {
	q := NewFIFO[int]()

	_, ok := q.Pop()
	assert.False(t, ok)

	q.Push(1)
	q.Push(2)
	q.Push(3)
	assert.Equal(t, 3, q.Len())

	v, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, 1, v)

	assert.Equal(t, []int{2, 3}, q.Drain())
	assert.Equal(t, 0, q.Len())
}
