package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequence_NextIsStrictlyIncreasing(t *testing.T) {
	seq := NewSequence()

	last := seq.Next()
	for i := 0; i < 10000; i++ {
		next := seq.Next()
		if next <= last {
			t.Fatalf("Next() = %d, want > %d", next, last)
		}
		last = next
	}
}

func TestSequence_IndependentSequences(t *testing.T) {
	a := NewSequence()
	b := NewSequence()

	// Two sequences may issue equal ids; each one must still be
	// unique within itself.
	seen := make(map[int64]struct{})
	for i := 0; i < 100; i++ {
		id := a.Next()
		_, dup := seen[id]
		assert.False(t, dup, "sequence a issued duplicate id %d", id)
		seen[id] = struct{}{}
	}
	assert.NotZero(t, b.Next())
}

func TestMessage_ReadByConnection(t *testing.T) {
	msg := NewText(1, "alice", "conn-1", "general", "hello")

	assert.False(t, msg.ReadByConnection("conn-2"))

	msg.ReadBy = append(msg.ReadBy, "conn-2")
	assert.True(t, msg.ReadByConnection("conn-2"))
	assert.False(t, msg.ReadByConnection("conn-3"))
}

func TestMessage_Variants(t *testing.T) {
	text := NewText(10, "alice", "conn-1", "general", "hi")
	assert.Equal(t, "hi", text.Text)
	assert.False(t, text.IsFile)
	assert.False(t, text.IsPrivate)
	assert.Equal(t, "general", text.Room)

	file := NewFile(11, "alice", "conn-1", "support", "/uploads/a.png")
	assert.True(t, file.IsFile)
	assert.Equal(t, "/uploads/a.png", file.File)
	assert.Empty(t, file.Text)

	private := NewPrivate(12, "alice", "conn-1", "psst")
	assert.True(t, private.IsPrivate)
	assert.Empty(t, private.Room, "private messages carry no room")
}
