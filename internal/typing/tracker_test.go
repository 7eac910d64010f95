package typing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker_SetAndClear(t *testing.T) {
	tracker := NewTracker()

	tracker.Set("general", "conn-1", true)
	tracker.Set("general", "conn-2", true)
	assert.ElementsMatch(t, []string{"conn-1", "conn-2"}, tracker.Typing("general"))
	assert.True(t, tracker.IsTyping("general", "conn-1"))

	tracker.Set("general", "conn-1", false)
	assert.ElementsMatch(t, []string{"conn-2"}, tracker.Typing("general"))
	assert.False(t, tracker.IsTyping("general", "conn-1"))

	tracker.Clear("general", "conn-2")
	assert.Empty(t, tracker.Typing("general"))
}

func TestTracker_RoomsAreIndependent(t *testing.T) {
	tracker := NewTracker()

	tracker.Set("general", "conn-1", true)
	tracker.Set("support", "conn-2", true)

	assert.ElementsMatch(t, []string{"conn-1"}, tracker.Typing("general"))
	assert.ElementsMatch(t, []string{"conn-2"}, tracker.Typing("support"))
	assert.False(t, tracker.IsTyping("support", "conn-1"))
}

func TestTracker_ClearUnknownIsNoop(t *testing.T) {
	tracker := NewTracker()

	tracker.Clear("general", "conn-1")
	tracker.Set("general", "conn-1", false)
	assert.Empty(t, tracker.Typing("general"))
	assert.Empty(t, tracker.Typing("nowhere"))
}

func TestTracker_SetTwiceKeepsOneEntry(t *testing.T) {
	tracker := NewTracker()

	tracker.Set("general", "conn-1", true)
	tracker.Set("general", "conn-1", true)
	assert.Len(t, tracker.Typing("general"), 1)
}
