package prefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_Defaults(t *testing.T) {
	s := New()
	assert.True(t, s.Subtitles())
	assert.Equal(t, "voice-a", s.Voice().ID)
	assert.Equal(t, Durations{TotalSec: 180, UserSec: 90}, s.TakeDurations())
}

func TestStore_SetAndClear(t *testing.T) {
	s := New()
	s.SetSubtitles(false)
	assert.True(t, s.SetVoice("voice-c"))
	assert.False(t, s.SetVoice("voice-z"))
	s.SaveDurations(Durations{TotalSec: 240, UserSec: 150})

	assert.False(t, s.Subtitles())
	assert.Equal(t, "목소리 C", s.Voice().Name)

	s.Clear()
	assert.True(t, s.Subtitles())
	assert.Equal(t, "voice-a", s.Voice().ID)
	assert.Equal(t, DefaultTotalSec, s.TakeDurations().TotalSec)
}

func TestStore_TakeDurationsOnce(t *testing.T) {
	s := New()
	s.SaveDurations(Durations{TotalSec: 240, UserSec: 150})
	assert.Equal(t, Durations{TotalSec: 240, UserSec: 150}, s.TakeDurations())
	assert.Equal(t, Durations{TotalSec: DefaultTotalSec, UserSec: DefaultUserSec}, s.TakeDurations())
}
