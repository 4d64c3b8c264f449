// Package prefs holds per-session presentation choices. Nothing here is
// persisted; Clear runs on logout.
package prefs

import "sync"

// Voice is a selectable tutor voice.
type Voice struct {
	ID          string
	Name        string
	Description string
}

// Voices lists the selectable voices in carousel order.
var Voices = []Voice{
	{ID: "voice-a", Name: "목소리 A", Description: "부드럽고 친근한 톤"},
	{ID: "voice-b", Name: "목소리 B", Description: "명랑하고 활기찬 톤"},
	{ID: "voice-c", Name: "목소리 C", Description: "차분하고 전문적인 톤"},
	{ID: "voice-d", Name: "목소리 D", Description: "따뜻하고 편안한 톤"},
}

// Fallback durations shown on the completion screen when no conversation
// recorded any.
const (
	DefaultTotalSec = 180
	DefaultUserSec  = 90
)

// Durations is the result of the last finished conversation.
type Durations struct {
	TotalSec int
	UserSec  int
}

// Store is the in-process preference store.
type Store struct {
	mu        sync.Mutex
	subtitles *bool
	voice     string
	last      *Durations
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Subtitles reports the subtitle preference; it defaults to on.
func (s *Store) Subtitles() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subtitles == nil || *s.subtitles
}

func (s *Store) SetSubtitles(on bool) {
	s.mu.Lock()
	s.subtitles = &on
	s.mu.Unlock()
}

// Voice returns the selected voice, or the first one when none was chosen.
func (s *Store) Voice() Voice {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := VoiceByID(s.voice); ok {
		return v
	}
	return Voices[0]
}

// SetVoice selects a voice by id. Unknown ids are ignored.
func (s *Store) SetVoice(id string) bool {
	if _, ok := VoiceByID(id); !ok {
		return false
	}
	s.mu.Lock()
	s.voice = id
	s.mu.Unlock()
	return true
}

// VoiceByID looks up a voice.
func VoiceByID(id string) (Voice, bool) {
	for _, v := range Voices {
		if v.ID == id {
			return v, true
		}
	}
	return Voice{}, false
}

// SaveDurations records the last conversation's durations.
func (s *Store) SaveDurations(d Durations) {
	s.mu.Lock()
	s.last = &d
	s.mu.Unlock()
}

// TakeDurations returns and forgets the last durations, falling back to the
// defaults when none were saved.
func (s *Store) TakeDurations() Durations {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := Durations{TotalSec: DefaultTotalSec, UserSec: DefaultUserSec}
	if s.last != nil {
		d = *s.last
		s.last = nil
	}
	return d
}

// Clear drops every preference.
func (s *Store) Clear() {
	s.mu.Lock()
	s.subtitles, s.voice, s.last = nil, "", nil
	s.mu.Unlock()
}
