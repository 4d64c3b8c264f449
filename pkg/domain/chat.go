package domain

import (
	"fmt"
	"math"
	"time"
)

// ChatSession is a summary row of GET /chat/sessions.
type ChatSession struct {
	SessionID             string     `json:"session_id"`
	Title                 string     `json:"title,omitempty"`
	StartedAt             string     `json:"started_at"`
	EndedAt               string     `json:"ended_at"`
	TotalDurationSec      float64    `json:"total_duration_sec"`
	UserSpeechDurationSec float64    `json:"user_speech_duration_sec"`
	CreatedAt             *Timestamp `json:"created_at,omitempty"`
	UpdatedAt             *Timestamp `json:"updated_at,omitempty"`
	MessageCount          int        `json:"message_count"`
}

// ChatMessage is one utterance of a recorded conversation.
type ChatMessage struct {
	Role        string  `json:"role"`
	Content     string  `json:"content"`
	Timestamp   string  `json:"timestamp"`
	DurationSec float64 `json:"duration_sec"`
}

// ChatSessionDetail is the full transcript of GET /chat/sessions/{id}.
type ChatSessionDetail struct {
	SessionID             string        `json:"session_id"`
	Title                 string        `json:"title,omitempty"`
	StartedAt             string        `json:"started_at"`
	EndedAt               string        `json:"ended_at"`
	TotalDurationSec      float64       `json:"total_duration_sec"`
	UserSpeechDurationSec float64       `json:"user_speech_duration_sec"`
	Messages              []ChatMessage `json:"messages"`
	CreatedAt             *Timestamp    `json:"created_at,omitempty"`
	UpdatedAt             *Timestamp    `json:"updated_at,omitempty"`
}

// HistoryItem is the list projection of a ChatSession shown in chat history.
type HistoryItem struct {
	ID                    string
	Date                  string
	Title                 string
	Duration              string
	TotalDurationSec      int
	UserSpeechDurationSec int
}

// NewHistoryItem projects a session summary into a history row.
func NewHistoryItem(s ChatSession) HistoryItem {
	total := int(math.Floor(s.TotalDurationSec))
	user := int(math.Floor(s.UserSpeechDurationSec))
	date := s.StartedAt
	if ts, err := ParseTimestamp(s.StartedAt); err == nil {
		date = FormatDate(ts.Time)
	}
	title := s.Title
	if title == "" {
		title = "(untitled)"
	}
	return HistoryItem{
		ID:                    s.SessionID,
		Date:                  date,
		Title:                 title,
		Duration:              FormatClock(user) + " / " + FormatClock(total),
		TotalDurationSec:      total,
		UserSpeechDurationSec: user,
	}
}

// FormatClock renders seconds as HH:MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// FormatDate renders t the way the Korean locale prints dates, compacted: 2025.1.9.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d.%d.%d.", t.Year(), int(t.Month()), t.Day())
}

// FormatSpoken renders a duration for summaries, e.g. "4분" or "2분 30초".
func FormatSpoken(seconds int) string {
	m, s := seconds/60, seconds%60
	switch {
	case m == 0:
		return fmt.Sprintf("%d초", s)
	case s == 0:
		return fmt.Sprintf("%d분", m)
	default:
		return fmt.Sprintf("%d분 %d초", m, s)
	}
}

// FormatHours renders a running total as "1시간 2분 3초".
func FormatHours(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d시간 %d분 %d초", seconds/3600, (seconds%3600)/60, seconds%60)
}

// Totals sums the durations of items.
func Totals(items []HistoryItem) (total, user int) {
	for _, it := range items {
		total += it.TotalDurationSec
		user += it.UserSpeechDurationSec
	}
	return total, user
}
