// Package session holds the per-user conversation state: the FSM state tag,
// the in-progress memory draft, and the two pagination lists (events and
// memories). Everything here is process-lifetime only; a restart loses it.
package session

import (
	"time"

	"github.com/keepsake-bot/keepsake/pkg/events"
	"github.com/keepsake-bot/keepsake/pkg/memory"
)

// State is the conversation FSM state tag.
type State int

const (
	Idle State = iota
	AwaitingMemoryDate
	AwaitingPlace
	AwaitingRating
	AwaitingDescription
	AwaitingPhoto
	AwaitingCustomEventDate
	AwaitingHistoryStart
	AwaitingHistoryEnd
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingMemoryDate:
		return "awaiting-memory-date"
	case AwaitingPlace:
		return "awaiting-place"
	case AwaitingRating:
		return "awaiting-rating"
	case AwaitingDescription:
		return "awaiting-description"
	case AwaitingPhoto:
		return "awaiting-photo"
	case AwaitingCustomEventDate:
		return "awaiting-custom-event-date"
	case AwaitingHistoryStart:
		return "awaiting-history-start"
	case AwaitingHistoryEnd:
		return "awaiting-history-end"
	default:
		return "unknown"
	}
}

// Draft is the memory record under construction. Zero values mean the field
// has not been collected (or was skipped).
type Draft struct {
	Date        string
	Place       string
	Rating      int
	Description string
}

// Session is one user's conversation. Access goes through Manager.With, which
// serializes units of work per user.
type Session struct {
	State State
	Draft Draft

	// pending flow fragments
	Category     events.Category // category awaiting a custom event date
	HistoryStart time.Time       // start of a custom history range

	Events   PageList[events.Event]
	Memories PageList[*memory.Memory]
}

// Reset clears the draft and any pending fragments and returns to Idle. The
// page lists survive so a browsed list can still be navigated after the
// escape to the main menu.
func (s *Session) Reset() {
	s.State = Idle
	s.Draft = Draft{}
	s.Category = ""
	s.HistoryStart = time.Time{}
}
