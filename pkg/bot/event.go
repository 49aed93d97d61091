package bot

import (
	"strconv"
	"strings"

	"github.com/keepsake-bot/keepsake/pkg/bus"
	"github.com/keepsake-bot/keepsake/pkg/events"
)

// EventKind tags a parsed user action.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventStart             // /start
	EventMainMenu          // global escape back to the main menu
	EventBrowse            // "Let's go!" — open the category menu
	EventCategories        // back to the category menu
	EventCategory          // category picked
	EventDateChoice        // event date picked (today/tomorrow/custom)
	EventEventNav          // prev/next on an event card
	EventMemoryStart       // "Keep a memory" — open the memory date submenu
	EventMemoryDate        // memory date picked (today/custom)
	EventRating            // rating button
	EventSkip              // skip button (description or photo)
	EventHistory           // history period picked (week/month/custom)
	EventMemoryNav         // prev/next on a memory card
	EventText              // free-form text reply
	EventPhoto             // photo attachment, already persisted
)

const (
	ChoiceToday    = "today"
	ChoiceTomorrow = "tomorrow"
	ChoiceCustom   = "custom"

	PeriodWeek  = "week"
	PeriodMonth = "month"

	SkipDescription = "description"
	SkipPhoto       = "photo"
)

// Event is one user action parsed into structured fields at the transport
// boundary. Handlers never split payload strings themselves.
type Event struct {
	Kind      EventKind
	Category  events.Category
	Choice    string // today/tomorrow/custom
	Period    string // week/month/custom
	Skip      string // description/photo
	Delta     int    // -1 or +1 for navigation
	Rating    int
	Text      string
	PhotoPath string
}

// Reply-keyboard labels from the main menu arrive as plain text.
const (
	menuBrowseLabel  = "Let's go!"
	menuMemoryLabel  = "Keep a memory"
	menuHistoryLabel = "History"
)

// ParseInbound turns a bus message into a structured Event.
func ParseInbound(msg bus.InboundMessage) Event {
	switch msg.Kind {
	case bus.InboundCommand:
		if msg.Text == "start" {
			return Event{Kind: EventStart}
		}
		return Event{Kind: EventUnknown}

	case bus.InboundCallback:
		return parseCallback(msg.Callback)

	case bus.InboundPhoto:
		return Event{Kind: EventPhoto, PhotoPath: msg.PhotoPath}

	case bus.InboundText:
		switch msg.Text {
		case menuBrowseLabel:
			return Event{Kind: EventBrowse}
		case menuMemoryLabel:
			return Event{Kind: EventMemoryStart}
		case menuHistoryLabel:
			return Event{Kind: EventHistory, Period: ""}
		}
		return Event{Kind: EventText, Text: msg.Text}
	}
	return Event{Kind: EventUnknown}
}

func parseCallback(data string) Event {
	parts := strings.Split(data, ":")
	switch parts[0] {
	case "menu":
		return Event{Kind: EventMainMenu}
	case "browse":
		return Event{Kind: EventCategories}
	case "category":
		if len(parts) == 2 {
			return Event{Kind: EventCategory, Category: events.Category(parts[1])}
		}
	case "date":
		if len(parts) == 3 {
			return Event{
				Kind:     EventDateChoice,
				Choice:   parts[1],
				Category: events.Category(parts[2]),
			}
		}
	case "event":
		if d, ok := navDelta(parts); ok {
			return Event{Kind: EventEventNav, Delta: d}
		}
	case "mem":
		if d, ok := navDelta(parts); ok {
			return Event{Kind: EventMemoryNav, Delta: d}
		}
	case "memdate":
		if len(parts) == 2 && (parts[1] == ChoiceToday || parts[1] == ChoiceCustom) {
			return Event{Kind: EventMemoryDate, Choice: parts[1]}
		}
	case "rating":
		if len(parts) == 2 {
			if r, err := strconv.Atoi(parts[1]); err == nil {
				return Event{Kind: EventRating, Rating: r}
			}
		}
	case "skip":
		if len(parts) == 2 && (parts[1] == SkipDescription || parts[1] == SkipPhoto) {
			return Event{Kind: EventSkip, Skip: parts[1]}
		}
	case "history":
		if len(parts) == 2 {
			return Event{Kind: EventHistory, Period: parts[1]}
		}
	}
	return Event{Kind: EventUnknown}
}

func navDelta(parts []string) (int, bool) {
	if len(parts) != 2 {
		return 0, false
	}
	switch parts[1] {
	case "prev":
		return -1, true
	case "next":
		return 1, true
	}
	return 0, false
}
