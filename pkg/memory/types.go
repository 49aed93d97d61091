package memory

import (
	"errors"
	"time"

	"github.com/keepsake-bot/keepsake/pkg/dates"
)

var ErrInvalidRating = errors.New("rating must be between 1 and 10")

// Memory is one persisted record of a day's outing. Place, Rating,
// Description and PhotoPath are optional; the zero value means absent.
type Memory struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Date        string    `json:"date"` // literal DD.MM.YYYY as entered
	Place       string    `json:"place,omitempty"`
	Rating      int       `json:"rating,omitempty"`
	Description string    `json:"description,omitempty"`
	PhotoPath   string    `json:"photo_path,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Window is an inclusive range of calendar days used to filter memories.
type Window struct {
	Start time.Time
	End   time.Time
}

// LastDays is the rolling window of the n days up to and including today.
func LastDays(n int, today time.Time) Window {
	end := dates.Day(today)
	return Window{Start: end.AddDate(0, 0, -n), End: end}
}

// Between builds a window from explicit start and end days.
func Between(start, end time.Time) Window {
	return Window{Start: dates.Day(start), End: dates.Day(end)}
}
