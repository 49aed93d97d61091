package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/keepsake-bot/keepsake/pkg/bus"
	"github.com/keepsake-bot/keepsake/pkg/events"
	"github.com/keepsake-bot/keepsake/pkg/memory"
	"github.com/keepsake-bot/keepsake/pkg/session"
)

// User-facing texts.
const (
	textGreeting       = "Hi! I can help you plan your day and keep its memories."
	textPickCategory   = "What are you interested in?"
	textPickDate       = "Pick a date"
	textEnterDate      = "Enter a date as DD.MM.YYYY"
	textBadDate        = "That doesn't look like a date. Enter it as DD.MM.YYYY."
	textFutureDate     = "You can't keep a memory from the future. Enter a date no later than today."
	textNoEvents       = "No events found for that date 😢"
	textNoMemories     = "No memories for that period"
	textNothingBrowsed = "Nothing to browse — pick a date first"
	textMemoryDate     = "📅 Pick the memory's date:"
	textAskPlace       = "🏛 What place was it?"
	textAskRating      = "Rate your day"
	textBadRating      = "Pick a rating from 1 to 10"
	textAskDescription = "📝 Describe your impressions:"
	textAskPhoto       = "📸 Send a photo of the day"
	textPhotoOrSkip    = "📸 Attach a photo or press Skip"
	textSavedWithPhoto = "✅ Memory saved with a photo!"
	textSavedNoPhoto   = "✅ Memory saved!"
	textTryAgain       = "Something went wrong on our side. Please try again."
	textPickPeriod     = "Which period should I show?"
	textEnterStart     = "Enter the period's start date (DD.MM.YYYY)"
	textEnterEnd       = "Enter the period's end date (DD.MM.YYYY)"
	textStartAfterEnd  = "The start date must not be later than the end date"
)

var menuButton = bus.Button{Label: "🏠 Menu", Data: "menu"}

func mainMenu(chatID int64, text string) bus.OutboundMessage {
	if text == "" {
		text = textGreeting
	}
	return bus.OutboundMessage{
		ChatID: chatID,
		Text:   text,
		ReplyKeyboard: [][]string{
			{menuBrowseLabel, menuMemoryLabel},
			{menuHistoryLabel},
		},
	}
}

func categoryMenu(chatID int64) bus.OutboundMessage {
	return bus.OutboundMessage{
		ChatID: chatID,
		Text:   textPickCategory,
		Keyboard: bus.Keyboard{
			{
				{Label: "Concerts", Data: "category:concert"},
				{Label: "Exhibitions", Data: "category:exhibition"},
				{Label: "Fun", Data: "category:fun"},
			},
			{{Label: "Back", Data: "menu"}},
		},
	}
}

func dateMenu(chatID int64, category events.Category) bus.OutboundMessage {
	cat := string(category)
	return bus.OutboundMessage{
		ChatID: chatID,
		Text:   textPickDate,
		Keyboard: bus.Keyboard{
			{
				{Label: "Today", Data: "date:today:" + cat},
				{Label: "Tomorrow", Data: "date:tomorrow:" + cat},
			},
			{
				{Label: "Enter a date", Data: "date:custom:" + cat},
				{Label: "Back", Data: "browse"},
			},
		},
	}
}

func memoryDateMenu(chatID int64) bus.OutboundMessage {
	return bus.OutboundMessage{
		ChatID: chatID,
		Text:   textMemoryDate,
		Keyboard: bus.Keyboard{
			{
				{Label: "Today", Data: "memdate:today"},
				{Label: "Another date", Data: "memdate:custom"},
			},
			{{Label: "Back", Data: "menu"}},
		},
	}
}

func ratingMenu(chatID int64) bus.OutboundMessage {
	var row []bus.Button
	kb := bus.Keyboard{}
	for i := 1; i <= 10; i++ {
		row = append(row, bus.Button{Label: strconv.Itoa(i), Data: "rating:" + strconv.Itoa(i)})
		if len(row) == 5 {
			kb = append(kb, row)
			row = nil
		}
	}
	kb = append(kb, []bus.Button{menuButton})
	return bus.OutboundMessage{ChatID: chatID, Text: textAskRating, Keyboard: kb}
}

func descriptionPrompt(chatID int64) bus.OutboundMessage {
	return bus.OutboundMessage{
		ChatID:   chatID,
		Text:     textAskDescription,
		Keyboard: bus.Keyboard{{{Label: "Skip", Data: "skip:description"}}},
	}
}

func photoPrompt(chatID int64, text string) bus.OutboundMessage {
	return bus.OutboundMessage{
		ChatID:   chatID,
		Text:     text,
		Keyboard: bus.Keyboard{{{Label: "Skip", Data: "skip:photo"}}},
	}
}

func periodMenu(chatID int64) bus.OutboundMessage {
	return bus.OutboundMessage{
		ChatID: chatID,
		Text:   textPickPeriod,
		Keyboard: bus.Keyboard{
			{
				{Label: "Week", Data: "history:week"},
				{Label: "Month", Data: "history:month"},
			},
			{
				{Label: "Pick a period", Data: "history:custom"},
				{Label: "Back", Data: "menu"},
			},
		},
	}
}

func text(chatID int64, s string) bus.OutboundMessage {
	return bus.OutboundMessage{ChatID: chatID, Text: s}
}

// eventCard renders the event at the list's browse index. The boundary card
// simply lacks the button that would navigate off the list.
func eventCard(chatID int64, list *session.PageList[events.Event]) bus.OutboundMessage {
	ev, ok := list.Current()
	if !ok {
		return text(chatID, textNothingBrowsed)
	}

	place := strings.TrimSpace(strings.Trim(ev.Place+", "+ev.Address, ", "))
	if place == "" {
		place = "Venue not listed"
	}
	price := ev.Price
	if price == "" {
		price = "Price not listed"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🎟 <b>%s</b>\n\n", escapeHTML(ev.Title))
	fmt.Fprintf(&sb, "📍 <b>Where:</b> %s\n", escapeHTML(place))
	fmt.Fprintf(&sb, "💰 <b>Price:</b> %s\n", escapeHTML(price))
	if ev.URL != "" {
		fmt.Fprintf(&sb, "🌐 <a href=\"%s\">Details</a>", ev.URL)
	}

	return bus.OutboundMessage{
		ChatID:   chatID,
		Text:     sb.String(),
		PhotoURL: ev.ImageURL,
		Keyboard: navKeyboard("event", list.AtStart(), list.AtEnd()),
	}
}

func memoryCard(chatID int64, list *session.PageList[*memory.Memory]) bus.OutboundMessage {
	m, ok := list.Current()
	if !ok {
		return text(chatID, textNothingBrowsed)
	}

	orAbsent := func(s string) string {
		if s == "" {
			return "Not set"
		}
		return escapeHTML(s)
	}
	rating := "Not set"
	if m.Rating != 0 {
		rating = strconv.Itoa(m.Rating)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 <b>Date:</b> %s\n", m.Date)
	fmt.Fprintf(&sb, "📍 <b>Place:</b> %s\n", orAbsent(m.Place))
	fmt.Fprintf(&sb, "⭐ <b>Rating:</b> %s\n", rating)
	fmt.Fprintf(&sb, "📝 <b>Notes:</b> %s", orAbsent(m.Description))

	return bus.OutboundMessage{
		ChatID:    chatID,
		Text:      sb.String(),
		PhotoPath: m.PhotoPath,
		Keyboard:  navKeyboard("mem", list.AtStart(), list.AtEnd()),
	}
}

func navKeyboard(prefix string, atStart, atEnd bool) bus.Keyboard {
	var row []bus.Button
	if !atStart {
		row = append(row, bus.Button{Label: "◀ Back", Data: prefix + ":prev"})
	}
	if !atEnd {
		row = append(row, bus.Button{Label: "Next ▶", Data: prefix + ":next"})
	}
	kb := bus.Keyboard{}
	if len(row) > 0 {
		kb = append(kb, row)
	}
	return append(kb, []bus.Button{menuButton})
}

func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
