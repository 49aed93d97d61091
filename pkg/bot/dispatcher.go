// Package bot drives the conversation: it parses inbound user actions into
// structured events and walks each user's session through the browsing,
// memory-creation and history flows.
package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/keepsake-bot/keepsake/pkg/bus"
	"github.com/keepsake-bot/keepsake/pkg/dates"
	"github.com/keepsake-bot/keepsake/pkg/events"
	"github.com/keepsake-bot/keepsake/pkg/memory"
	"github.com/keepsake-bot/keepsake/pkg/session"
)

// EventsProvider is the remote catalog contract the dispatcher needs.
type EventsProvider interface {
	Fetch(ctx context.Context, category events.Category, spec events.DateSpec) []events.Event
}

type Dispatcher struct {
	bus      *bus.MessageBus
	sessions *session.Manager
	provider EventsProvider
	store    memory.Store
	logger   *slog.Logger
	now      func() time.Time
}

func NewDispatcher(b *bus.MessageBus, sessions *session.Manager, provider EventsProvider, store memory.Store) *Dispatcher {
	return &Dispatcher{
		bus:      b,
		sessions: sessions,
		provider: provider,
		store:    store,
		logger:   slog.Default().With("component", "dispatcher"),
		now:      time.Now,
	}
}

// Run consumes inbound messages until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		msg, ok := d.bus.ConsumeInbound(ctx)
		if !ok {
			return
		}
		d.HandleInbound(ctx, msg)
	}
}

// HandleInbound processes one user action as a single serialized unit of
// work against that user's session.
func (d *Dispatcher) HandleInbound(ctx context.Context, msg bus.InboundMessage) {
	ev := ParseInbound(msg)
	d.sessions.With(msg.UserID, func(sess *session.Session) {
		for _, out := range d.dispatch(ctx, msg, sess, ev) {
			d.bus.PublishOutbound(out)
		}
	})
}

// dispatch is the single FSM transition function: it may mutate the session
// and returns the messages to render. Every branch either transitions or
// re-prompts the current state.
func (d *Dispatcher) dispatch(ctx context.Context, msg bus.InboundMessage, sess *session.Session, ev Event) []bus.OutboundMessage {
	chatID := msg.ChatID

	switch ev.Kind {
	case EventStart:
		sess.Reset()
		return []bus.OutboundMessage{mainMenu(chatID, textGreeting)}

	case EventMainMenu:
		// global escape, available from any state
		sess.Reset()
		return []bus.OutboundMessage{mainMenu(chatID, textGreeting)}

	case EventBrowse, EventCategories:
		return []bus.OutboundMessage{categoryMenu(chatID)}

	case EventCategory:
		return []bus.OutboundMessage{dateMenu(chatID, ev.Category)}

	case EventDateChoice:
		return d.handleDateChoice(ctx, chatID, sess, ev)

	case EventEventNav:
		return d.navigateEvents(msg, chatID, sess, ev.Delta)

	case EventMemoryStart:
		return []bus.OutboundMessage{memoryDateMenu(chatID)}

	case EventMemoryDate:
		if ev.Choice == ChoiceToday {
			sess.Draft.Date = dates.Format(d.now())
			sess.State = session.AwaitingPlace
			return []bus.OutboundMessage{text(chatID, textAskPlace)}
		}
		sess.State = session.AwaitingMemoryDate
		return []bus.OutboundMessage{text(chatID, textEnterDate)}

	case EventRating:
		if sess.State != session.AwaitingRating {
			return nil
		}
		if ev.Rating < 1 || ev.Rating > 10 {
			return []bus.OutboundMessage{text(chatID, textBadRating)}
		}
		sess.Draft.Rating = ev.Rating
		sess.State = session.AwaitingDescription
		return []bus.OutboundMessage{descriptionPrompt(chatID)}

	case EventSkip:
		return d.handleSkip(ctx, msg, chatID, sess, ev.Skip)

	case EventHistory:
		return d.handleHistory(ctx, msg, chatID, sess, ev.Period)

	case EventMemoryNav:
		return d.navigateMemories(msg, chatID, sess, ev.Delta)

	case EventPhoto:
		if sess.State != session.AwaitingPhoto {
			return nil
		}
		return d.saveMemory(ctx, msg, chatID, sess, ev.PhotoPath)

	case EventText:
		return d.handleText(ctx, msg, chatID, sess, ev.Text)
	}

	return nil
}

func (d *Dispatcher) handleDateChoice(ctx context.Context, chatID int64, sess *session.Session, ev Event) []bus.OutboundMessage {
	switch ev.Choice {
	case ChoiceCustom:
		sess.Category = ev.Category
		sess.State = session.AwaitingCustomEventDate
		return []bus.OutboundMessage{text(chatID, textEnterDate)}
	case ChoiceToday, ChoiceTomorrow:
		return d.showEvents(ctx, chatID, sess, ev.Category, events.DateSpec(ev.Choice))
	}
	return nil
}

// showEvents fetches and caches a fresh list. An empty result leaves the
// previously cached list untouched.
func (d *Dispatcher) showEvents(ctx context.Context, chatID int64, sess *session.Session, category events.Category, spec events.DateSpec) []bus.OutboundMessage {
	evs := d.provider.Fetch(ctx, category, spec)
	if len(evs) == 0 {
		return []bus.OutboundMessage{text(chatID, textNoEvents)}
	}
	sess.Events.Set(evs)
	return []bus.OutboundMessage{eventCard(chatID, &sess.Events)}
}

func (d *Dispatcher) navigateEvents(msg bus.InboundMessage, chatID int64, sess *session.Session, delta int) []bus.OutboundMessage {
	if sess.Events.Len() == 0 {
		// normal after idle eviction, not a fault
		d.logger.Warn("navigation on empty events list", "msg_id", msg.ID, "user_id", msg.UserID)
		return []bus.OutboundMessage{text(chatID, textNothingBrowsed)}
	}
	if !sess.Events.Navigate(delta) {
		return nil
	}
	return []bus.OutboundMessage{eventCard(chatID, &sess.Events)}
}

func (d *Dispatcher) navigateMemories(msg bus.InboundMessage, chatID int64, sess *session.Session, delta int) []bus.OutboundMessage {
	if sess.Memories.Len() == 0 {
		d.logger.Warn("navigation on empty memories list", "msg_id", msg.ID, "user_id", msg.UserID)
		return []bus.OutboundMessage{text(chatID, textNothingBrowsed)}
	}
	if !sess.Memories.Navigate(delta) {
		return nil
	}
	return []bus.OutboundMessage{memoryCard(chatID, &sess.Memories)}
}

func (d *Dispatcher) handleSkip(ctx context.Context, msg bus.InboundMessage, chatID int64, sess *session.Session, target string) []bus.OutboundMessage {
	switch {
	case target == SkipDescription && sess.State == session.AwaitingDescription:
		sess.Draft.Description = ""
		sess.State = session.AwaitingPhoto
		return []bus.OutboundMessage{photoPrompt(chatID, textAskPhoto)}
	case target == SkipPhoto && sess.State == session.AwaitingPhoto:
		return d.saveMemory(ctx, msg, chatID, sess, "")
	}
	return nil
}

// saveMemory persists the draft. A storage fault keeps the state so the user
// can retry the photo step.
func (d *Dispatcher) saveMemory(ctx context.Context, msg bus.InboundMessage, chatID int64, sess *session.Session, photoPath string) []bus.OutboundMessage {
	rec := &memory.Memory{
		UserID:      msg.UserID,
		Date:        sess.Draft.Date,
		Place:       sess.Draft.Place,
		Rating:      sess.Draft.Rating,
		Description: sess.Draft.Description,
		PhotoPath:   photoPath,
	}
	if _, err := d.store.Insert(ctx, rec); err != nil {
		d.logger.Error("memory insert failed", "msg_id", msg.ID, "user_id", msg.UserID, "error", err)
		return []bus.OutboundMessage{photoPrompt(chatID, textTryAgain)}
	}

	confirm := textSavedNoPhoto
	if photoPath != "" {
		confirm = textSavedWithPhoto
	}
	sess.Reset()
	return []bus.OutboundMessage{mainMenu(chatID, confirm)}
}

func (d *Dispatcher) handleHistory(ctx context.Context, msg bus.InboundMessage, chatID int64, sess *session.Session, period string) []bus.OutboundMessage {
	switch period {
	case "":
		return []bus.OutboundMessage{periodMenu(chatID)}
	case ChoiceCustom:
		sess.State = session.AwaitingHistoryStart
		return []bus.OutboundMessage{text(chatID, textEnterStart)}
	case PeriodWeek:
		return d.showMemories(ctx, msg, chatID, sess, memory.LastDays(7, d.now()))
	case PeriodMonth:
		return d.showMemories(ctx, msg, chatID, sess, memory.LastDays(30, d.now()))
	}
	return nil
}

func (d *Dispatcher) showMemories(ctx context.Context, msg bus.InboundMessage, chatID int64, sess *session.Session, w memory.Window) []bus.OutboundMessage {
	mems, err := d.store.Query(ctx, msg.UserID, w)
	if err != nil {
		d.logger.Error("memory query failed", "msg_id", msg.ID, "user_id", msg.UserID, "error", err)
		return []bus.OutboundMessage{text(chatID, textTryAgain)}
	}
	if len(mems) == 0 {
		return []bus.OutboundMessage{text(chatID, textNoMemories)}
	}
	sess.Memories.Set(mems)
	return []bus.OutboundMessage{memoryCard(chatID, &sess.Memories)}
}

func (d *Dispatcher) handleText(ctx context.Context, msg bus.InboundMessage, chatID int64, sess *session.Session, input string) []bus.OutboundMessage {
	switch sess.State {
	case session.AwaitingCustomEventDate:
		if _, err := dates.Parse(input); err != nil {
			return []bus.OutboundMessage{text(chatID, textBadDate)}
		}
		category := sess.Category
		sess.Category = ""
		sess.State = session.Idle
		return d.showEvents(ctx, chatID, sess, category, events.DateSpec(input))

	case session.AwaitingMemoryDate:
		day, err := dates.Parse(input)
		if err != nil {
			return []bus.OutboundMessage{text(chatID, textBadDate)}
		}
		if dates.After(day, d.now()) {
			return []bus.OutboundMessage{text(chatID, textFutureDate)}
		}
		sess.Draft.Date = dates.Format(day)
		sess.State = session.AwaitingPlace
		return []bus.OutboundMessage{text(chatID, textAskPlace)}

	case session.AwaitingPlace:
		sess.Draft.Place = input
		sess.State = session.AwaitingRating
		return []bus.OutboundMessage{ratingMenu(chatID)}

	case session.AwaitingRating:
		return []bus.OutboundMessage{text(chatID, textBadRating)}

	case session.AwaitingDescription:
		sess.Draft.Description = input
		sess.State = session.AwaitingPhoto
		return []bus.OutboundMessage{photoPrompt(chatID, textAskPhoto)}

	case session.AwaitingPhoto:
		return []bus.OutboundMessage{photoPrompt(chatID, textPhotoOrSkip)}

	case session.AwaitingHistoryStart:
		day, err := dates.Parse(input)
		if err != nil {
			return []bus.OutboundMessage{text(chatID, textBadDate)}
		}
		sess.HistoryStart = day
		sess.State = session.AwaitingHistoryEnd
		return []bus.OutboundMessage{text(chatID, textEnterEnd)}

	case session.AwaitingHistoryEnd:
		day, err := dates.Parse(input)
		if err != nil {
			return []bus.OutboundMessage{text(chatID, textBadDate)}
		}
		if sess.HistoryStart.After(day) {
			return []bus.OutboundMessage{text(chatID, textStartAfterEnd)}
		}
		w := memory.Between(sess.HistoryStart, day)
		sess.HistoryStart = time.Time{}
		sess.State = session.Idle
		return d.showMemories(ctx, msg, chatID, sess, w)
	}

	// idle free text: nudge back to the menu
	return []bus.OutboundMessage{mainMenu(chatID, textGreeting)}
}
