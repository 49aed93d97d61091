// Package bus decouples the chat transport from the conversation dispatcher.
// The transport publishes inbound user actions and renders the outbound
// messages the dispatcher produces; neither side imports the other.
package bus

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type InboundKind string

const (
	InboundText     InboundKind = "text"
	InboundCommand  InboundKind = "command"
	InboundCallback InboundKind = "callback"
	InboundPhoto    InboundKind = "photo"
)

// InboundMessage is one user action. ID is a correlation id stamped at the
// transport boundary and carried through dispatcher logs.
type InboundMessage struct {
	ID        string
	UserID    int64
	ChatID    int64
	Kind      InboundKind
	Text      string // text of a plain message, or the command name
	Callback  string // button payload for InboundCallback
	PhotoPath string // persisted attachment path for InboundPhoto
	Timestamp time.Time
}

// Button is one inline keyboard button: a label and the callback payload the
// transport sends back when it is pressed.
type Button struct {
	Label string
	Data  string
}

// Keyboard is rows of inline buttons, transport-neutral.
type Keyboard [][]Button

// OutboundMessage asks the transport to render text, optionally as a photo
// card (one of PhotoURL or PhotoPath), with an inline keyboard and/or a
// persistent reply keyboard.
type OutboundMessage struct {
	ChatID        int64
	Text          string
	PhotoURL      string
	PhotoPath     string
	Keyboard      Keyboard
	ReplyKeyboard [][]string
}

type MessageBus struct {
	inbound  chan InboundMessage
	outbound chan OutboundMessage
}

func NewMessageBus() *MessageBus {
	return &MessageBus{
		inbound:  make(chan InboundMessage, 100),
		outbound: make(chan OutboundMessage, 100),
	}
}

// PublishInbound stamps the message with an id and timestamp and queues it
// for dispatch.
func (mb *MessageBus) PublishInbound(msg InboundMessage) {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	mb.inbound <- msg
}

func (mb *MessageBus) ConsumeInbound(ctx context.Context) (InboundMessage, bool) {
	select {
	case msg := <-mb.inbound:
		return msg, true
	case <-ctx.Done():
		return InboundMessage{}, false
	}
}

func (mb *MessageBus) PublishOutbound(msg OutboundMessage) {
	mb.outbound <- msg
}

func (mb *MessageBus) SubscribeOutbound(ctx context.Context) (OutboundMessage, bool) {
	select {
	case msg := <-mb.outbound:
		return msg, true
	case <-ctx.Done():
		return OutboundMessage{}, false
	}
}
