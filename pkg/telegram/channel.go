package telegram

import (
	"context"
	"strconv"
	"sync"

	"github.com/keepsake-bot/keepsake/pkg/bus"
)

type Channel interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	IsRunning() bool
	IsAllowed(userID int64, username string) bool
}

type BaseChannel struct {
	bus       *bus.MessageBus
	running   bool
	name      string
	allowList []string
	mu        sync.RWMutex
}

func NewBaseChannel(name string, messageBus *bus.MessageBus, allowList []string) *BaseChannel {
	return &BaseChannel{
		bus:       messageBus,
		name:      name,
		allowList: allowList,
	}
}

func (c *BaseChannel) Name() string {
	return c.name
}

func (c *BaseChannel) IsRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

func (c *BaseChannel) setRunning(running bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = running
}

// IsAllowed checks the sender against the allow-list; an empty list admits
// everyone. Entries match either the numeric user id or the username, with
// or without a leading @.
func (c *BaseChannel) IsAllowed(userID int64, username string) bool {
	if len(c.allowList) == 0 {
		return true
	}

	idStr := strconv.FormatInt(userID, 10)
	for _, allowed := range c.allowList {
		if allowed == idStr {
			return true
		}
		trimmed := allowed
		if len(trimmed) > 0 && trimmed[0] == '@' {
			trimmed = trimmed[1:]
		}
		if username != "" && trimmed == username {
			return true
		}
	}
	return false
}

func (c *BaseChannel) publish(msg bus.InboundMessage) {
	c.bus.PublishInbound(msg)
}
