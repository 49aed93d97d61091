// Package telegram is the chat transport. It turns Telegram updates into bus
// messages (persisting photo attachments on the way in) and renders the
// dispatcher's outbound messages as cards, menus and keyboards.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/keepsake-bot/keepsake/pkg/bus"
	"github.com/keepsake-bot/keepsake/pkg/storage"
)

type TelegramConfig struct {
	Token     string   `json:"token"`
	Proxy     string   `json:"proxy"`
	AllowFrom []string `json:"allow_from"`
}

type TelegramChannel struct {
	*BaseChannel
	bot    *telego.Bot
	config TelegramConfig
	photos *storage.PhotoStore
	logger *slog.Logger
}

func NewTelegramChannel(cfg TelegramConfig, messageBus *bus.MessageBus, photos *storage.PhotoStore) (*TelegramChannel, error) {
	var opts []telego.BotOption

	if cfg.Proxy != "" {
		proxyURL, parseErr := url.Parse(cfg.Proxy)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", cfg.Proxy, parseErr)
		}
		opts = append(opts, telego.WithHTTPClient(&http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyURL(proxyURL),
			},
		}))
	}

	bot, err := telego.NewBot(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &TelegramChannel{
		BaseChannel: NewBaseChannel("telegram", messageBus, cfg.AllowFrom),
		bot:         bot,
		config:      cfg,
		photos:      photos,
		logger:      slog.Default().With("component", "telegram"),
	}, nil
}

func (c *TelegramChannel) Start(ctx context.Context) error {
	updates, err := c.bot.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout: 30,
	})
	if err != nil {
		return fmt.Errorf("failed to start long polling: %w", err)
	}

	c.setRunning(true)
	c.logger.Info("telegram bot connected", "username", c.bot.Username())

	go c.handleOutbound(ctx)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					c.logger.Info("updates channel closed")
					return
				}
				if update.Message != nil {
					c.handleMessage(ctx, update.Message)
				} else if update.CallbackQuery != nil {
					c.handleCallbackQuery(ctx, update.CallbackQuery)
				}
			}
		}
	}()

	return nil
}

func (c *TelegramChannel) Stop(ctx context.Context) error {
	c.logger.Info("stopping telegram bot")
	c.setRunning(false)
	return nil
}

func (c *TelegramChannel) handleMessage(ctx context.Context, message *telego.Message) {
	user := message.From
	if user == nil {
		return
	}
	if !c.IsAllowed(user.ID, user.Username) {
		return
	}

	chatID := message.Chat.ID
	c.bot.SendChatAction(ctx, tu.ChatAction(tu.ID(chatID), telego.ChatActionTyping))

	msg := bus.InboundMessage{
		UserID: user.ID,
		ChatID: chatID,
	}

	switch {
	case len(message.Photo) > 0:
		path, err := c.downloadPhoto(ctx, user.ID, message.Photo)
		if err != nil {
			c.logger.Error("photo intake failed", "user_id", user.ID, "error", err)
			c.sendText(ctx, chatID, "Couldn't receive that photo, please try again.", nil, nil)
			return
		}
		msg.Kind = bus.InboundPhoto
		msg.PhotoPath = path

	case strings.HasPrefix(message.Text, "/"):
		msg.Kind = bus.InboundCommand
		msg.Text = strings.TrimPrefix(strings.Fields(message.Text)[0], "/")

	case message.Text != "":
		msg.Kind = bus.InboundText
		msg.Text = message.Text

	default:
		return
	}

	c.publish(msg)
}

func (c *TelegramChannel) handleCallbackQuery(ctx context.Context, callback *telego.CallbackQuery) {
	if !c.IsAllowed(callback.From.ID, callback.From.Username) {
		return
	}

	c.bot.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{
		CallbackQueryID: callback.ID,
	})

	chatID := callback.From.ID
	// drop the tapped menu message so the chat doesn't pile up with stale
	// keyboards
	if cid, messageID, ok := extractChatAndMessageID(callback.Message); ok {
		chatID = cid
		c.bot.DeleteMessage(ctx, &telego.DeleteMessageParams{
			ChatID:    tu.ID(cid),
			MessageID: messageID,
		})
	}

	c.publish(bus.InboundMessage{
		UserID:   callback.From.ID,
		ChatID:   chatID,
		Kind:     bus.InboundCallback,
		Callback: callback.Data,
	})
}

// downloadPhoto fetches the largest variant of the attachment and persists
// it, returning the stored path.
func (c *TelegramChannel) downloadPhoto(ctx context.Context, userID int64, sizes []telego.PhotoSize) (string, error) {
	largest := sizes[len(sizes)-1]

	file, err := c.bot.GetFile(ctx, &telego.GetFileParams{FileID: largest.FileID})
	if err != nil {
		return "", fmt.Errorf("get file: %w", err)
	}

	data, err := tu.DownloadFile(c.bot.FileDownloadURL(file.FilePath))
	if err != nil {
		return "", fmt.Errorf("download file: %w", err)
	}

	path, err := c.photos.SavePhoto(userID, data)
	if err != nil {
		return "", fmt.Errorf("save photo: %w", err)
	}
	return path, nil
}

func (c *TelegramChannel) handleOutbound(ctx context.Context) {
	for {
		msg, ok := c.bus.SubscribeOutbound(ctx)
		if !ok {
			return
		}
		c.render(ctx, msg)
	}
}

// render sends one outbound message. Photo cards that fail to send fall back
// to a text-only card; rendering failures are never fatal.
func (c *TelegramChannel) render(ctx context.Context, msg bus.OutboundMessage) {
	inline := buildInlineKeyboard(msg.Keyboard)
	reply := buildReplyKeyboard(msg.ReplyKeyboard)

	if msg.PhotoURL != "" {
		if c.sendPhoto(ctx, msg.ChatID, tu.FileFromURL(msg.PhotoURL), msg.Text, inline) {
			return
		}
		c.logger.Warn("photo card by URL failed, falling back to text", "chat_id", msg.ChatID)
	}

	if msg.PhotoPath != "" {
		if f, err := os.Open(msg.PhotoPath); err == nil {
			sent := c.sendPhoto(ctx, msg.ChatID, tu.File(f), msg.Text, inline)
			f.Close()
			if sent {
				return
			}
			c.logger.Warn("photo card by path failed, falling back to text", "chat_id", msg.ChatID, "path", msg.PhotoPath)
		}
	}

	c.sendText(ctx, msg.ChatID, msg.Text, inline, reply)
}

func (c *TelegramChannel) sendPhoto(ctx context.Context, chatID int64, photo telego.InputFile, caption string, inline *telego.InlineKeyboardMarkup) bool {
	params := tu.Photo(tu.ID(chatID), photo)
	params.Caption = caption
	params.ParseMode = telego.ModeHTML
	if inline != nil {
		params.ReplyMarkup = inline
	}

	_, err := c.bot.SendPhoto(ctx, params)
	return err == nil
}

func (c *TelegramChannel) sendText(ctx context.Context, chatID int64, content string, inline *telego.InlineKeyboardMarkup, reply *telego.ReplyKeyboardMarkup) {
	if content == "" {
		return
	}

	params := tu.Message(tu.ID(chatID), content)
	params.ParseMode = telego.ModeHTML
	if inline != nil {
		params.ReplyMarkup = inline
	} else if reply != nil {
		params.ReplyMarkup = reply
	}

	if _, err := c.bot.SendMessage(ctx, params); err != nil {
		// HTML may be malformed by user-entered text; retry plain
		params.ParseMode = ""
		if _, err := c.bot.SendMessage(ctx, params); err != nil {
			c.logger.Error("send message failed", "chat_id", chatID, "error", err)
		}
	}
}

func buildInlineKeyboard(kb bus.Keyboard) *telego.InlineKeyboardMarkup {
	if len(kb) == 0 {
		return nil
	}
	rows := make([][]telego.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		if len(row) == 0 {
			continue
		}
		buttons := make([]telego.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tu.InlineKeyboardButton(b.Label).WithCallbackData(b.Data))
		}
		rows = append(rows, buttons)
	}
	if len(rows) == 0 {
		return nil
	}
	return tu.InlineKeyboard(rows...)
}

func buildReplyKeyboard(rows [][]string) *telego.ReplyKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}
	kbRows := make([][]telego.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]telego.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, tu.KeyboardButton(label))
		}
		kbRows = append(kbRows, buttons)
	}
	return tu.Keyboard(kbRows...).WithResizeKeyboard()
}

func extractChatAndMessageID(msg telego.MaybeInaccessibleMessage) (int64, int, bool) {
	switch m := msg.(type) {
	case *telego.Message:
		return m.Chat.ID, m.MessageID, true
	default:
		return 0, 0, false
	}
}
