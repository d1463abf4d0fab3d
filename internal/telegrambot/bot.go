// Package telegrambot is the transport layer: it runs the long-poll update
// loop, translates Telegram updates into dispatch messages, routes admin
// commands into the registration workflow and sends sticker replies.
package telegrambot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/thewoodenpuppet/forest-sticker-bot/internal/conversation"
	"github.com/thewoodenpuppet/forest-sticker-bot/internal/cooldown"
	"github.com/thewoodenpuppet/forest-sticker-bot/internal/dataset"
	"github.com/thewoodenpuppet/forest-sticker-bot/internal/dispatch"
	"github.com/thewoodenpuppet/forest-sticker-bot/internal/platform/config"
	"github.com/thewoodenpuppet/forest-sticker-bot/internal/platform/observability"
)

const updateTimeoutSeconds = 60

const (
	cmdAddSticker = "addsticker"
	cmdDone       = "done"
	cmdExport     = "export"
)

const (
	replyExportDenied = "⛔ Sorry, this is an admin-only command."
	replyExportFailed = "Could not find stickers.csv to send."
)

type Bot struct {
	cfg        *config.Config
	api        *tgbotapi.BotAPI
	store      *dataset.Store
	fsm        *conversation.Manager
	dispatcher *dispatch.Dispatcher
	logger     *zerolog.Logger
}

func New(cfg *config.Config, store *dataset.Store, fsm *conversation.Manager, logger *zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("bot initialization failed: %w", err)
	}

	return &Bot{
		cfg:    cfg,
		api:    api,
		store:  store,
		fsm:    fsm,
		logger: logger,
	}, nil
}

// SetDispatcher attaches the message dispatcher. The dispatcher sends replies
// through the bot, so it is built after the bot and attached here.
func (b *Bot) SetDispatcher(d *dispatch.Dispatcher) {
	b.dispatcher = d
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.api.Self.UserName).Msg("bot is running")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			switch {
			case update.Message != nil:
				b.handleMessage(ctx, update.Message)
			case update.ChannelPost != nil:
				b.handleChannelPost(ctx, update.ChannelPost)
			}
		}
	}
}

// SendSticker delivers a sticker as a silent reply to the triggering message.
// It implements dispatch.Sender.
func (b *Bot) SendSticker(_ context.Context, chatID int64, replyTo int, stickerID string) error {
	sticker := tgbotapi.NewSticker(chatID, tgbotapi.FileID(stickerID))
	sticker.ReplyToMessageID = replyTo
	sticker.DisableNotification = true

	if _, err := b.api.Send(sticker); err != nil {
		return fmt.Errorf("sending sticker to chat %d: %w", chatID, err)
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	observability.MessagesSeen.WithLabelValues("message").Inc()

	if msg.From == nil {
		return
	}

	if msg.IsCommand() {
		b.handleCommand(msg)
		return
	}

	// The registration workflow lives in the admin's private chat with the
	// bot; an open session must never swallow the same admin's group
	// messages, which always stay on the dispatch path.
	if msg.Chat.IsPrivate() {
		stickerID := ""
		if msg.Sticker != nil {
			stickerID = msg.Sticker.FileID
		}

		if reply, handled := b.fsm.HandleMessage(msg.From.ID, msg.Text, stickerID); handled {
			if reply != "" {
				b.reply(msg.Chat.ID, reply)
			}

			return
		}
	}

	if msg.Text == "" {
		return
	}

	b.dispatcher.Handle(ctx, dispatch.Message{
		ChatID:    msg.Chat.ID,
		SenderID:  msg.From.ID,
		MessageID: msg.MessageID,
		Text:      msg.Text,
		SentAt:    msg.Time(),
		Forwarded: msg.ForwardDate != 0,
		Relayed:   msg.SenderChat != nil,
	})
}

// handleChannelPost processes channel posts, which carry no individual sender
// and share one channel-level cooldown record.
func (b *Bot) handleChannelPost(ctx context.Context, post *tgbotapi.Message) {
	observability.MessagesSeen.WithLabelValues("channel_post").Inc()

	if post.Text == "" {
		return
	}

	b.dispatcher.Handle(ctx, dispatch.Message{
		ChatID:    post.Chat.ID,
		SenderID:  cooldown.ChannelSender,
		MessageID: post.MessageID,
		Text:      post.Text,
		SentAt:    post.Time(),
		Forwarded: post.ForwardDate != 0,
	})
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	b.logger.Info().Str("command", msg.Command()).Int64("user_id", msg.From.ID).Msg("handling command")

	switch msg.Command() {
	case cmdAddSticker:
		if !msg.Chat.IsPrivate() {
			return
		}

		b.reply(msg.Chat.ID, b.fsm.Begin(msg.From.ID))
	case cmdDone:
		if !msg.Chat.IsPrivate() {
			return
		}

		if reply, ok := b.fsm.Finish(msg.From.ID); ok {
			b.reply(msg.Chat.ID, reply)
		}
	case cmdExport:
		b.handleExport(msg)
	}
}

// handleExport sends the dataset file back to an admin, permission-gated the
// same way as registration.
func (b *Bot) handleExport(msg *tgbotapi.Message) {
	if err := b.cfg.CheckAdmin(msg.From.ID); err != nil {
		b.logger.Warn().Err(err).Msg("export denied")
		b.reply(msg.Chat.ID, replyExportDenied)

		return
	}

	doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FilePath(b.store.Path()))
	if _, err := b.api.Send(doc); err != nil {
		b.logger.Error().Err(err).Msg("failed to send dataset export")
		b.reply(msg.Chat.ID, replyExportFailed)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error().Err(err).Msg("failed to send reply")
	}
}
