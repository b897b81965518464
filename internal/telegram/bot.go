package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tele "gopkg.in/telebot.v3"

	"github.com/SoarinFerret/CycleWarden/internal/cycle"
	"github.com/SoarinFerret/CycleWarden/internal/logging"
)

// Bot is the Telegram front-end.
type Bot struct {
	bot  *tele.Bot
	cmds *Commands
	ctx  context.Context
}

// NewBot creates the bot and registers its handlers.
func NewBot(token string, cmds *Commands) (*Bot, error) {
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: BotPollerTimeout},
		OnError: func(err error, c tele.Context) {
			slog.Error("Telegram handler failed", logging.Error(err))
		},
	}

	bot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	b := &Bot{bot: bot, cmds: cmds, ctx: context.Background()}
	b.registerHandlers()
	return b, nil
}

// Run polls for updates until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx
	go func() {
		<-ctx.Done()
		b.bot.Stop()
	}()
	slog.Info("Telegram bot started", "username", b.bot.Me.Username)
	b.bot.Start()
	return nil
}

func (b *Bot) registerHandlers() {
	b.bot.Use(b.restrict)

	b.bot.Handle(CmdStart, b.handleHelp)
	b.bot.Handle(CmdHelp, b.handleHelp)
	b.bot.Handle(CmdNew, b.handleNew)
	b.bot.Handle(CmdStop, b.handleStop)
	b.bot.Handle(CmdStatus, b.handleStatus)
	b.bot.Handle(CmdHistory, b.handleHistory)
}

// restrict drops commands from chats outside the allow list.
func (b *Bot) restrict(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if c.Chat() == nil || !b.cmds.Allowed(c.Chat().ID) {
			if c.Chat() != nil {
				slog.Warn("Rejected telegram chat", logging.ChatID(c.Chat().ID))
			}
			return c.Send(MsgNotAllowed)
		}
		return next(c)
	}
}

func (b *Bot) handleHelp(c tele.Context) error {
	return c.Send(MsgHelp)
}

func (b *Bot) handleNew(c tele.Context) error {
	return c.Send(b.cmds.New(b.ctx, c.Args()))
}

func (b *Bot) handleStop(c tele.Context) error {
	return c.Send(b.cmds.Stop(b.ctx))
}

func (b *Bot) handleStatus(c tele.Context) error {
	return c.Send(b.cmds.Status())
}

func (b *Bot) handleHistory(c tele.Context) error {
	return c.Send(b.cmds.History())
}

// CycleEnded tells every allowed chat that c ended.
func (b *Bot) CycleEnded(_ context.Context, c cycle.Cycle) error {
	msg := EndedMessage(c)
	var firstErr error
	for _, id := range b.cmds.ChatIDs() {
		if _, err := b.bot.Send(tele.ChatID(id), msg); err != nil {
			slog.Warn("Failed to send telegram message", logging.ChatID(id), logging.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
