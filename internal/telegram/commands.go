// Package telegram is a chat front-end for the cycle store.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SoarinFerret/CycleWarden/internal/countdown"
	"github.com/SoarinFerret/CycleWarden/internal/cycle"
	"github.com/SoarinFerret/CycleWarden/internal/form"
	"github.com/SoarinFerret/CycleWarden/internal/history"
	"github.com/SoarinFerret/CycleWarden/internal/store"
)

// Commands turns chat commands into store operations and reply text.
type Commands struct {
	store   *store.Store
	allowed map[int64]bool
}

func NewCommands(s *store.Store, allowedChatIDs []int64) *Commands {
	allowed := make(map[int64]bool, len(allowedChatIDs))
	for _, id := range allowedChatIDs {
		allowed[id] = true
	}
	return &Commands{store: s, allowed: allowed}
}

// Allowed reports whether chatID may drive the store.
func (c *Commands) Allowed(chatID int64) bool {
	return c.allowed[chatID]
}

// ChatIDs lists the chats that receive completion messages.
func (c *Commands) ChatIDs() []int64 {
	ids := make([]int64, 0, len(c.allowed))
	for id := range c.allowed {
		ids = append(ids, id)
	}
	return ids
}

// New handles "/new <minutes> <task…>".
func (c *Commands) New(ctx context.Context, args []string) string {
	if len(args) < 2 {
		return MsgNewUsage
	}
	data, err := form.Parse(strings.Join(args[1:], " "), args[0])
	if err != nil {
		return validationReply(err)
	}
	started, err := c.store.CreateNewCycle(ctx, data)
	switch {
	case errors.Is(err, store.ErrCycleActive):
		return MsgCycleActive
	case errors.Is(err, form.ErrInvalid):
		return validationReply(err)
	case err != nil:
		return MsgInternalError
	}
	return fmt.Sprintf(MsgStartedFmt, started.Task, started.MinutesAmount)
}

func (c *Commands) Stop(ctx context.Context) string {
	ended, ok := c.store.InterruptCurrentCycle(ctx)
	if !ok {
		return MsgNoActiveCycle
	}
	left := countdown.Derive(ended, ended.EndDate())
	return fmt.Sprintf(MsgInterruptedFmt, ended.Task, left.Digits())
}

func (c *Commands) Status() string {
	active, ok := c.store.ActiveCycle()
	if !ok {
		return MsgNoActiveCycle
	}
	cd := countdown.Derive(active, c.store.Clock().Now())
	return fmt.Sprintf(MsgStatusFmt, active.Task, cd.Digits(), int(cd.Progress()*100))
}

func (c *Commands) History() string {
	rows := history.Rows(c.store.State(), c.store.Clock().Now())
	if len(rows) == 0 {
		return MsgNoHistory
	}
	if len(rows) > historyLimit {
		rows = rows[:historyLimit]
	}
	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "%s · %s · %s · %s\n", r.Task, r.Duration, r.Started, r.Status)
	}
	return strings.TrimRight(b.String(), "\n")
}

// EndedMessage is sent to allowed chats when a cycle ends.
func EndedMessage(c cycle.Cycle) string {
	if c.Status() == cycle.StatusCompleted {
		return fmt.Sprintf(MsgCompletedFmt, c.Task, c.MinutesAmount)
	}
	return fmt.Sprintf(MsgEndedFmt, c.Task)
}

func validationReply(err error) string {
	msg := err.Error()
	// drop the sentinel prefix, keep the field messages
	msg = strings.TrimPrefix(msg, form.ErrInvalid.Error()+": ")
	return strings.ReplaceAll(msg, "\n", "; ")
}
