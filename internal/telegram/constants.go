package telegram

import "time"

const BotPollerTimeout = 10 * time.Second

// Commands
const (
	CmdStart   = "/start"
	CmdHelp    = "/help"
	CmdNew     = "/new"
	CmdStop    = "/stop"
	CmdStatus  = "/status"
	CmdHistory = "/history"
)

// Replies
const (
	MsgHelp = `CycleWarden
/new <minutes> <task> - start a cycle
/stop - interrupt the running cycle
/status - show the countdown
/history - list recent cycles`
	MsgNotAllowed     = "This chat is not allowed to control CycleWarden."
	MsgNewUsage       = "Usage: /new <minutes> <task>"
	MsgCycleActive    = "A cycle is already running. /stop it first."
	MsgNoActiveCycle  = "No cycle is running."
	MsgNoHistory      = "No cycles yet."
	MsgInternalError  = "Something went wrong, check the daemon log."
	MsgStartedFmt     = "Started %q for %d minutes."
	MsgInterruptedFmt = "Interrupted %q with %s left."
	MsgStatusFmt      = "%s: %s left (%d%%)"
	MsgCompletedFmt   = "Cycle completed: %s (%d minutes)."
	MsgEndedFmt       = "Cycle interrupted: %s."
)

// historyLimit caps the rows sent for /history.
const historyLimit = 10
