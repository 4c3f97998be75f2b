// Package router classifies inbound messages into routing decisions.
package router

import (
	"strings"

	"github.com/lbianchi/adpilot/internal/confirm"
	"github.com/lbianchi/adpilot/internal/session"
)

// DecisionKind tags how an inbound message should be handled.
type DecisionKind int

const (
	KindFreeform DecisionKind = iota
	KindConfirmation
	KindCommand
	KindNavigation
	KindResumeWorkflow
)

func (k DecisionKind) String() string {
	switch k {
	case KindConfirmation:
		return "confirmation"
	case KindCommand:
		return "command"
	case KindNavigation:
		return "navigation"
	case KindResumeWorkflow:
		return "resume_workflow"
	default:
		return "freeform"
	}
}

// NavAction is a navigation directive.
type NavAction string

const (
	NavBack   NavAction = "back"
	NavCancel NavAction = "cancel"
	NavMenu   NavAction = "menu"
)

// CommandName is the closed enumeration of structured commands.
type CommandName string

const (
	CmdUnknown        CommandName = "unknown"
	CmdHelp           CommandName = "help"
	CmdProducts       CommandName = "products"
	CmdAddProduct     CommandName = "add-product"
	CmdRemoveProduct  CommandName = "remove-product"
	CmdCampaigns      CommandName = "campaigns"
	CmdDeleteCampaign CommandName = "delete-campaign"
)

// Command is a parsed structured command.
type Command struct {
	Name CommandName
	Args []string
}

// Decision is the routing outcome for one inbound message.
type Decision struct {
	Kind    DecisionKind
	Command Command
	Nav     NavAction
	Text    string
}

var commandNames = map[string]CommandName{
	"help":            CmdHelp,
	"products":        CmdProducts,
	"add-product":     CmdAddProduct,
	"remove-product":  CmdRemoveProduct,
	"campaigns":       CmdCampaigns,
	"delete-campaign": CmdDeleteCampaign,
}

var navAliases = map[string]NavAction{
	"back": NavBack, "b": NavBack,
	"cancel": NavCancel, "stop": NavCancel, "quit": NavCancel, "exit": NavCancel,
	"menu": NavMenu, "m": NavMenu, "main": NavMenu, "home": NavMenu,
}

// ParseCommand splits slash-prefixed text into a command name and args.
// The name is matched case-insensitively against the closed enumeration;
// unrecognized names parse as CmdUnknown so dispatch can answer explicitly.
func ParseCommand(text string) (Command, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return Command{}, false
	}
	fields := strings.Fields(text[1:])
	if len(fields) == 0 {
		return Command{}, false
	}
	name, ok := commandNames[strings.ToLower(fields[0])]
	if !ok {
		name = CmdUnknown
	}
	return Command{Name: name, Args: fields[1:]}, true
}

// ParseNavigation matches navigation keywords and their short aliases.
func ParseNavigation(text string) (NavAction, bool) {
	nav, ok := navAliases[strings.ToLower(strings.TrimSpace(text))]
	return nav, ok
}

// Router decides how each inbound message is interpreted. Routing itself is
// pure classification; callers act on the decision.
type Router struct {
	gate     *confirm.Gate
	sessions *session.Manager
}

func New(gate *confirm.Gate, sessions *session.Manager) *Router {
	return &Router{gate: gate, sessions: sessions}
}

// Route classifies rawText, first match wins:
// pending confirmation > structured command > navigation > active workflow
// > freeform.
func (r *Router) Route(userID, rawText string) Decision {
	if r.gate.HasPending(userID) {
		return Decision{Kind: KindConfirmation, Text: rawText}
	}
	if cmd, ok := ParseCommand(rawText); ok {
		return Decision{Kind: KindCommand, Command: cmd, Text: rawText}
	}
	if nav, ok := ParseNavigation(rawText); ok {
		return Decision{Kind: KindNavigation, Nav: nav, Text: rawText}
	}
	if r.sessions.Active(userID) {
		return Decision{Kind: KindResumeWorkflow, Text: rawText}
	}
	return Decision{Kind: KindFreeform, Text: rawText}
}
