// Package policy decides which commands are privileged or destructive.
package policy

import "strings"

// DenialMessage is the fixed reply for unauthorized privileged commands.
const DenialMessage = "Sorry, you're not authorized to do that."

// CommandDecision classifies a structured command.
type CommandDecision struct {
	Destructive    bool
	PrivilegedOnly bool
}

var destructiveKeywords = []string{
	"delete", "remove", "drop", "wipe", "destroy", "truncate", "terminate",
}

// DecideCommand classifies a command name. Destructive commands must pass
// the confirmation gate; privileged ones additionally require an operator
// on the admin allowlist.
func DecideCommand(name string) CommandDecision {
	in := strings.ToLower(strings.TrimSpace(name))
	for _, kw := range destructiveKeywords {
		if strings.Contains(in, kw) {
			return CommandDecision{Destructive: true, PrivilegedOnly: true}
		}
	}
	return CommandDecision{}
}

// Authorizer checks operator privileges against a configured allowlist.
// An empty allowlist grants everyone, for single-operator dev setups.
type Authorizer struct {
	admins map[string]bool
}

func NewAuthorizer(adminIDs []string) *Authorizer {
	admins := make(map[string]bool, len(adminIDs))
	for _, id := range adminIDs {
		id = strings.TrimSpace(id)
		if id != "" {
			admins[id] = true
		}
	}
	return &Authorizer{admins: admins}
}

func (a *Authorizer) IsPrivileged(userID string) bool {
	if len(a.admins) == 0 {
		return true
	}
	return a.admins[userID]
}
