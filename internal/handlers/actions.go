package handlers

import (
	"strings"

	"github.com/mroshb/anonchat_bot/internal/matchmaking"
	"github.com/mroshb/anonchat_bot/pkg/utils"
)

// Action is the closed set of intents the bot boundary resolves every
// command, button and callback to. Free text never reaches the engine.
type Action int

const (
	ActionNone Action = iota
	ActionStart
	ActionSearchAny
	ActionSearchMale
	ActionSearchFemale
	ActionSearchMenu
	ActionStop
	ActionSkip
	ActionReport
	ActionGenderMenu
	ActionSetGender
	ActionStatus
	ActionHelp
	ActionInvite
	ActionRate
	ActionStats
	ActionReports
)

// SearchCategory returns the category for a search action.
func (a Action) SearchCategory() (matchmaking.Category, bool) {
	switch a {
	case ActionSearchAny:
		return matchmaking.CategoryAny, true
	case ActionSearchMale:
		return matchmaking.CategoryMale, true
	case ActionSearchFemale:
		return matchmaking.CategoryFemale, true
	}
	return "", false
}

var commands = map[string]Action{
	"start":   ActionStart,
	"search":  ActionSearchAny,
	"male":    ActionSearchMale,
	"female":  ActionSearchFemale,
	"stop":    ActionStop,
	"next":    ActionSkip,
	"skip":    ActionSkip,
	"report":  ActionReport,
	"gender":  ActionGenderMenu,
	"status":  ActionStatus,
	"help":    ActionHelp,
	"invite":  ActionInvite,
	"stats":   ActionStats,
	"reports": ActionReports,
}

// ParseCommand maps a bot command (without the slash) to an Action.
func ParseCommand(command string) Action {
	return commands[strings.ToLower(command)]
}

var buttons = map[string]Action{
	BtnSearchAny:    ActionSearchAny,
	BtnSearchFilter: ActionSearchMenu,
	BtnStop:         ActionStop,
	BtnSkip:         ActionSkip,
	BtnReport:       ActionReport,
	BtnMyGender:     ActionGenderMenu,
	BtnStatus:       ActionStatus,
	BtnInvite:       ActionInvite,
	BtnHelp:         ActionHelp,
}

// ParseButton maps an exact reply-keyboard label to an Action.
func ParseButton(text string) Action {
	return buttons[utils.StripInvisible(text)]
}

// Callback data prefixes
const (
	CbSearch = "search:"
	CbGender = "gender:"
	CbRate   = "rate:"
)

// Callback is a parsed inline-button payload.
type Callback struct {
	Action Action
	Arg    string
}

// ParseCallback maps inline-button data to an Action with its argument.
// Unknown or malformed payloads yield ActionNone.
func ParseCallback(data string) Callback {
	switch {
	case strings.HasPrefix(data, CbSearch):
		switch matchmaking.Category(strings.TrimPrefix(data, CbSearch)) {
		case matchmaking.CategoryAny:
			return Callback{Action: ActionSearchAny}
		case matchmaking.CategoryMale:
			return Callback{Action: ActionSearchMale}
		case matchmaking.CategoryFemale:
			return Callback{Action: ActionSearchFemale}
		}
	case strings.HasPrefix(data, CbGender):
		arg := strings.TrimPrefix(data, CbGender)
		switch arg {
		case "male", "female", "clear":
			return Callback{Action: ActionSetGender, Arg: arg}
		}
	case strings.HasPrefix(data, CbRate):
		arg := strings.TrimPrefix(data, CbRate)
		if arg == "up" || arg == "down" {
			return Callback{Action: ActionRate, Arg: arg}
		}
	}
	return Callback{Action: ActionNone}
}
