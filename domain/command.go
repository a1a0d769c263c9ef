package domain

import "strings"

const commandPrefix = "/"

// Command is one classified inbound line of an active session.
type Command interface {
	isCommand()
}

// RenameCommand is "/name <new>". NewName is empty when the argument is missing.
type RenameCommand struct {
	NewName string
}

// HelpCommand is "/help".
type HelpCommand struct{}

// PrivateCommand is "/<target> <text>".
type PrivateCommand struct {
	Target string
	Text   string
}

// ChatCommand is any line without a leading slash, relayed to the whole room.
type ChatCommand struct {
	Text string
}

func (RenameCommand) isCommand()  {}
func (HelpCommand) isCommand()    {}
func (PrivateCommand) isCommand() {}
func (ChatCommand) isCommand()    {}

// ParseCommand classifies a line. Only the first token decides the command:
// "/name" and "/help" must match exactly, any other slash token is a private message target.
func ParseCommand(line string) Command {
	if !strings.HasPrefix(line, commandPrefix) {
		return ChatCommand{Text: line}
	}
	head, rest, _ := strings.Cut(strings.TrimPrefix(line, commandPrefix), " ")
	switch head {
	case "name":
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return RenameCommand{}
		}
		return RenameCommand{NewName: fields[0]}
	case "help":
		return HelpCommand{}
	default:
		return PrivateCommand{Target: head, Text: rest}
	}
}
