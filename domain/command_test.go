package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected Command
	}{
		{name: "Plain text is a room message", line: "hello everyone", expected: ChatCommand{Text: "hello everyone"}},
		{name: "Empty line is a room message", line: "", expected: ChatCommand{Text: ""}},
		{name: "Rename with argument", line: "/name carol", expected: RenameCommand{NewName: "carol"}},
		{name: "Rename keeps only the first word", line: "/name carol smith", expected: RenameCommand{NewName: "carol"}},
		{name: "Rename tolerates extra spaces", line: "/name   carol", expected: RenameCommand{NewName: "carol"}},
		{name: "Rename without argument", line: "/name", expected: RenameCommand{}},
		{name: "Rename with blank argument", line: "/name   ", expected: RenameCommand{}},
		{name: "Help", line: "/help", expected: HelpCommand{}},
		{name: "Help ignores trailing words", line: "/help me", expected: HelpCommand{}},
		{name: "Private message", line: "/bob hi there", expected: PrivateCommand{Target: "bob", Text: "hi there"}},
		{name: "Private message without text", line: "/bob", expected: PrivateCommand{Target: "bob"}},
		{name: "Lone slash", line: "/", expected: PrivateCommand{}},
		{name: "Command-like prefix is a target", line: "/nameless hi", expected: PrivateCommand{Target: "nameless", Text: "hi"}},
		{name: "Helper is a target", line: "/helper hi", expected: PrivateCommand{Target: "helper", Text: "hi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, ParseCommand(tt.line))
		})
	}
}

func TestSessionState_String(t *testing.T) {
	req := require.New(t)
	req.Equal("connecting", Connecting.String())
	req.Equal("active", Active.String())
	req.Equal("closed", Closed.String())
	req.Equal("unknown", SessionState(42).String())
}

func TestToStatus(t *testing.T) {
	req := require.New(t)
	req.Equal(RUNNING, ToStatus("R"))
	req.Equal(SLEEP, ToStatus("S"))
	req.Equal(UNKNOWN, ToStatus("?"))
}
