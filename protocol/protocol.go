// Package protocol encodes and decodes the newline-delimited text lines exchanged
// between the chat server and its clients.
package protocol

import (
	"fmt"
	"strings"
)

// UserListMarker prefixes the line carrying the ordered list of online users.
const UserListMarker = "$UL"

const userListSeparator = ", "

// Replies sent to a single client.
const (
	NotOnline         = "That person is not online."
	TalkingToYourself = "Why are you talking to yourself?"
	NameUsage         = "You must supply a new name."
	NameTaken         = "That name is already taken."
	NameRequired      = "You must supply a name."
	MessageUsage      = "You must supply a message."
)

// WelcomeBanner is sent to a client right after its join handshake succeeds.
// The trailing empty line is part of the legacy output.
var WelcomeBanner = []string{
	"Welcome to the chatroom!",
	"Type a message in the text box to talk to everyone.",
	"Type /help for a listing of chat commands.",
	"",
}

// HelpLines answer "/help".
var HelpLines = []string{
	`Type "/name" followed by a new name to change your username.`,
	`Type "/" followed by a person's username to send a private message to them`,
	"Or, double-click on their name in the list to the right.",
	"Close the window to disconnect.",
}

// UserList renders names as "$UL[name1, name2]".
func UserList(names []string) string {
	return UserListMarker + "[" + strings.Join(names, userListSeparator) + "]"
}

// IsUserList reports whether the line is a user-list update.
func IsUserList(line string) bool {
	return strings.HasPrefix(line, UserListMarker)
}

// ParseUserList recovers the ordered names from a user-list line.
// The second result is false when the line is not a user-list update.
func ParseUserList(line string) ([]string, bool) {
	if !IsUserList(line) {
		return nil, false
	}
	body := strings.TrimPrefix(line, UserListMarker)
	body = strings.TrimSuffix(strings.TrimPrefix(body, "["), "]")
	if body == "" {
		return []string{}, true
	}
	return strings.Split(body, userListSeparator), true
}

func Joined(name string) string {
	return fmt.Sprintf("%s has joined the room.", name)
}

func Left(name string) string {
	return fmt.Sprintf("%s has left the room.", name)
}

func Renamed(oldName, newName string) string {
	return fmt.Sprintf("%s has changed their name to %s.", oldName, newName)
}

// Chat is a room message as every member sees it.
func Chat(name, text string) string {
	return name + ": " + text
}

// To confirms a private message to its sender.
func To(target, text string) string {
	return "To " + target + ": " + text
}

// From delivers a private message to its recipient.
func From(sender, text string) string {
	return "From " + sender + ": " + text
}
