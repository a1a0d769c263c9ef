package client

import (
	"chatroom/protocol"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

// LineKind classifies a server line for display.
type LineKind int

const (
	KindChat LineKind = iota
	KindUserList
	KindPrivate
	KindSystem
)

var systemLines = lo.Flatten([][]string{
	protocol.WelcomeBanner,
	protocol.HelpLines,
	{
		protocol.NotOnline,
		protocol.TalkingToYourself,
		protocol.NameUsage,
		protocol.NameTaken,
		protocol.NameRequired,
		protocol.MessageUsage,
	},
})

var systemSuffixes = []string{" has joined the room.", " has left the room."}

// Classify guesses the kind of a line from its shape.
// A user named "From" chatting looks like a private message; the protocol carries no tag.
func Classify(line string) LineKind {
	switch {
	case protocol.IsUserList(line):
		return KindUserList
	case (strings.HasPrefix(line, "From ") || strings.HasPrefix(line, "To ")) && strings.Contains(line, ": "):
		return KindPrivate
	case line != "" && lo.Contains(systemLines, line):
		return KindSystem
	case lo.SomeBy(systemSuffixes, func(suffix string) bool { return strings.HasSuffix(line, suffix) }):
		return KindSystem
	case strings.Contains(line, " has changed their name to ") && !strings.Contains(line, ": "):
		return KindSystem
	default:
		return KindChat
	}
}

// Renderer prints server lines to a terminal.
// User-list updates are drawn as a table instead of being printed verbatim.
type Renderer struct {
	out     io.Writer
	colours bool

	mu    sync.Mutex
	users []string
}

func NewRenderer(out io.Writer, colours bool) *Renderer {
	return &Renderer{out: out, colours: colours}
}

// Users returns the last known user list.
func (r *Renderer) Users() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.users...)
}

func (r *Renderer) Render(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch Classify(line) {
	case KindUserList:
		users, _ := protocol.ParseUserList(line)
		r.users = users
		r.renderUsers()
	case KindPrivate:
		fmt.Fprintln(r.out, r.paint(color.New(color.FgMagenta, color.OpBold), line))
	case KindSystem:
		fmt.Fprintln(r.out, r.paint(color.New(color.FgYellow), line))
	default:
		fmt.Fprintln(r.out, line)
	}
}

func (r *Renderer) renderUsers() {
	table := tablewriter.NewWriter(r.out)
	table.SetHeader([]string{"#", "Online"})
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("\t")
	for i, name := range r.users {
		table.Append([]string{fmt.Sprintf("%d", i+1), name})
	}
	table.Render()
}

func (r *Renderer) paint(style color.Style, line string) string {
	if !r.colours {
		return line
	}
	return style.Render(line)
}
