package preview

import (
	"fmt"

	"lautenbacher.net/fcleds/color"
	"lautenbacher.net/fcleds/strip"
)

type CommandKind int

const (
	GetLed CommandKind = iota
	SetLed
	GetColor
	SetColor
)

func (k CommandKind) String() string {
	switch k {
	case GetLed:
		return "get-led"
	case SetLed:
		return "set-led"
	case GetColor:
		return "get-color"
	case SetColor:
		return "set-color"
	}
	return fmt.Sprintf("CommandKind(%d)", int(k))
}

// Command is a descriptor read or write against the live tables. It is
// executed on the control loop between frames.
type Command struct {
	Kind  CommandKind
	Index int
	Text  string
	reply chan Reply
}

// Reply carries the descriptor after the command ran.
type Reply struct {
	Text string
	Err  error
}

func newCommand(kind CommandKind, index int, text string) *Command {
	return &Command{Kind: kind, Index: index, Text: text, reply: make(chan Reply, 1)}
}

// Changed reports whether the command modifies a table.
func (c *Command) Changed() bool {
	return c.Kind == SetLed || c.Kind == SetColor
}

// Execute runs the command and answers the waiting request.
func (c *Command) Execute(s *strip.State, p *color.Palette) Reply {
	var r Reply
	switch c.Kind {
	case SetLed:
		r.Err = s.ParseLedConfig(c.Index, c.Text)
		fallthrough
	case GetLed:
		r.Text = s.GenerateLedConfig(c.Index)
		if r.Text == "" && r.Err == nil {
			r.Err = fmt.Errorf("%w: %d", strip.ErrIndexOutOfRange, c.Index)
		}
	case SetColor:
		r.Err = p.ParseColor(c.Index, c.Text)
		fallthrough
	case GetColor:
		r.Text = p.FormatColor(c.Index)
		if r.Text == "" && r.Err == nil {
			r.Err = fmt.Errorf("%w: %d", color.ErrIndexOutOfRange, c.Index)
		}
	default:
		r.Err = fmt.Errorf("unknown command %v", c.Kind)
	}
	c.reply <- r
	return r
}
