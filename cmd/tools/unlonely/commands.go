package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/zhouzirui/unlonely/backend/internal/model/chat"
	"github.com/zhouzirui/unlonely/backend/internal/model/mood"
	"github.com/zhouzirui/unlonely/backend/pkg/client"
)

// Context is handed to every command's Run.
type Context struct {
	Client  *client.Client
	Journal *client.Journal
	Out     io.Writer
}

func newContext(server, dataDir string, logger *log.Logger, out io.Writer) (*Context, error) {
	var medium client.Medium
	if dataDir == "" {
		dir, err := client.DefaultDir()
		if err != nil {
			logger.Warn("no config dir, local mood entries cannot be saved", "err", err)
		} else {
			dataDir = dir
		}
	}
	if dataDir != "" {
		fm, err := client.NewFileMedium(dataDir)
		if err != nil {
			return nil, err
		}
		medium = fm
	}

	c := client.New(server, nil)
	return &Context{
		Client:  c,
		Journal: client.NewJournal(client.NewRemoteRepository(c), client.NewLocalCache(medium, logger)),
		Out:     out,
	}, nil
}

type ChatCmd struct {
	Text []string `arg:"" help:"What you want to say."`
}

func (c *ChatCmd) Run(ctx *Context) error {
	text := strings.TrimSpace(strings.Join(c.Text, " "))
	if text == "" {
		return errors.New("nothing to say")
	}

	reply, err := ctx.Client.Chat(context.Background(), []chat.Message{{Role: chat.RoleUser, Content: text}})
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, reply.Message)
	return nil
}

type MoodLogCmd struct {
	Mood string `arg:"" optional:"" help:"Happy, Meh or Sad. Suggested from the note when omitted."`
	Note string `help:"Optional note." short:"n"`
}

func (c *MoodLogCmd) Run(ctx *Context) error {
	var note *string
	if c.Note != "" {
		note = &c.Note
	}

	m := c.Mood
	if m == "" {
		if note == nil {
			return errors.New("give a mood or a --note to suggest one from")
		}
		suggestion, err := ctx.Client.SuggestMood(context.Background(), c.Note)
		if err != nil {
			return err
		}
		m = string(suggestion.Mood)
		fmt.Fprintf(ctx.Out, "Sounds like %s\n", m)
	}

	sub, err := ctx.Journal.Submit(context.Background(), m, note)
	if err != nil {
		return err
	}

	if sub.Location == client.LocationLocal {
		fmt.Fprintf(ctx.Out, "Saved %s on this device (server storage unavailable)\n", sub.Entry.Mood)
		return nil
	}
	fmt.Fprintf(ctx.Out, "Saved %s\n", sub.Entry.Mood)
	return nil
}

var (
	moodStyles = map[mood.Mood]lipgloss.Style{
		mood.Happy: lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		mood.Meh:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		mood.Sad:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	}
	dimStyle = lipgloss.NewStyle().Faint(true)
)

func renderMood(m mood.Mood) string {
	style, ok := moodStyles[m]
	if !ok {
		style = lipgloss.NewStyle()
	}
	return style.Width(6).Render(string(m))
}

type MoodListCmd struct{}

func (c *MoodListCmd) Run(ctx *Context) error {
	entries, loc, err := ctx.Journal.History(context.Background())
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(ctx.Out, "No mood entries yet")
		return nil
	}
	if loc == client.LocationLocal {
		fmt.Fprintln(ctx.Out, dimStyle.Render("(entries kept on this device)"))
	}
	for _, e := range entries {
		line := dimStyle.Render(e.CreatedAt.Local().Format(time.DateTime)) + "  " + renderMood(e.Mood)
		if e.Note != nil {
			line += " " + *e.Note
		}
		fmt.Fprintln(ctx.Out, line)
	}
	return nil
}

type MoodClearCmd struct{}

func (c *MoodClearCmd) Run(ctx *Context) error {
	local := ctx.Journal.Local()
	n := local.Count(context.Background())
	if err := local.Clear(context.Background()); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Removed %d local entries\n", n)
	return nil
}
