package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/x/term"
	"github.com/elee1766/naochat/src/aisdk"
	"github.com/elee1766/naochat/src/chatview"
	"github.com/elee1766/naochat/src/config"
	"github.com/elee1766/naochat/src/storage"
	"github.com/elee1766/naochat/src/theme"
)

// ChatsCmd inspects stored chats
type ChatsCmd struct {
	List ChatsListCmd `cmd:"" help:"List a user's chats"`
	Show ChatsShowCmd `cmd:"" help:"Print a chat transcript"`
}

// ChatsListCmd lists a user's chats
type ChatsListCmd struct {
	Email string `arg:"" help:"Account email"`
}

// Run executes the chats list command
func (c *ChatsListCmd) Run(kctx *kong.Context, cli *CLI) error {
	ctx := context.Background()
	e, err := openEnv(ctx, cli)
	if err != nil {
		return err
	}
	defer e.Close()

	user, err := storage.GetUserByEmail(ctx, e.db.DB(), c.Email)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("no account for %s", c.Email)
	}
	chats, err := storage.ListChatsByUser(ctx, e.db.DB(), e.project.ID, user.ID)
	if err != nil {
		return err
	}

	now := time.Now()
	w := tabwriter.NewWriter(kctx.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tUPDATED")
	for _, ch := range chats {
		fmt.Fprintf(w, "%s\t%s\t%s\n", ch.ID, ch.Title, chatview.FormatTimeAgo(now, ch.UpdatedAt))
	}
	return w.Flush()
}

// ChatsShowCmd prints a chat transcript
type ChatsShowCmd struct {
	ID      string `arg:"" help:"Chat id"`
	Theme   string `help:"Color theme (light, dark, system). Defaults to the owner's setting"`
	Width   int    `help:"Wrap width. Defaults to the terminal width"`
	NoColor bool   `help:"Disable syntax highlighting"`
}

// Run executes the chats show command
func (c *ChatsShowCmd) Run(kctx *kong.Context, cli *CLI) error {
	ctx := context.Background()
	e, err := openEnv(ctx, cli)
	if err != nil {
		return err
	}
	defer e.Close()

	chat, err := storage.GetChatByID(ctx, e.db.DB(), c.ID)
	if err != nil {
		return err
	}
	if chat == nil {
		return errors.New("chat not found")
	}
	rows, err := storage.GetChatMessages(ctx, e.db.DB(), chat.ID)
	if err != nil {
		return err
	}
	messages := make([]aisdk.UIMessage, len(rows))
	for i, r := range rows {
		messages[i] = r.UIMessage()
	}

	prefs := config.DefaultPreferences()
	if stored, err := storage.GetUserSettings(ctx, e.db.DB(), chat.UserID); err == nil && stored != nil {
		prefs, _ = config.ParsePreferences(stored.Preferences)
	}
	if c.Theme != "" {
		prefs.Theme = config.Theme(c.Theme)
	}

	width := c.Width
	tty := term.IsTerminal(os.Stdout.Fd())
	if width == 0 && tty {
		if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil {
			width = w
		}
	}

	tr := theme.NewTranscript(theme.For(prefs.Theme), width, tty && !c.NoColor)
	return tr.Render(kctx.Stdout, chat.Title, chatview.BuildView(messages))
}
