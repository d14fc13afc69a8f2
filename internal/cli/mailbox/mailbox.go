package mailbox

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/keepup/internal/cli"
	"github.com/julianstephens/keepup/internal/models"
)

type InboxListCmd struct {
	Limit int `help:"Show at most this many messages (0 = all)." default:"20" short:"n"`
}

func (c *InboxListCmd) Run(ctx *cli.Context) error {
	box, err := ctx.Inbox()
	if err != nil {
		return err
	}

	messages, err := box.List(c.Limit)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		fmt.Println("Inbox is empty.")
		return nil
	}

	for _, m := range messages {
		fmt.Println(FormatMessage(m))
	}
	return nil
}

// FormatMessage renders one message on a single line, unread marked with '*'.
func FormatMessage(m models.MailboxMessage) string {
	mark := " "
	if !m.IsRead {
		mark = "*"
	}
	return fmt.Sprintf("%s [%d] %s  %s", mark, m.ID, m.Timestamp.Local().Format("2006-01-02 15:04"), m.Message)
}

type InboxUnreadCmd struct{}

func (c *InboxUnreadCmd) Run(ctx *cli.Context) error {
	box, err := ctx.Inbox()
	if err != nil {
		return err
	}
	n, err := box.UnreadCount()
	if err != nil {
		return err
	}
	fmt.Println(n)
	return nil
}

type InboxReadCmd struct{}

func (c *InboxReadCmd) Run(ctx *cli.Context) error {
	box, err := ctx.Inbox()
	if err != nil {
		return err
	}
	n, err := box.MarkAllRead()
	if err != nil {
		return err
	}
	fmt.Printf("Marked %d message(s) as read.\n", n)
	return nil
}

type InboxDeleteCmd struct {
	ID  int64 `arg:"" help:"Message ID to delete."`
	Yes bool  `help:"Skip confirmation." short:"y"`
}

func (c *InboxDeleteCmd) Run(ctx *cli.Context) error {
	if !c.Yes {
		ok, err := confirm(fmt.Sprintf("Delete message %d?", c.ID))
		if err != nil || !ok {
			fmt.Println("Delete cancelled.")
			return err
		}
	}

	box, err := ctx.Inbox()
	if err != nil {
		return err
	}
	if err := box.DeleteOne(c.ID); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	fmt.Printf("Deleted message %d.\n", c.ID)
	return nil
}

type InboxClearCmd struct {
	Yes bool `help:"Skip confirmation." short:"y"`
}

func (c *InboxClearCmd) Run(ctx *cli.Context) error {
	if !c.Yes {
		ok, err := confirm("Delete every message in the inbox?")
		if err != nil || !ok {
			fmt.Println("Clear cancelled.")
			return err
		}
	}

	box, err := ctx.Inbox()
	if err != nil {
		return err
	}
	n, err := box.ClearAll()
	if err != nil {
		return fmt.Errorf("failed to clear inbox: %w", err)
	}
	fmt.Printf("Deleted %d message(s).\n", n)
	return nil
}

func confirm(title string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description("A backup is taken first when auto backup is enabled.").
		Affirmative("Delete").
		Negative("Cancel").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}
