package main

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"
)

// ConversationsCmd lists the owner's conversations.
type ConversationsCmd struct{}

func (p *ConversationsCmd) Run(ctx *kong.Context, cli *CLI) error {
	a, err := buildApp(cli)
	if err != nil {
		return err
	}
	defer a.Close()

	convs, err := a.chat.ListConversations(context.Background(), cli.User)
	if err != nil {
		return err
	}

	for _, c := range convs {
		title := c.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("%s  %s  %s\n", c.ID, c.UpdatedAt.Format("2006-01-02 15:04"), title)
	}
	fmt.Printf("\n%d conversations\n", len(convs))
	return nil
}

// HistoryCmd prints a conversation transcript.
type HistoryCmd struct {
	ConversationID string `arg:"" help:"Conversation to show"`
	ShowTools      bool   `help:"Include tool call records"`
}

func (p *HistoryCmd) Run(ctx *kong.Context, cli *CLI) error {
	a, err := buildApp(cli)
	if err != nil {
		return err
	}
	defer a.Close()

	msgs, err := a.chat.GetMessages(context.Background(), cli.User, p.ConversationID)
	if err != nil {
		return err
	}

	for _, m := range msgs {
		fmt.Printf("%s: %s\n", m.Role, m.Content)
		if p.ShowTools {
			for _, inv := range m.ToolCalls {
				if inv.Error != "" {
					fmt.Printf("  [tool] %s failed: %s\n", inv.Tool, inv.Error)
				} else {
					fmt.Printf("  [tool] %s %s\n", inv.Tool, string(inv.Arguments))
				}
			}
		}
	}
	return nil
}
