package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/elee1766/taskchat/src/chatservice"
)

// ChatCmd sends one message through the assistant.
type ChatCmd struct {
	Text           []string `arg:"" help:"The message to send"`
	ConversationID string   `short:"c" help:"Continue an existing conversation"`
	ShowTools      bool     `help:"Print the tool calls the assistant made"`
}

func (p *ChatCmd) Run(ctx *kong.Context, cli *CLI) error {
	a, err := buildApp(cli)
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.chat.SendMessage(context.Background(), chatservice.SendMessageRequest{
		Owner:          cli.User,
		ConversationID: p.ConversationID,
		Content:        strings.Join(p.Text, " "),
	})
	if err != nil {
		return err
	}

	if p.ShowTools {
		for _, inv := range resp.ToolInvocations {
			if inv.Error != "" {
				fmt.Printf("[tool] %s failed: %s\n", inv.Tool, inv.Error)
			} else {
				fmt.Printf("[tool] %s %s\n", inv.Tool, string(inv.Arguments))
			}
		}
	}

	fmt.Println(resp.Reply)
	fmt.Printf("\n(conversation %s)\n", resp.ConversationID)
	return nil
}
