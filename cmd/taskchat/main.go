package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// CLI represents the main CLI structure
type CLI struct {
	Config   string `help:"Path to config file"`
	User     string `env:"TASKCHAT_USER" default:"local" help:"Owner whose tasks and conversations to use"`
	LogLevel string `help:"Log level, overrides the config file"`

	Chat          ChatCmd          `cmd:"" help:"Send a message to the task assistant"`
	Tasks         TasksCmd         `cmd:"" help:"List tasks directly, without the assistant"`
	Conversations ConversationsCmd `cmd:"" help:"List conversations"`
	History       HistoryCmd       `cmd:"" help:"Show a conversation transcript"`
	Migrate       MigrateCmd       `cmd:"" help:"Database migrations"`
}

func main() {
	// Load .env before kong reads env-tagged flags
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("taskchat"),
		kong.Description("Conversational task assistant"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	err := ctx.Run(&cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
