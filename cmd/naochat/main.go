package main

import (
	"github.com/alecthomas/kong"
)

// CLI represents the main CLI structure
type CLI struct {
	Config    string `short:"c" type:"path" help:"Config file, overriding the user config location"`
	LogLevel  string `help:"Log level (debug, info, warn, error)"`
	LogFormat string `help:"Log format (text, json)"`

	Serve   ServeCmd   `cmd:"" default:"withargs" help:"Serve the chat API (default)"`
	Migrate MigrateCmd `cmd:"" help:"Database migrations"`
	Sync    SyncCmd    `cmd:"" help:"Write warehouse schema docs into the context folder"`
	Project ProjectCmd `cmd:"" help:"Project model keys, Slack credentials and members"`
	Chats   ChatsCmd   `cmd:"" help:"Inspect stored chats"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("naochat"),
		kong.Description("Chat with an analytics agent over your warehouses"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	if err := ctx.Run(&cli); err != nil {
		FatalError(createCLILogger(cli.LogLevel, cli.LogFormat), err)
	}
}
