package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/zhouzirui/unlonely/backend/internal/logger"
)

var CLI struct {
	Server   string `help:"API base URL." env:"UNLONELY_SERVER" default:"http://localhost:8080"`
	DataDir  string `help:"Where locally kept mood entries are stored. Defaults to the user config dir." type:"path"`
	LogLevel string `help:"Log level." default:"warn" enum:"debug,info,warn,error"`

	Chat ChatCmd `cmd:"" help:"Send one message to UnLonely."`
	Mood struct {
		Log   MoodLogCmd   `cmd:"" help:"Record how you feel."`
		List  MoodListCmd  `cmd:"" help:"Show your mood history." default:"1"`
		Clear MoodClearCmd `cmd:"" help:"Remove locally kept mood entries."`
	} `cmd:"" help:"Mood journal."`
}

func main() {
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI,
		kong.Name("unlonely"),
		kong.Description("Talk to UnLonely and keep a mood journal from the terminal."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)

	appLog, _, err := logger.Init(logger.Config{Level: CLI.LogLevel})
	if err != nil {
		log.Fatal("failed to initialise logger", "err", err)
	}

	appCtx, err := newContext(CLI.Server, CLI.DataDir, appLog, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
