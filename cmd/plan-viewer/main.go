package main

import (
	"os"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/lox/idleplanner/internal/planviewer"
)

var cli struct {
	Addr string `arg:"" help:"diagnostics server address to connect to, e.g. localhost:8090"`
}

func main() {
	kong.Parse(&cli,
		kong.Name("plan-viewer"),
		kong.Description("live terminal viewer for a cmd/planner replan --diagnostics-addr stream"),
	)

	logFile, err := os.OpenFile("plan-viewer.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		os.Exit(1)
	}
	defer logFile.Close()

	logger := log.New(logFile)
	model := planviewer.NewModel(cli.Addr, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())

	go planviewer.Listen(program, cli.Addr)

	if _, err := program.Run(); err != nil {
		logger.Fatal("tui exited with error", "error", err)
	}
}
