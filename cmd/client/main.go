package main

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/lox/holdem-server/internal/clientui"
)

var CLI struct {
	Server string `kong:"short='s',default='localhost:4040',help='Table address to connect to'"`
	Name   string `kong:"short='n',help='Player name (prompted if omitted)'"`
	Log    string `kong:"default='holdem-client.log',help='Path to write client logs'"`
}

func main() {
	kctx := kong.Parse(&CLI)

	name := strings.TrimSpace(CLI.Name)
	if name == "" {
		fmt.Print("Enter your name: ")
		fmt.Scanln(&name)
		name = strings.TrimSpace(name)
	}
	if name == "" {
		fmt.Println("a player name is required")
		kctx.Exit(1)
	}

	logFile, err := os.OpenFile(CLI.Log, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Printf("failed to open log file: %v\n", err)
		kctx.Exit(1)
	}
	defer logFile.Close()
	logger := log.New(logFile)

	conn, err := net.Dial("tcp", CLI.Server)
	if err != nil {
		fmt.Printf("failed to connect to %s: %v\n", CLI.Server, err)
		kctx.Exit(1)
	}
	defer conn.Close()

	model := clientui.New(conn, name, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		logger.Error("tui exited with error", "err", err)
		kctx.Exit(1)
	}
}
