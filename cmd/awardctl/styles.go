package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A")).Bold(true)
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935")).Bold(true)
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#2196F3")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9e9e9e"))
)

// notifier prints board notices to the terminal.
type notifier struct {
	out io.Writer
}

func (n notifier) Success(msg string) {
	fmt.Fprintln(n.out, successStyle.Render("✓ "+msg))
}

func (n notifier) Failure(msg string) {
	fmt.Fprintln(n.out, failureStyle.Render("✗ "+msg))
}
