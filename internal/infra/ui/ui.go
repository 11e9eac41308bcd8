// Where: cli/internal/infra/ui/ui.go
// What: UserInterface used by pipeline usecases.
// Why: Usecases report progress without knowing about terminals or CI.
package ui

import (
	"fmt"
	"io"
)

// KeyValue is a key/value pair rendered inside a block.
type KeyValue struct {
	Key   string
	Value any
}

// UserInterface exposes high-level output helpers used by usecases.
type UserInterface interface {
	Info(msg string)
	Warn(msg string)
	Success(msg string)
	Step(msg string)
	Block(emoji, title string, rows []KeyValue)
}

// NewConsoleUI returns a UserInterface writing to out.
func NewConsoleUI(out io.Writer, emojiEnabled bool) UserInterface {
	return consoleUI{
		out:     out,
		console: NewWithEmoji(out, emojiEnabled),
	}
}

type consoleUI struct {
	out     io.Writer
	console *Console
}

func (c consoleUI) Info(msg string) {
	fmt.Fprintln(c.out, msg)
}

func (c consoleUI) Warn(msg string) {
	c.console.Warn(msg)
}

func (c consoleUI) Success(msg string) {
	c.console.Success(msg)
}

func (c consoleUI) Step(msg string) {
	c.console.Step(msg)
}

func (c consoleUI) Block(emoji, title string, rows []KeyValue) {
	c.console.BlockStart(emoji, title)
	for _, kv := range rows {
		c.console.Item(kv.Key, kv.Value)
	}
	c.console.BlockEnd()
}

// Discard returns a UserInterface that drops everything.
func Discard() UserInterface {
	return NewConsoleUI(io.Discard, false)
}
