package cli

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
)

// Prompter asks the user for input on the terminal.
type Prompter interface {
	Confirm(title, description string) (bool, error)
	Input(title, placeholder string) (string, error)
}

type huhPrompter struct{}

func (huhPrompter) Confirm(title, description string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Delete").
		Negative("Cancel").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

func (huhPrompter) Input(title, placeholder string) (string, error) {
	var value string
	err := huh.NewInput().
		Title(title).
		Placeholder(placeholder).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("required")
			}
			return nil
		}).
		Value(&value).
		Run()
	return strings.TrimSpace(value), err
}

// confirmDestructive gates a destructive action. --yes skips the prompt;
// without a terminal the flag is required.
func confirmDestructive(app *App, yes bool, title, description string) (bool, error) {
	if yes {
		return true, nil
	}
	if !app.interactive() {
		return false, errors.New("refusing to delete without confirmation: pass --yes")
	}
	return app.prompter().Confirm(title, description)
}
