// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"errors"
	"strings"

	"github.com/manifoldco/promptui"
)

var (
	ErrInputEmpty    = errors.New("input is empty")
	ErrInvalidChoice = errors.New("invalid choice")
	ErrAborted       = errors.New("aborted")
)

func promptBool(label string) (bool, error) {
	promptText := promptui.Prompt{
		Label: label + " (y/n)",
		Validate: func(input string) error {
			if len(input) == 0 {
				return ErrInputEmpty
			}
			lower := strings.ToLower(input)
			if lower == "y" || lower == "n" {
				return nil
			}
			return ErrInvalidChoice
		},
	}
	rawContinue, err := promptText.Run()
	if err != nil {
		return false, err
	}
	return strings.ToLower(rawContinue) == "y", nil
}

// confirm asks before a privileged change unless --yes was passed.
func (c *cli) confirm(label string) error {
	if c.yes {
		return nil
	}
	ok, err := promptBool(label)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAborted
	}
	return nil
}
