// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// prompter reads answers line by line from the CLI input.
type prompter struct {
	c *cli
}

func (c *cli) prompter() *prompter {
	return &prompter{c: c}
}

// lines returns the single buffered reader over the CLI input. Prompts and
// piped passwords share it so no input is lost between them.
func (c *cli) lines() *bufio.Reader {
	if c.reader == nil {
		c.reader = bufio.NewReader(c.in)
	}
	return c.reader
}

// ask prints prompt and returns the trimmed answer. EOF yields an empty answer.
func (p *prompter) ask(prompt string) (string, error) {
	fmt.Fprint(p.c.out, prompt)
	line, err := p.c.lines().ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// confirm asks a y/n question. Only "y" counts as yes.
func (p *prompter) confirm(prompt string) (bool, error) {
	answer, err := p.ask(prompt)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(answer, "y"), nil
}

// terminalPassword reads a password without echo when stdin is a terminal.
func (c *cli) terminalPassword(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	// Piped input: read a plain line.
	line, err := c.lines().ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
