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

// Terminal seams, replaced in tests.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

func stdinIsTerminal() bool {
	return isTerminal(int(os.Stdin.Fd()))
}

// promptLine prints label and reads one line from r. A final line without a
// newline is accepted.
func promptLine(r *bufio.Reader, w io.Writer, label string) (string, error) {
	if _, err := fmt.Fprintf(w, "%s: ", label); err != nil {
		return "", err
	}
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", fmt.Errorf("read %s: %w", label, err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echo from a terminal, or as a plain
// line when stdin is piped.
func promptPassword(r *bufio.Reader, w io.Writer, label string) (string, error) {
	if !stdinIsTerminal() {
		return promptLine(r, w, label)
	}
	if _, err := fmt.Fprintf(w, "%s: ", label); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w) //nolint:errcheck
	if err != nil {
		return "", fmt.Errorf("read %s: %w", label, err)
	}
	return string(pw), nil
}
