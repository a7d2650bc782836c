package util

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// ReadSecret prints prompt to stderr and reads a line from the terminal
// without echo.
func ReadSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading secret: %w", err)
	}
	return string(secret), nil
}
