package credential

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chzyer/readline"
)

// ErrNoUsername is returned when no username was given or typed
var ErrNoUsername = errors.New("no username given")

// Reader reads operator input
type Reader interface {
	ReadLine(prompt string) (string, error)
	ReadSecret(prompt string) (string, error)
}

// Terminal reads from the controlling terminal
type Terminal struct{}

// ReadLine reads one echoed line
func (Terminal) ReadLine(prompt string) (string, error) {
	rl, err := newInstance(prompt)
	if err != nil {
		return "", err
	}
	defer rl.Close()

	line, err := rl.Readline()
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return line, nil
}

// ReadSecret reads one line with masked echo
func (Terminal) ReadSecret(prompt string) (string, error) {
	rl, err := newInstance(prompt)
	if err != nil {
		return "", err
	}
	defer rl.Close()

	secret, err := rl.ReadPassword(prompt)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(secret), nil
}

func newInstance(prompt string) (*readline.Instance, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		MaskRune:        '*',
	})
	if err != nil {
		return nil, fmt.Errorf("open terminal: %w", err)
	}
	return rl, nil
}

// Prompt asks the operator for the password
type Prompt struct {
	reader Reader
}

// NewPrompt creates a prompt provider. A nil reader uses the terminal.
func NewPrompt(r Reader) *Prompt {
	if r == nil {
		r = Terminal{}
	}
	return &Prompt{reader: r}
}

// Resolve implements Provider
func (p *Prompt) Resolve(ctx context.Context, username string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	secret, err := p.reader.ReadSecret(fmt.Sprintf("Password for %s: ", username))
	if err != nil {
		return "", err
	}
	if secret == "" {
		return "", ErrNoSecret
	}
	return secret, nil
}

// Username picks the first non-empty candidate, asking the operator when
// none is set and a reader is available
func Username(r Reader, candidates ...string) (string, error) {
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return c, nil
		}
	}
	if r == nil {
		return "", ErrNoUsername
	}
	line, err := r.ReadLine("Username: ")
	if err != nil {
		return "", err
	}
	if line = strings.TrimSpace(line); line == "" {
		return "", ErrNoUsername
	}
	return line, nil
}
