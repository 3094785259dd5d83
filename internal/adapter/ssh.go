package adapter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"
)

// sshDialer opens SSH sessions with password authentication
type sshDialer struct {
	port           int
	timeout        time.Duration
	commandTimeout time.Duration
}

// connect establishes an SSH connection
func (d sshDialer) connect(ctx context.Context, host, username, password string) (*ssh.Client, error) {
	config := d.buildSSHPasswordConfig(username, password)
	addr := net.JoinHostPort(host, strconv.Itoa(d.port))

	dialer := &net.Dialer{
		Timeout: d.timeout,
	}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial: %w", err)
	}

	// The handshake has no context of its own
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to establish SSH connection: %w", err)
	}
	conn.SetDeadline(time.Time{})

	return ssh.NewClient(sshConn, chans, reqs), nil
}

// buildSSHPasswordConfig answers both password and keyboard-interactive
// prompts with the same secret. IOS offers either depending on AAA config.
func (d sshDialer) buildSSHPasswordConfig(username, password string) *ssh.ClientConfig {
	answer := func(_, _ string, questions []string, _ []bool) ([]string, error) {
		answers := make([]string, len(questions))
		for i := range questions {
			answers[i] = password
		}
		return answers, nil
	}

	return &ssh.ClientConfig{
		User: username,
		Auth: []ssh.AuthMethod{
			ssh.Password(password),
			ssh.KeyboardInteractive(answer),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         d.timeout,
	}
}

// runShell sends commands to an interactive shell and returns the full
// transcript once the remote side closes the session. The last command must
// end the shell.
func (d sshDialer) runShell(ctx context.Context, client *ssh.Client, commands []string) (string, error) {
	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	if err := session.RequestPty("vt100", 200, 80, ssh.TerminalModes{ssh.ECHO: 1}); err != nil {
		return "", fmt.Errorf("failed to request PTY: %w", err)
	}

	var transcript bytes.Buffer
	session.Stdout = &transcript
	session.Stderr = io.Discard

	stdin, err := session.StdinPipe()
	if err != nil {
		return "", fmt.Errorf("failed to open stdin: %w", err)
	}
	if err := session.Shell(); err != nil {
		return "", fmt.Errorf("failed to start shell: %w", err)
	}

	for _, cmd := range commands {
		if _, err := fmt.Fprintf(stdin, "%s\n", cmd); err != nil {
			return "", fmt.Errorf("failed to send %q: %w", cmd, err)
		}
	}

	done := make(chan error, 1)
	go func() {
		done <- session.Wait()
	}()

	timeout := d.commandTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	select {
	case err := <-done:
		// A shell closed by "exit" may report a missing exit status
		if err != nil {
			if _, ok := err.(*ssh.ExitMissingError); !ok {
				if _, ok := err.(*ssh.ExitError); !ok {
					return "", fmt.Errorf("shell failed: %w", err)
				}
			}
		}
		return transcript.String(), nil
	case <-ctx.Done():
		session.Close()
		return "", fmt.Errorf("shell aborted: %w", ctx.Err())
	case <-time.After(timeout):
		session.Close()
		return "", fmt.Errorf("command timeout")
	}
}
