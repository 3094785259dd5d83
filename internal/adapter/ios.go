package adapter

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"nbrsnap/internal/credential"
	"nbrsnap/internal/domain"
)

// IOS CLI commands sent in one shell
const (
	iosPagingOff          = "terminal length 0"
	iosShowCDP            = "show cdp neighbor"
	iosExit               = "exit"
	cdpHeaderEnd          = "Port ID"
	defaultSSHPort        = 22
	defaultSSHTimeout     = 10 * time.Second
	defaultCommandTimeout = 30 * time.Second
)

// promptLine matches an exec or privileged prompt at the start of a line
var promptLine = regexp.MustCompile(`^[A-Za-z0-9._-]+(\([A-Za-z0-9-]+\))?[#>]`)

// SSHConfig configures the IOS client
type SSHConfig struct {
	Port           int
	Timeout        time.Duration
	CommandTimeout time.Duration
}

// IOSClient collects CDP neighbors from IOS devices over SSH
type IOSClient struct {
	username string
	secrets  credential.Provider
	dialer   sshDialer
}

// NewIOSClient creates an SSH client for IOS devices
func NewIOSClient(username string, secrets credential.Provider, cfg SSHConfig) *IOSClient {
	if cfg.Port == 0 {
		cfg.Port = defaultSSHPort
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultSSHTimeout
	}
	if cfg.CommandTimeout == 0 {
		cfg.CommandTimeout = defaultCommandTimeout
	}
	return &IOSClient{
		username: username,
		secrets:  secrets,
		dialer: sshDialer{
			port:           cfg.Port,
			timeout:        cfg.Timeout,
			commandTimeout: cfg.CommandTimeout,
		},
	}
}

// Vendor implements DeviceClient
func (c *IOSClient) Vendor() domain.Vendor {
	return domain.VendorIOS
}

// FetchNeighbors implements DeviceClient
func (c *IOSClient) FetchNeighbors(ctx context.Context, dev domain.Device) (*domain.RawResponse, error) {
	password, err := c.secrets.Resolve(ctx, c.username)
	if err != nil {
		return nil, domain.NewConnectivityError("no password for "+c.username, err)
	}

	client, err := c.dialer.connect(ctx, dev.Address(), c.username, password)
	if err != nil {
		return nil, domain.NewConnectivityError(fmt.Sprintf("ssh %s", dev.Address()), err)
	}
	defer client.Close()

	transcript, err := c.dialer.runShell(ctx, client, []string{iosPagingOff, iosShowCDP, iosExit})
	if err != nil {
		return nil, domain.NewConnectivityError(fmt.Sprintf("ssh %s", dev.Address()), err)
	}

	return &domain.RawResponse{OK: true, Text: cdpOutput(transcript)}, nil
}

// cdpOutput returns the neighbor command's output, or the whole transcript
// when no sliced output carries the table header so the extractor judges it
func cdpOutput(transcript string) string {
	text, ok := commandOutput(transcript, iosShowCDP)
	if !ok || !strings.Contains(text, cdpHeaderEnd) {
		return transcript
	}
	return text
}

// commandOutput cuts the output of one command out of a shell transcript:
// the lines after the prompt that ran the command, up to the next prompt.
// Bare echoes of typed-ahead input carry no prompt and are skipped.
func commandOutput(transcript, cmd string) (string, bool) {
	lines := strings.Split(lineEndingsCRLF.Replace(transcript), "\n")

	start := -1
	for i, line := range lines {
		if promptedCommand(line) == cmd {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return "", false
	}

	var out []string
	for _, line := range lines[start:] {
		if promptLine.MatchString(strings.TrimSpace(line)) {
			break
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n"), true
}

var lineEndingsCRLF = strings.NewReplacer("\r\n", "\n", "\r", "")

// promptedCommand returns what was typed after a prompt, or "" when the line
// does not start with one
func promptedCommand(line string) string {
	line = strings.TrimSpace(line)
	loc := promptLine.FindStringIndex(line)
	if loc == nil {
		return ""
	}
	return strings.TrimSpace(line[loc[1]:])
}
