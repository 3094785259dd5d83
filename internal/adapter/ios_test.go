package adapter

import (
	"bufio"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"nbrsnap/internal/credential"
	"nbrsnap/internal/domain"
	"nbrsnap/internal/extract"
)

// fakeIOS serves a minimal IOS exec shell over SSH
type fakeIOS struct {
	prompt   string
	password string
	output   map[string]string
	received chan string
}

func startFakeIOS(t *testing.T, f *fakeIOS) (string, int) {
	t.Helper()

	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer, err := ssh.NewSignerFromKey(key)
	require.NoError(t, err)

	config := &ssh.ServerConfig{
		PasswordCallback: func(_ ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if string(pass) == f.password {
				return nil, nil
			}
			return nil, assert.AnError
		},
	}
	config.AddHostKey(signer)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go f.serveConn(conn, config)
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port
}

func (f *fakeIOS) serveConn(conn net.Conn, config *ssh.ServerConfig) {
	_, chans, reqs, err := ssh.NewServerConn(conn, config)
	if err != nil {
		conn.Close()
		return
	}
	go ssh.DiscardRequests(reqs)

	for newCh := range chans {
		if newCh.ChannelType() != "session" {
			newCh.Reject(ssh.UnknownChannelType, "session only")
			continue
		}
		ch, requests, err := newCh.Accept()
		if err != nil {
			continue
		}
		go func() {
			for req := range requests {
				switch req.Type {
				case "pty-req":
					req.Reply(true, nil)
				case "shell":
					req.Reply(true, nil)
					go f.shell(ch)
				default:
					req.Reply(false, nil)
				}
			}
		}()
	}
}

func (f *fakeIOS) shell(ch ssh.Channel) {
	defer ch.Close()

	ch.Write([]byte("\r\n" + f.prompt))
	scanner := bufio.NewScanner(ch)
	for scanner.Scan() {
		cmd := strings.TrimSpace(scanner.Text())
		if f.received != nil {
			f.received <- cmd
		}
		ch.Write([]byte(cmd + "\r\n"))
		if cmd == "exit" {
			ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{0}))
			return
		}
		if out, ok := f.output[cmd]; ok {
			ch.Write([]byte(strings.ReplaceAll(out, "\n", "\r\n")))
		}
		ch.Write([]byte("\r\n" + f.prompt))
	}
}

func TestIOSClientFetch(t *testing.T) {
	table := fixture(t, "ios_cdp.txt")
	f := &fakeIOS{
		prompt:   "lab-sw1#",
		password: "cisco",
		output:   map[string]string{"show cdp neighbor": string(table)},
		received: make(chan string, 8),
	}
	host, port := startFakeIOS(t, f)

	client := NewIOSClient("netops", credential.Static("cisco"), SSHConfig{Port: port, Timeout: 5 * time.Second, CommandTimeout: 5 * time.Second})
	raw, err := client.FetchNeighbors(context.Background(), domain.Device{Hostname: "lab-sw1", IP: host, Vendor: domain.VendorIOS})
	require.NoError(t, err)
	assert.True(t, raw.OK)
	assert.NotContains(t, raw.Text, "lab-sw1#")
	assert.NotContains(t, raw.Text, "terminal length 0")

	close(f.received)
	var sent []string
	for cmd := range f.received {
		sent = append(sent, cmd)
	}
	assert.Equal(t, []string{"terminal length 0", "show cdp neighbor", "exit"}, sent)

	records, err := extract.IOS(raw)
	require.NoError(t, err)
	assert.Equal(t, []domain.NeighborRecord{
		{NeighborInterface: "Gig 0/0/1", LocalInterface: "Gig 1/0/48", Neighbor: "core-rtr1"},
		{NeighborInterface: "Ten 1/1/2", LocalInterface: "Ten 1/1/1", Neighbor: "dist-sw2.lab.example.net"},
		{NeighborInterface: "Gig 0/24", LocalInterface: "Gig 1/0/1", Neighbor: "lab-sw3"},
	}, records)
}

func TestIOSClientAuthFailure(t *testing.T) {
	host, port := startFakeIOS(t, &fakeIOS{prompt: "lab-sw1#", password: "cisco"})

	client := NewIOSClient("netops", credential.Static("wrong"), SSHConfig{Port: port, Timeout: 5 * time.Second})
	_, err := client.FetchNeighbors(context.Background(), domain.Device{Hostname: "lab-sw1", IP: host})
	require.Error(t, err)
	assert.Equal(t, domain.ErrorKindConnectivity, domain.KindOf(err))
}

func TestIOSClientCDPDisabled(t *testing.T) {
	host, port := startFakeIOS(t, &fakeIOS{
		prompt:   "lab-sw1>",
		password: "cisco",
		output:   map[string]string{"show cdp neighbor": "% CDP is not enabled"},
	})

	client := NewIOSClient("netops", credential.Static("cisco"), SSHConfig{Port: port, Timeout: 5 * time.Second})
	raw, err := client.FetchNeighbors(context.Background(), domain.Device{Hostname: "lab-sw1", IP: host})
	require.NoError(t, err)

	_, err = extract.IOS(raw)
	assert.Equal(t, domain.ErrorKindParse, domain.KindOf(err))
}

func TestCommandOutput(t *testing.T) {
	transcript := "\r\nsw1#terminal length 0\r\n\r\nsw1#show cdp neighbor\r\n" +
		"Device ID   Local Intrfce   Holdtme   Capability  Platform  Port ID\r\n" +
		"r1   Gig 0/1   120   R   ISR   Gig 0/0\r\n" +
		"\r\nsw1#exit\r\n"

	out, ok := commandOutput(transcript, "show cdp neighbor")
	require.True(t, ok)
	assert.Equal(t, "Device ID   Local Intrfce   Holdtme   Capability  Platform  Port ID\n"+
		"r1   Gig 0/1   120   R   ISR   Gig 0/0\n", out)

	_, ok = commandOutput("sw1#exit\r\n", "show cdp neighbor")
	assert.False(t, ok)
}

func TestCommandOutput_TypedAheadEcho(t *testing.T) {
	transcript := "\r\nsw1#terminal length 0\r\nshow cdp neighbor\r\nexit\r\n" +
		"sw1#show cdp neighbor\r\n" +
		"Device ID   Local Intrfce   Holdtme   Capability  Platform  Port ID\r\n" +
		"core1   Gig 1/0/1   150   R   ISR4331   Gig 0/0/1\r\n" +
		"sw1#exit\r\n"

	out, ok := commandOutput(transcript, "show cdp neighbor")
	require.True(t, ok)
	assert.Equal(t, "Device ID   Local Intrfce   Holdtme   Capability  Platform  Port ID\n"+
		"core1   Gig 1/0/1   150   R   ISR4331   Gig 0/0/1", out)
}

func TestCDPOutput(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		want       string
	}{
		{
			name: "sliced table",
			transcript: "sw1#show cdp neighbor\r\n" +
				"Device ID  Local Intrfce  Holdtme  Capability  Platform  Port ID\r\n" +
				"r1  Gig 0/1  120  R  ISR  Gig 0/0\r\nsw1#exit\r\n",
			want: "Device ID  Local Intrfce  Holdtme  Capability  Platform  Port ID\n" +
				"r1  Gig 0/1  120  R  ISR  Gig 0/0",
		},
		{
			name:       "no prompted command",
			transcript: "show cdp neighbor\r\n% Invalid input\r\n",
			want:       "show cdp neighbor\r\n% Invalid input\r\n",
		},
		{
			name:       "slice without header",
			transcript: "sw1#show cdp neighbor\r\n% CDP is not enabled\r\nsw1#exit\r\n",
			want:       "sw1#show cdp neighbor\r\n% CDP is not enabled\r\nsw1#exit\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cdpOutput(tt.transcript))
		})
	}
}

func TestPromptedCommand(t *testing.T) {
	assert.Equal(t, "show cdp neighbor", promptedCommand("sw1#show cdp neighbor  "))
	assert.Equal(t, "show cdp neighbor", promptedCommand("rtr(config)>show cdp neighbor"))
	assert.Equal(t, "", promptedCommand("show cdp neighbor"))
	assert.Equal(t, "", promptedCommand("sw1#"))
}

func TestPromptLine(t *testing.T) {
	assert.True(t, promptLine.MatchString("lab-sw1#"))
	assert.True(t, promptLine.MatchString("rtr.example>"))
	assert.True(t, promptLine.MatchString("sw1(config)#"))
	assert.False(t, promptLine.MatchString("core-rtr1        Gig 1/0/48"))
	assert.False(t, promptLine.MatchString("Device ID        Local Intrfce"))
}
