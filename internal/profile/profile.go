// Package profile stores named eAPI connection parameters.
package profile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrProfileNotFound is returned by Lookup for an unknown name
var ErrProfileNotFound = errors.New("connection profile not found")

// Transports accepted by eAPI
const (
	TransportHTTPS = "https"
	TransportHTTP  = "http"
)

// Profile holds how to reach one eAPI endpoint
type Profile struct {
	Host      string `yaml:"host"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	Transport string `yaml:"transport"`
	Port      int    `yaml:"port"`
}

// Store is a set of profiles keyed by connection name
type Store struct {
	Connections map[string]Profile `yaml:"connections"`
}

// Load reads a profile file
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open profiles: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes profiles from YAML
func Parse(r io.Reader) (*Store, error) {
	var s Store
	if err := yaml.NewDecoder(r).Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse profiles: %w", err)
	}
	if s.Connections == nil {
		s.Connections = make(map[string]Profile)
	}
	for name, p := range s.Connections {
		transport := strings.ToLower(p.Transport)
		if transport != "" && transport != TransportHTTPS && transport != TransportHTTP {
			return nil, fmt.Errorf("profile %s: unsupported transport %q", name, p.Transport)
		}
	}
	return &s, nil
}

// Lookup returns the named profile with defaults applied. A profile without
// a host connects to the connection name itself.
func (s *Store) Lookup(name string) (Profile, error) {
	if s == nil {
		return Profile{}, fmt.Errorf("%s: %w", name, ErrProfileNotFound)
	}
	p, ok := s.Connections[name]
	if !ok {
		return Profile{}, fmt.Errorf("%s: %w", name, ErrProfileNotFound)
	}
	if p.Host == "" {
		p.Host = name
	}
	p.Transport = strings.ToLower(p.Transport)
	if p.Transport == "" {
		p.Transport = TransportHTTPS
	}
	if p.Port == 0 {
		p.Port = 443
		if p.Transport == TransportHTTP {
			p.Port = 80
		}
	}
	return p, nil
}

// Names lists the configured connection names in sorted order
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.Connections))
	for name := range s.Connections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
