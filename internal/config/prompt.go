package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Prompter asks the operator for settings on a line-oriented terminal.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	// readPassword reads a line without echo. Nil reads a plain line.
	readPassword func() (string, error)
}

// NewPrompter prompts on out and reads answers from in. Passwords are read as
// plain lines.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// NewTerminalPrompter prompts on stderr and reads stdin. When stdin is a terminal
// the password is read without echo.
func NewTerminalPrompter() *Prompter {
	p := NewPrompter(os.Stdin, os.Stderr)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		p.readPassword = func() (string, error) {
			b, err := term.ReadPassword(fd)
			_, _ = fmt.Fprintln(p.out)
			return string(b), err
		}
	}
	return p
}

// rawLine prompts with label and returns the answer without its line ending.
func (p *Prompter) rawLine(label string) (string, error) {
	_, _ = fmt.Fprintf(p.out, "%s: ", label)
	s, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(s, "\r\n"), nil
}

func (p *Prompter) line(label string) (string, error) {
	s, err := p.rawLine(label)
	return strings.TrimSpace(s), err
}

// password strips only the line ending.
func (p *Prompter) password(label string) (string, error) {
	if p.readPassword == nil {
		return p.rawLine(label)
	}
	_, _ = fmt.Fprintf(p.out, "%s: ", label)
	s, err := p.readPassword()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// Complete fills in what the document and environment left unset.
//
// Without a document every setting of the interactive setup is asked for unless
// the environment set it. With a document only missing credentials are asked for.
func (p *Prompter) Complete(cfg *Config, haveDocument bool, fromEnv map[string]bool) error {
	if strings.TrimSpace(cfg.Email) == "" {
		v, err := p.line("Email")
		if err != nil {
			return err
		}
		cfg.Email = v
	}
	if cfg.Password == "" {
		v, err := p.password("Password")
		if err != nil {
			return err
		}
		cfg.Password = v
	}
	if haveDocument {
		return nil
	}

	if !fromEnv[EnvSearchInterval] {
		v, err := p.line(fmt.Sprintf("Search interval in ms [%d]", cfg.SearchInterval))
		if err != nil {
			return err
		}
		if v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid search interval %q: %w", v, err)
			}
			cfg.SearchInterval = n
		}
	}
	if !fromEnv[EnvShowSession] {
		v, err := p.line("Show browser session? [y/N]")
		if err != nil {
			return err
		}
		switch strings.ToLower(v) {
		case "", "n", "no":
			cfg.ShowSession = false
		case "y", "yes":
			cfg.ShowSession = true
		default:
			return fmt.Errorf("invalid answer %q: want y or n", v)
		}
	}
	return nil
}

// Resolve loads the document at path, applies the environment, prompts for the
// rest when p is non-nil and validates the result.
func Resolve(path string, p *Prompter) (Config, error) {
	cfg, found, err := Load(path)
	if err != nil {
		return cfg, err
	}
	fromEnv, err := ApplyEnv(&cfg)
	if err != nil {
		return cfg, err
	}
	if p != nil {
		if err := p.Complete(&cfg, found, fromEnv); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}
