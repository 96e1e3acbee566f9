package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

var ErrNotInteractive = errors.New("stdin is not a terminal; pass --yes to run unattended")

const configPrompt = "Enter the path to the script configuration file: "

// prompter reads answers from the user. It is also the run's Confirmer.
type prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: isTerminal(in),
	}
}

// ConfigPath asks for the configuration file. Piped input is accepted.
func (p *prompter) ConfigPath() (string, error) {
	fmt.Fprint(p.out, configPrompt)
	line, err := p.readLine()
	if err != nil {
		return "", fmt.Errorf("failed to read config path: %w", err)
	}
	if line == "" {
		return "", errors.New("no configuration file given")
	}
	return line, nil
}

// Confirm waits for Enter. Without a terminal nobody can answer, so it
// fails instead of blocking.
func (p *prompter) Confirm(prompt string) error {
	if !p.interactive {
		return ErrNotInteractive
	}
	fmt.Fprintf(p.out, "\n%s\n", prompt)
	if _, err := p.readLine(); err != nil {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}
	fmt.Fprintln(p.out)
	return nil
}

func (p *prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func isTerminal(r io.Reader) bool {
	file, ok := r.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
