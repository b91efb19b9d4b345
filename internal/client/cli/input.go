package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// Prompter asks questions on w and reads answers from r. Command lines of
// the shell and prompt answers share the same reader.
type Prompter struct {
	r  *bufio.Reader
	w  io.Writer
	fd int
}

func NewPrompter(r io.Reader, w io.Writer) *Prompter {
	fd := -1
	if f, ok := r.(*os.File); ok {
		fd = int(f.Fd())
	}
	return &Prompter{r: bufio.NewReader(r), w: w, fd: fd}
}

// Line reads one line without printing anything. io.EOF is returned only
// when nothing was read.
func (p *Prompter) Line() (string, error) {
	line, err := p.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Text prints prompt and reads a single trimmed line.
func (p *Prompter) Text(prompt string) (string, error) {
	if _, err := fmt.Fprint(p.w, prompt+": "); err != nil {
		return "", err
	}
	return p.Line()
}

// Password reads a password without echo when attached to a terminal, and
// as a plain line otherwise. The caller should wipe the result.
func (p *Prompter) Password(prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(p.w, prompt+": "); err != nil {
		return nil, err
	}
	if p.fd < 0 || !isTerminal(p.fd) {
		line, err := p.Line()
		if err != nil {
			return nil, err
		}
		return []byte(line), nil
	}
	pw, err := readPassword(p.fd)
	fmt.Fprintln(p.w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// Multiline reads lines until an empty one and joins them with '\n'.
func (p *Prompter) Multiline(prompt string) (string, error) {
	if _, err := fmt.Fprint(p.w, prompt+" (empty line to finish)\n"); err != nil {
		return "", err
	}
	var lines []string
	for {
		line, err := p.r.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		lines = append(lines, line)
		if err != nil {
			break
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}
