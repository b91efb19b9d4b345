package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// runREPL reads command lines from p and hands each one to exec until EOF,
// "exit" or "quit". Errors from exec are printed and the loop continues.
func runREPL(ctx context.Context, p *Prompter, out io.Writer, exec func(ctx context.Context, args []string) error, statusFn func() string) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(out, "journal %s> ", statusFn())
		line, err := p.Line()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				fmt.Fprintln(out, "error:", err)
			}
			fmt.Fprintln(out)
			return
		}
		args, err := splitArgs(line)
		if err != nil {
			fmt.Fprintln(out, "error:", err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		}
		if err := exec(ctx, args); err != nil {
			fmt.Fprintln(out, "error:", err)
		}
	}
}

// splitArgs splits a shell line on whitespace. Single or double quotes group
// words; there are no escapes.
func splitArgs(line string) ([]string, error) {
	var (
		args  []string
		cur   strings.Builder
		quote rune
		inArg bool
	)
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			cur.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inArg = true
		case r == ' ' || r == '\t':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(r)
			inArg = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}
