package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("aborted")

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// Prompter asks the user for input. On a terminal, lines are read through
// readline so editing keys and history work and secrets are read without
// echo; otherwise input is consumed line by line.
type Prompter struct {
	out io.Writer

	rl     *readline.Instance
	reader *bufio.Reader
	// fd is the terminal used for hidden input; -1 reads secrets as lines.
	fd int

	// pending is a line read started by Interrupt and not consumed yet.
	pending chan lineResult
}

type lineResult struct {
	line string
	err  error
}

// NewTerminalPrompter prompts on stdin/stderr.
func NewTerminalPrompter() (*Prompter, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return NewPrompter(os.Stdin, os.Stderr), nil
	}
	rl, err := readline.NewEx(&readline.Config{
		Stdout:          os.Stderr,
		InterruptPrompt: "^C",
		EOFPrompt:       "",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline instance: %w", err)
	}
	return &Prompter{out: os.Stderr, rl: rl, fd: fd}, nil
}

// NewPrompter prompts on the given streams.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{out: out, reader: bufio.NewReader(in), fd: -1}
}

// Close releases the terminal.
func (p *Prompter) Close() error {
	if p.rl != nil {
		return p.rl.Close()
	}
	return nil
}

func (p *Prompter) readLine(label string) (string, error) {
	if ch := p.pending; ch != nil {
		p.pending = nil
		if p.rl != nil {
			p.rl.SetPrompt(label)
			p.rl.Refresh()
		} else if _, err := fmt.Fprint(p.out, label); err != nil {
			return "", err
		}
		r := <-ch
		return r.line, r.err
	}
	if err := p.showPrompt(label); err != nil {
		return "", err
	}
	return p.next()
}

func (p *Prompter) showPrompt(label string) error {
	if p.rl != nil {
		p.rl.SetPrompt(label)
		return nil
	}
	_, err := fmt.Fprint(p.out, label)
	return err
}

// next reads the next line without printing anything.
func (p *Prompter) next() (string, error) {
	if p.rl != nil {
		line, err := p.rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt), errors.Is(err, io.EOF):
			return "", ErrAborted
		case err != nil:
			return "", fmt.Errorf("readline error: %w", err)
		}
		return line, nil
	}

	line, err := p.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return line, nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrAborted
		}
		return "", err
	}
	return line, nil
}

// Interrupt shows prompt and waits until done is closed or the user enters
// a line, whichever comes first. It reports whether a line was entered. A
// line still being typed when done closes goes to the next prompt. When the
// input ends Interrupt waits for done.
func (p *Prompter) Interrupt(ctx context.Context, prompt string, done <-chan struct{}) (bool, error) {
	if p.pending == nil {
		if err := p.showPrompt(prompt + " "); err != nil {
			return false, err
		}
		ch := make(chan lineResult, 1)
		p.pending = ch
		go func() {
			line, err := p.next()
			ch <- lineResult{line: line, err: err}
		}()
	}

	select {
	case r := <-p.pending:
		p.pending = nil
		if r.err == nil {
			return true, nil
		}
		select {
		case <-done:
			return false, nil
		case <-ctx.Done():
			return false, ctx.Err()
		}
	case <-done:
		fmt.Fprintln(p.out)
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Line asks for one line of input. An empty answer yields def.
func (p *Prompter) Line(prompt, def string) (string, error) {
	label := prompt
	if def != "" {
		label = fmt.Sprintf("%s [%s]", prompt, def)
	}
	line, err := p.readLine(label + ": ")
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

// Required repeats Line until the answer is not empty.
func (p *Prompter) Required(prompt string) (string, error) {
	for {
		v, err := p.Line(prompt, "")
		if err != nil {
			return "", err
		}
		if v != "" {
			return v, nil
		}
	}
}

// Secret asks for a value without echo.
func (p *Prompter) Secret(prompt string) (string, error) {
	if p.fd < 0 || p.pending != nil {
		return p.Line(prompt, "")
	}
	if _, err := fmt.Fprint(p.out, prompt+": "); err != nil {
		return "", err
	}
	pw, err := readPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(prompt string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	v, err := p.Line(fmt.Sprintf("%s (%s)", prompt, hint), "")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(v) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Choose shows numbered options and returns the chosen index.
func (p *Prompter) Choose(prompt string, options []string) (int, error) {
	if len(options) == 0 {
		return -1, errors.New("nothing to choose from")
	}
	for i, o := range options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, o)
	}
	for {
		v, err := p.Line(prompt, "1")
		if err != nil {
			return -1, err
		}
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		fmt.Fprintf(p.out, "Please enter a number between 1 and %d\n", len(options))
	}
}

// Say prints a line to the prompt output.
func (p *Prompter) Say(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}
