package controller

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrQuit is returned when the user closes the input or types q.
var ErrQuit = errors.New("quit")

// Console is the plain-text surface the controllers draw on.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

func (c *Console) Printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) Println(args ...any) {
	fmt.Fprintln(c.out, args...)
}

// Prompt prints label and reads one trimmed line. EOF with no input, or a
// lone "q", yields ErrQuit.
func (c *Console) Prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	line, err := c.in.ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return line, nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrQuit
		}
		return "", err
	}
	if strings.EqualFold(line, "q") {
		return "", ErrQuit
	}
	return line, nil
}

// Confirm asks a yes/no question; anything but y/yes is no.
func (c *Console) Confirm(label string) bool {
	ans, err := c.Prompt(label + " [y/N] ")
	if err != nil {
		return false
	}
	ans = strings.ToLower(ans)
	return ans == "y" || ans == "yes"
}
