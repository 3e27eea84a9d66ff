// Package color renders ANSI-colored terminal text.
package color

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

const reset = "\033[0m"

// Foreground colors and attributes.
const (
	FgRed    = 31
	FgGreen  = 32
	FgYellow = 33
	FgCyan   = 36
	FgWhite  = 37

	Bold = 1
	Dim  = 2
)

// NoColor disables escape sequences globally (for piped output).
var NoColor = false

// Color is a reusable set of display attributes.
type Color struct {
	params []int
}

func New(attrs ...int) *Color {
	return &Color{params: attrs}
}

func (c *Color) seq() string {
	if NoColor || len(c.params) == 0 {
		return ""
	}
	parts := make([]string, len(c.params))
	for i, p := range c.params {
		parts[i] = strconv.Itoa(p)
	}
	return "\033[" + strings.Join(parts, ";") + "m"
}

func (c *Color) wrap(s string) string {
	seq := c.seq()
	if seq == "" {
		return s
	}
	return seq + s + reset
}

func (c *Color) Printf(format string, a ...any) {
	fmt.Print(c.wrap(fmt.Sprintf(format, a...)))
}

func (c *Color) Fprintf(w io.Writer, format string, a ...any) {
	fmt.Fprint(w, c.wrap(fmt.Sprintf(format, a...)))
}

func (c *Color) Sprintf(format string, a ...any) string {
	return c.wrap(fmt.Sprintf(format, a...))
}
