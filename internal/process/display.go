package process

import (
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

const mask = "***"

// String renders the command as a shell-quoted line with secrets masked.
// It is for display only; commands are never run through a shell.
func (c Command) String() string {
	words := make([]string, 0, len(c.Args)+1)
	for _, w := range append([]string{c.Name}, c.Args...) {
		words = append(words, quote(c.redact(w)))
	}
	return strings.Join(words, " ")
}

func (c Command) redact(s string) string {
	for _, secret := range c.Secrets {
		if secret != "" {
			s = strings.ReplaceAll(s, secret, mask)
		}
	}
	return s
}

func quote(s string) string {
	q, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		return strconv.Quote(s)
	}
	return q
}
