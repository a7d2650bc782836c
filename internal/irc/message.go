// Package irc implements the small slice of the IRC client protocol
// needed to list a channel's members: registration, line framing, and
// interpretation of the NAMES numeric replies.
package irc

import (
	"strconv"
	"strings"

	ircerr "ircnames/internal/errors"
)

// Numeric replies this package acts on.
const (
	RplNamReply   = 353
	RplEndOfNames = 366
)

// Kind tags the result of parsing one line.
type Kind int

const (
	KindUnparseable Kind = iota
	KindNumeric
	KindCommand
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindCommand:
		return "command"
	default:
		return "unparseable"
	}
}

// Message is one decoded protocol line.  Exactly one of Code (for
// KindNumeric) or Command (for KindCommand) is meaningful.
type Message struct {
	Raw         string
	Prefix      string
	Kind        Kind
	Code        int
	Command     string
	Params      []string
	Trailing    string
	HasTrailing bool
}

// Parse decides once per line whether it carries a numeric reply, a
// named command, or nothing usable.  Empty lines return
// [ircerr.ErrEmptyLine]; lines with no command token return
// [ircerr.ErrUnparseable].
func Parse(line string) (Message, error) {
	msg := Message{Raw: line}
	if line == "" {
		return msg, ircerr.ErrEmptyLine
	}

	rest := line
	if rest[0] == ':' {
		sp := strings.IndexByte(rest, ' ')
		if sp < 0 {
			return msg, ircerr.ErrUnparseable
		}
		msg.Prefix = rest[1:sp]
		rest = strings.TrimLeft(rest[sp+1:], " ")
	}

	if i := strings.Index(rest, " :"); i >= 0 {
		msg.Trailing = rest[i+2:]
		msg.HasTrailing = true
		rest = rest[:i]
	}

	fields := strings.Fields(rest)
	if len(fields) == 0 || strings.HasPrefix(fields[0], ":") {
		return msg, ircerr.ErrUnparseable
	}
	token := fields[0]
	msg.Params = fields[1:]

	if code, ok := numericCode(token); ok {
		msg.Kind = KindNumeric
		msg.Code = code
	} else {
		msg.Kind = KindCommand
		msg.Command = strings.ToUpper(token)
	}
	return msg, nil
}

// numericCode accepts exactly three ASCII digits.
func numericCode(token string) (int, bool) {
	if len(token) != 3 {
		return 0, false
	}
	for i := 0; i < len(token); i++ {
		if token[i] < '0' || token[i] > '9' {
			return 0, false
		}
	}
	code, err := strconv.Atoi(token)
	return code, err == nil
}
