package irc

import (
	"fmt"
	"strings"

	ircerr "ircnames/internal/errors"
)

// NameList accumulates RPL_NAMREPLY chunks until RPL_ENDOFNAMES.  It
// assumes every 353/366 on the connection belongs to the one channel
// that was requested.
type NameList struct {
	names []string
	done  bool
}

// HandleLine parses line and feeds it to Handle.
func (nl *NameList) HandleLine(line string) (bool, error) {
	msg, err := Parse(line)
	if err != nil {
		return false, err
	}
	return nl.Handle(msg)
}

// Handle updates the list from one message and reports whether the
// end of the name list has been reached.  Non-numeric messages and
// numerics other than 353 and 366 are ignored.
func (nl *NameList) Handle(msg Message) (bool, error) {
	if msg.Kind != KindNumeric {
		return nl.done, nil
	}
	switch msg.Code {
	case RplEndOfNames:
		nl.done = true
	case RplNamReply:
		if !msg.HasTrailing {
			return false, fmt.Errorf("%w: %d without name list", ircerr.ErrUnparseable, msg.Code)
		}
		nl.names = append(nl.names, strings.Fields(msg.Trailing)...)
	}
	return nl.done, nil
}

// Done reports whether RPL_ENDOFNAMES was seen.
func (nl *NameList) Done() bool { return nl.done }

// Len returns the number of names accumulated so far.
func (nl *NameList) Len() int { return len(nl.names) }

// Names returns a copy of the accumulated names in server order.
func (nl *NameList) Names() []string {
	out := make([]string, len(nl.names))
	copy(out, nl.names)
	return out
}
