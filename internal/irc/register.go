package irc

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
)

const (
	// NickLength is the length of a generated nickname.
	NickLength = 10

	nickAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Options are the per-run registration settings shared by every
// session.  Only Channel is required.
type Options struct {
	Channel  string
	Nickname string
	Username string
	Password string
}

// Defaults records which Options fields Resolve generated.
type Defaults struct {
	Nickname bool
	Username bool
}

// Resolve fills in a random nickname when none is set and falls back
// to the nickname for the username.  It never fails.
func (o Options) Resolve() (Options, Defaults) {
	var d Defaults
	if o.Nickname == "" {
		o.Nickname = RandomNick(NickLength)
		d.Nickname = true
	}
	if o.Username == "" {
		o.Username = o.Nickname
		d.Username = true
	}
	return o, d
}

// RandomNick returns n random ASCII letters.
func RandomNick(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(nickAlphabet[rand.IntN(len(nickAlphabet))])
	}
	return b.String()
}

// Register writes the registration and query sequence for opts, which
// must already be resolved.  No reply is awaited.
func Register(w io.Writer, opts Options) error {
	bw := bufio.NewWriter(w)
	u := opts.Username

	writeCommand(bw, "USER %s %s %s :%s", u, u, u, u)
	if opts.Password != "" {
		writeCommand(bw, "PASS %s", opts.Password)
	}
	writeCommand(bw, "NICK %s", opts.Nickname)
	writeCommand(bw, "JOIN %s", opts.Channel)
	writeCommand(bw, "NAMES %s", opts.Channel)

	return bw.Flush()
}

// Quit writes a bare QUIT.
func Quit(w io.Writer) error {
	_, err := io.WriteString(w, "QUIT\r\n")
	return err
}

// writeCommand errors are sticky in bufio.Writer and reported by Flush.
func writeCommand(bw *bufio.Writer, format string, args ...interface{}) {
	fmt.Fprintf(bw, format, args...)
	bw.WriteString("\r\n") //nolint:errcheck
}
