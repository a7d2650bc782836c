package irc

import (
	"bytes"
	"errors"
	"io"

	ircerr "ircnames/internal/errors"
	"ircnames/util"
)

// MaxLineLength caps the unterminated remainder a LineReader will hold.
// Servers that advertise message tags may send up to 8191 bytes plus
// CRLF per line.
const MaxLineLength = 8192

var crlf = []byte("\r\n")

// LineReader reassembles CRLF-delimited lines from a byte stream.
// It owns the remainder between calls and is not safe for concurrent use.
type LineReader struct {
	r   io.Reader
	buf []byte
}

// NewLineReader returns a LineReader reading from r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: r}
}

// ReadLines performs one bounded read and returns every line completed
// by it, together with the number of bytes read.  A read of zero bytes
// means the peer closed the stream and yields [ircerr.ErrStreamClosed].
//
// When a read returns both data and an error, the completed lines are
// returned with the error; an EOF accompanying data is dropped and
// surfaces as ErrStreamClosed on the next call.
func (lr *LineReader) ReadLines() ([]string, int, error) {
	p := util.GetBuf()
	defer util.PutBuf(p)

	n, err := lr.r.Read(*p)
	if n == 0 {
		if err == nil || errors.Is(err, io.EOF) {
			return nil, 0, ircerr.ErrStreamClosed
		}
		return nil, 0, err
	}
	if errors.Is(err, io.EOF) {
		err = nil
	}

	lr.buf = append(lr.buf, (*p)[:n]...)
	lines, rest := Split(lr.buf)
	lr.buf = append(lr.buf[:0], rest...)

	if len(lr.buf) > MaxLineLength {
		return lines, n, ircerr.ErrLineTooLong
	}
	return lines, n, err
}

// Pending returns the bytes held back as an incomplete line.
func (lr *LineReader) Pending() []byte {
	return lr.buf
}

// Split cuts buf on CRLF.  Every complete segment is returned as a line;
// the final, possibly empty, segment is returned as the remainder and
// aliases buf.
func Split(buf []byte) ([]string, []byte) {
	var lines []string
	for {
		i := bytes.Index(buf, crlf)
		if i < 0 {
			return lines, buf
		}
		lines = append(lines, string(buf[:i]))
		buf = buf[i+len(crlf):]
	}
}
