package irc

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ircerr "ircnames/internal/errors"
)

// chunkReader returns one chunk per Read call, then io.EOF.
type chunkReader struct {
	chunks [][]byte
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, c.chunks[0])
	c.chunks[0] = c.chunks[0][n:]
	if len(c.chunks[0]) == 0 {
		c.chunks = c.chunks[1:]
	}
	return n, nil
}

// readAll drains lr until the stream closes.
func readAll(t *testing.T, lr *LineReader) []string {
	t.Helper()
	var got []string
	for {
		lines, _, err := lr.ReadLines()
		got = append(got, lines...)
		if err != nil {
			require.ErrorIs(t, err, ircerr.ErrStreamClosed)
			return got
		}
	}
}

func TestLineReader_ChunkingInvariance(t *testing.T) {
	stream := ":s 001 me :Welcome\r\n:s 353 me = #c :alice bob\r\n\r\n:s 366 me #c :End\r\npartial"
	want := []string{":s 001 me :Welcome", ":s 353 me = #c :alice bob", "", ":s 366 me #c :End"}

	for size := 1; size <= len(stream); size++ {
		var chunks [][]byte
		for i := 0; i < len(stream); i += size {
			end := i + size
			if end > len(stream) {
				end = len(stream)
			}
			chunks = append(chunks, []byte(stream[i:end]))
		}

		lr := NewLineReader(&chunkReader{chunks: chunks})
		got := readAll(t, lr)
		require.Equal(t, want, got, "chunk size %d", size)
		assert.Equal(t, "partial", string(lr.Pending()), "chunk size %d", size)
	}
}

func TestLineReader_SplitCRLFAcrossReads(t *testing.T) {
	lr := NewLineReader(&chunkReader{chunks: [][]byte{[]byte("abc\r"), []byte("\ndef\r\n")}})

	lines, n, err := lr.ReadLines()
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.Equal(t, 4, n)
	assert.Equal(t, "abc\r", string(lr.Pending()))

	lines, _, err = lr.ReadLines()
	require.NoError(t, err)
	assert.Equal(t, []string{"abc", "def"}, lines)
	assert.Empty(t, lr.Pending())
}

func TestLineReader_ZeroByteRead(t *testing.T) {
	lr := NewLineReader(strings.NewReader(""))
	lines, n, err := lr.ReadLines()
	assert.Nil(t, lines)
	assert.Zero(t, n)
	require.ErrorIs(t, err, ircerr.ErrStreamClosed)
}

type zeroReader struct{}

func (zeroReader) Read([]byte) (int, error) { return 0, nil }

func TestLineReader_ZeroNilIsClosed(t *testing.T) {
	_, _, err := NewLineReader(zeroReader{}).ReadLines()
	require.ErrorIs(t, err, ircerr.ErrStreamClosed)
}

type failReader struct{ err error }

func (f failReader) Read([]byte) (int, error) { return 0, f.err }

func TestLineReader_ReadError(t *testing.T) {
	boom := errors.New("boom")
	_, _, err := NewLineReader(failReader{err: boom}).ReadLines()
	require.ErrorIs(t, err, boom)
}

func TestLineReader_LineTooLong(t *testing.T) {
	big := bytes.Repeat([]byte("x"), MaxLineLength+1)
	lr := NewLineReader(bytes.NewReader(big))

	var err error
	for err == nil {
		_, _, err = lr.ReadLines()
	}
	require.ErrorIs(t, err, ircerr.ErrLineTooLong)
}

func TestSplit(t *testing.T) {
	tests := []struct {
		in    string
		lines []string
		rest  string
	}{
		{"", nil, ""},
		{"abc", nil, "abc"},
		{"abc\r\n", []string{"abc"}, ""},
		{"a\r\nb\r\nc", []string{"a", "b"}, "c"},
		{"\r\n\r\n", []string{"", ""}, ""},
		{"a\nb\r\n", []string{"a\nb"}, ""},
	}
	for _, tt := range tests {
		lines, rest := Split([]byte(tt.in))
		assert.Equal(t, tt.lines, lines, "Split(%q)", tt.in)
		assert.Equal(t, tt.rest, string(rest), "Split(%q)", tt.in)
	}
}

func TestSplit_Idempotent(t *testing.T) {
	first, rest := Split([]byte(":s 353 me = #c :a b\r\nNOTICE x :hi\r\n\r\n:s 366 me #c :End\r\ntail"))
	require.Equal(t, "tail", string(rest))

	joined := strings.Join(first, "\r\n") + "\r\n"
	lr := NewLineReader(strings.NewReader(joined))
	again := readAll(t, lr)

	assert.Equal(t, first, again)
	assert.Empty(t, lr.Pending())
}
