package util

import (
	"io"
	"testing"
)

// BenchmarkBufPool measures the allocation advantage of sync.Pool
// buffer reuse versus fresh allocation.
func BenchmarkBufPool(b *testing.B) {
	b.Run("pool", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			buf := GetBuf()
			_ = (*buf)[0]
			PutBuf(buf)
		}
	})
	b.Run("alloc", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			buf := make([]byte, ReadBufSize)
			_ = buf[0]
		}
	})
}

// BenchmarkLogger_Filtered measures the cost of a log call below the
// active level, which is the common case inside session read loops.
func BenchmarkLogger_Filtered(b *testing.B) {
	l := NewLogger(1)
	l.SetOutput(io.Discard)
	for i := 0; i < b.N; i++ {
		l.Debug("received message %s", ":irc.example 353 nick = #chan :a b c")
	}
}
