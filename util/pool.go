package util

import "sync"

// ReadBufSize bounds a single read from an IRC connection.
const ReadBufSize = 4096

// BufPool provides reusable read buffers so that hundreds of concurrent
// sessions do not each allocate their own.
var BufPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, ReadBufSize)
		return &buf
	},
}

// GetBuf retrieves a buffer from the pool.  Callers must return it
// with [PutBuf] when finished.
func GetBuf() *[]byte {
	return BufPool.Get().(*[]byte)
}

// PutBuf returns a buffer to the pool for reuse.
func PutBuf(buf *[]byte) {
	if buf == nil {
		return
	}
	BufPool.Put(buf)
}
