package handler

import (
	"bytes"
	"sync"
)

// Response bodies are encoded into pooled buffers before the status code is
// written, so an encoding failure can still become a clean 500.
var bufferPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, 512))
	},
}

func getBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

func putBuffer(buf *bytes.Buffer) {
	// Don't pool buffers that grew past a page; a full inventory listing
	// shouldn't pin memory for every future health check.
	if buf.Cap() > 64*1024 {
		return
	}
	buf.Reset()
	bufferPool.Put(buf)
}
