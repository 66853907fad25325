package construct

import "sync"

const chunkSize = 32 * 1024

// bufPool holds scratch buffers for chunked copies. 32KB matches the
// default io.Copy buffer size.
var bufPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, chunkSize)
		return &b
	},
}
