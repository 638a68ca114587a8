package fragment

import "github.com/kodflow/syswit/internal/domain/sample"

// DirWriter adapts Write/WritePath to flush.Writer, letting the flush
// manager hand off buffers without knowing the on-disk fragment shape.
type DirWriter struct {
	Dir string
}

// WriteFragment writes buf to dir/tmpresult_<counter>.json.
func (w DirWriter) WriteFragment(counter int, buf *sample.Buffer) error {
	return Write(WritePath(w.Dir, counter), buf)
}
