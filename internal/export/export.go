// Package export writes generated combinations one per line.
package export

import (
	"bufio"
	"io"
	"slices"
)

// DefaultFileName is used when output goes to a file and no name is given.
const DefaultFileName = "combinations.txt"

// Writer writes batches as newline-terminated lines.
//
// Unsorted writers stream every batch through as it arrives. Sorted writers
// keep all combinations in memory and write them in ascending order on Flush,
// so their memory grows with the output.
type Writer struct {
	w       *bufio.Writer
	sorted  bool
	pending []string
	written uint64
}

// NewWriter returns a Writer on top of w.
func NewWriter(w io.Writer, sorted bool) *Writer {
	return &Writer{w: bufio.NewWriter(w), sorted: sorted}
}

// WriteBatch takes ownership of batch.
func (x *Writer) WriteBatch(batch []string) error {
	if x.sorted {
		x.pending = append(x.pending, batch...)
		return nil
	}
	return x.writeLines(batch)
}

// Flush writes anything still pending and flushes the underlying buffer.
func (x *Writer) Flush() error {
	if x.sorted && len(x.pending) > 0 {
		slices.Sort(x.pending)
		if err := x.writeLines(x.pending); err != nil {
			return err
		}
		x.pending = nil
	}
	return x.w.Flush()
}

// Written reports how many lines reached the buffered writer.
func (x *Writer) Written() uint64 { return x.written }

func (x *Writer) writeLines(lines []string) error {
	for _, s := range lines {
		if _, err := x.w.WriteString(s); err != nil {
			return err
		}
		if err := x.w.WriteByte('\n'); err != nil {
			return err
		}
		x.written++
	}
	return nil
}
