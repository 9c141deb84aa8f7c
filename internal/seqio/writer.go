package seqio

import (
	"io"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// LineWidth is the number of letters per FASTA sequence line.
const LineWidth = 60

// FASTAWriter writes wrapped FASTA records.
type FASTAWriter struct {
	w *fasta.Writer
}

// NewFASTAWriter wraps w.
func NewFASTAWriter(w io.Writer) *FASTAWriter {
	return &FASTAWriter{w: fasta.NewWriter(w, LineWidth)}
}

// Write emits one record.
func (fw *FASTAWriter) Write(name, description string, letters []byte) error {
	s := linear.NewSeq(name, alphabet.BytesToLetters(letters), alphabet.DNAredundant)
	if description != "" {
		s.Annotation.SetDescription(description)
	}
	_, err := fw.w.Write(s)
	return err
}
