package seqio

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/io/seqio/fastq"
	"github.com/biogo/biogo/seq"
	"github.com/biogo/biogo/seq/linear"
)

// Record is one FASTA or FASTQ entry.
type Record struct {
	Name        string
	Description string
	Seq         []byte
}

type sequenceReader interface {
	Read() (seq.Sequence, error)
}

// Read decodes FASTA or FASTQ records from r, chosen by the first record
// marker, and calls emit for each. Cancellation via ctx is checked between
// records.
func Read(ctx context.Context, r io.Reader, emit func(Record) error) error {
	br := bufio.NewReader(r)
	c, err := firstMarker(br)
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}

	var sr sequenceReader
	switch c {
	case '>':
		sr = fasta.NewReader(br, linear.NewSeq("", nil, alphabet.DNAredundant))
	case '@':
		sr = fastq.NewReader(br, linear.NewQSeq("", nil, alphabet.DNAredundant, alphabet.Sanger))
	default:
		return ErrNotSequence
	}

	for n := 1; ; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s, err := sr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("record %d: %w", n, err)
		}
		if err := emit(Record{Name: s.Name(), Description: s.Description(), Seq: letters(s)}); err != nil {
			return err
		}
	}
}

// ReadPath opens path with OpenSequences and reads every record.
func ReadPath(ctx context.Context, path string, emit func(Record) error) error {
	rc, err := OpenSequences(path)
	if err != nil {
		return err
	}
	defer rc.Close()
	if err := Read(ctx, rc, emit); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func letters(s seq.Sequence) []byte {
	switch v := s.(type) {
	case *linear.Seq:
		out := make([]byte, len(v.Seq))
		for i, l := range v.Seq {
			out[i] = byte(l)
		}
		return out
	case *linear.QSeq:
		out := make([]byte, len(v.Seq))
		for i, ql := range v.Seq {
			out[i] = byte(ql.L)
		}
		return out
	}
	out := make([]byte, s.Len())
	for i := range out {
		out[i] = byte(s.At(i).L)
	}
	return out
}
