// Package seqio opens sequence sources whatever their compression and reads
// or writes FASTA/FASTQ records.
package seqio

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// ErrNotSequence is returned for a stream whose first record marker is
// neither '>' nor '@'.
var ErrNotSequence = errors.New("not a FASTA or FASTQ stream")

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	zstdMagic  = []byte{0x28, 0xb5, 0x2f, 0xfd}
	bzip2Magic = []byte("BZh")
)

// multiReadCloser closes multiple io.Closers when Close() is called.
type multiReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiReadCloser) Close() error {
	var err error
	for _, c := range m.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Open returns the decompressed contents of path. "-" reads stdin. gzip,
// zstd and bzip2 are recognised by magic number or file suffix.
func Open(path string) (io.ReadCloser, error) {
	var src io.ReadCloser
	if path == "-" {
		src = io.NopCloser(os.Stdin)
	} else {
		fh, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		src = fh
	}
	br := bufio.NewReader(src)
	sig, _ := br.Peek(4)

	switch {
	case bytes.HasPrefix(sig, gzipMagic) || strings.HasSuffix(path, ".gz"):
		gr, err := gzip.NewReader(br)
		if err != nil {
			_ = src.Close()
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return &multiReadCloser{Reader: gr, closers: []io.Closer{gr, src}}, nil
	case bytes.HasPrefix(sig, zstdMagic) || strings.HasSuffix(path, ".zst"):
		zr, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
		if err != nil {
			_ = src.Close()
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return &multiReadCloser{Reader: zr, closers: []io.Closer{zr.IOReadCloser(), src}}, nil
	case bytes.HasPrefix(sig, bzip2Magic) || strings.HasSuffix(path, ".bz2"):
		return &multiReadCloser{Reader: bzip2.NewReader(br), closers: []io.Closer{src}}, nil
	}
	return &multiReadCloser{Reader: br, closers: []io.Closer{src}}, nil
}

// OpenSequences opens path like Open and checks that the stream starts with a
// FASTA or FASTQ record. An empty stream is accepted.
func OpenSequences(path string) (io.ReadCloser, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(rc)
	c, err := firstMarker(br)
	if err != nil && err != io.EOF {
		_ = rc.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err == nil && c != '>' && c != '@' {
		_ = rc.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrNotSequence)
	}
	return &multiReadCloser{Reader: br, closers: []io.Closer{rc}}, nil
}

// firstMarker peeks at the first non-blank byte without consuming it.
func firstMarker(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			_, _ = br.ReadByte()
			continue
		}
		return b[0], nil
	}
}
