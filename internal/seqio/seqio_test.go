package seqio

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plain = `>r1 0 1
ACGTACGTAC
>r2 1 1
GGGGCCCCAA
`

const fastqText = `@q1 0 3
ACGTN
+
IIIII
@q2 1 3
TTTT
+
IIII
`

func collect(t *testing.T, path string) []Record {
	t.Helper()
	var out []Record
	require.NoError(t, ReadPath(context.Background(), path, func(r Record) error {
		out = append(out, r)
		return nil
	}))
	return out
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func gzipped(t *testing.T, data string) []byte {
	var b bytes.Buffer
	gw := gzip.NewWriter(&b)
	_, err := gw.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	return b.Bytes()
}

func zstded(t *testing.T, data string) []byte {
	var b bytes.Buffer
	zw, err := zstd.NewWriter(&b)
	require.NoError(t, err)
	_, err = zw.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return b.Bytes()
}

func TestReadPlainFASTA(t *testing.T) {
	recs := collect(t, writeFile(t, "reads.fa", []byte(plain)))
	require.Len(t, recs, 2)
	assert.Equal(t, "r1", recs[0].Name)
	assert.Equal(t, "0 1", recs[0].Description)
	assert.Equal(t, "ACGTACGTAC", string(recs[0].Seq))
	assert.Equal(t, "GGGGCCCCAA", string(recs[1].Seq))
}

func TestReadCompressedByMagic(t *testing.T) {
	for name, data := range map[string][]byte{
		"reads.gzdata":  gzipped(t, plain),
		"reads.zstdata": zstded(t, plain),
	} {
		t.Run(name, func(t *testing.T) {
			recs := collect(t, writeFile(t, name, data))
			require.Len(t, recs, 2)
			assert.Equal(t, "r2", recs[1].Name)
		})
	}
}

func TestReadBzip2(t *testing.T) {
	recs := collect(t, filepath.Join("testdata", "reads.fa.bz2"))
	require.Len(t, recs, 2)
	assert.Equal(t, "ACGTACGTAC", string(recs[0].Seq))
}

func TestReadFASTQ(t *testing.T) {
	recs := collect(t, writeFile(t, "reads.fq", []byte(fastqText)))
	require.Len(t, recs, 2)
	assert.Equal(t, "q1", recs[0].Name)
	assert.Equal(t, "ACGTN", string(recs[0].Seq))
	assert.Equal(t, "1 3", recs[1].Description)
}

func TestRejectsNonSequence(t *testing.T) {
	path := writeFile(t, "junk.txt", []byte("hello\n"))
	_, err := OpenSequences(path)
	assert.ErrorIs(t, err, ErrNotSequence)
}

func TestEmptyStreamHasNoRecords(t *testing.T) {
	assert.Empty(t, collect(t, writeFile(t, "empty.fa", nil)))
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReadHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Read(ctx, strings.NewReader(plain), func(Record) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFASTAWriterWraps(t *testing.T) {
	var b bytes.Buffer
	w := NewFASTAWriter(&b)
	require.NoError(t, w.Write("NODE_1", "", bytes.Repeat([]byte("A"), 70)))
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, ">NODE_1", lines[0])
	assert.Len(t, lines[1], LineWidth)
	assert.Len(t, lines[2], 10)
}
