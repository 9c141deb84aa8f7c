// Package reads owns the imported read set: library membership, mate
// pairing and the detached (untrusted) flag.
package reads

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"contigr/internal/graph"
	"contigr/internal/seqio"
)

// ErrCategory reports a category code outside the supported libraries.
var ErrCategory = errors.New("read category out of range")

// Read is one sequenced fragment.
type Read struct {
	ID      graph.ReadID
	Name    string
	Library int
	Paired  bool
	Length  int
}

// Set is the ordered read collection.
type Set struct {
	reads    []Read
	mate     []graph.ReadID
	detached []bool
}

// NewSet returns an empty set.
func NewSet() *Set { return &Set{} }

// ParseCategory splits a category code into library and paired flag. Codes
// run 2*library for single reads and 2*library+1 for paired ones; the long
// library is graph.LongCategory.
func ParseCategory(code int) (library int, paired bool, err error) {
	if code < 0 || code/2 > graph.LongCategory {
		return 0, false, fmt.Errorf("%w: %d", ErrCategory, code)
	}
	return code / 2, code%2 == 1, nil
}

// Add appends a read and returns its id.
func (s *Set) Add(name string, library int, paired bool, length int) (graph.ReadID, error) {
	if library < 0 || library > graph.LongCategory {
		return 0, fmt.Errorf("%w: library %d", ErrCategory, library)
	}
	id := graph.ReadID(len(s.reads))
	s.reads = append(s.reads, Read{ID: id, Name: name, Library: library, Paired: paired, Length: length})
	s.mate = append(s.mate, -1)
	s.detached = append(s.detached, false)
	return id, nil
}

// Len is the number of reads.
func (s *Set) Len() int { return len(s.reads) }

// Get returns read r.
func (s *Set) Get(r graph.ReadID) Read { return s.reads[r] }

// Count returns the number of reads in library lib.
func (s *Set) Count(lib int) int {
	n := 0
	for _, r := range s.reads {
		if r.Library == lib {
			n++
		}
	}
	return n
}

// PairUp pairs paired reads of library lib that sit next to each other in
// input order. A paired read without a neighbour stays single. Calling it
// again for the same library rebuilds the same pairs. It returns the number
// of pairs.
func (s *Set) PairUp(lib int) int {
	for i := range s.reads {
		if s.reads[i].Library == lib {
			s.mate[i] = -1
		}
	}
	pairs := 0
	for i := 0; i+1 < len(s.reads); {
		a, b := s.reads[i], s.reads[i+1]
		if a.Library == lib && a.Paired && b.Library == lib && b.Paired {
			s.mate[i], s.mate[i+1] = graph.ReadID(i+1), graph.ReadID(i)
			pairs++
			i += 2
			continue
		}
		i++
	}
	return pairs
}

// Mate returns the partner of r. Detached reads and their partners have none.
func (s *Set) Mate(r graph.ReadID) (graph.ReadID, bool) {
	if int(r) >= len(s.reads) || r < 0 {
		return 0, false
	}
	m := s.mate[r]
	if m < 0 || s.detached[r] || s.detached[m] {
		return 0, false
	}
	return m, true
}

// Detach withdraws every dubious read from pairing. The reads stay in the set.
func (s *Set) Detach(d *graph.Dubious) int {
	n := 0
	d.Each(func(r graph.ReadID) {
		if int(r) < len(s.reads) && !s.detached[r] {
			s.detached[r] = true
			n++
		}
	})
	return n
}

// Detached reports whether r was withdrawn.
func (s *Set) Detached(r graph.ReadID) bool { return s.detached[r] }

// Load reads the sequence file at path. Each record description carries the
// read index and the category code, in that order.
func Load(ctx context.Context, path string) (*Set, error) {
	s := NewSet()
	err := seqio.ReadPath(ctx, path, func(rec seqio.Record) error {
		code, err := categoryField(rec.Description)
		if err != nil {
			return fmt.Errorf("read %q: %w", rec.Name, err)
		}
		lib, paired, err := ParseCategory(code)
		if err != nil {
			return fmt.Errorf("read %q: %w", rec.Name, err)
		}
		_, err = s.Add(rec.Name, lib, paired, len(rec.Seq))
		return err
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func categoryField(desc string) (int, error) {
	fields := strings.Fields(desc)
	var f string
	switch len(fields) {
	case 0:
		return 0, nil
	case 1:
		f = fields[0]
	default:
		f = fields[1]
	}
	code, err := strconv.Atoi(f)
	if err != nil {
		return 0, fmt.Errorf("bad category %q", f)
	}
	return code, nil
}
