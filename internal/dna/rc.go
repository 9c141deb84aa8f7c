// Package dna holds nucleotide helpers shared by the graph and its writers.
package dna

var complement [256]byte

func init() {
	complement['A'] = 'T'
	complement['C'] = 'G'
	complement['G'] = 'C'
	complement['T'] = 'A'
	complement['a'] = 't'
	complement['c'] = 'g'
	complement['g'] = 'c'
	complement['t'] = 'a'
	complement['N'] = 'N'
	complement['n'] = 'n'
}

// RevComp returns the reverse complement of seq. Unknown letters become 'N'.
func RevComp(seq []byte) []byte {
	n := len(seq)
	if n == 0 {
		return nil
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		c := complement[seq[n-1-i]]
		if c == 0 {
			c = 'N'
		}
		out[i] = c
	}
	return out
}

// Gap returns a run of n 'N' letters.
func Gap(n int) []byte {
	if n <= 0 {
		return nil
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = 'N'
	}
	return out
}
