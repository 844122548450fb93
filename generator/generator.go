// Package generator enumerates every fixed-length string over an alphabet,
// with repetition, in lexicographic order of alphabet index.
//
// A Generator holds only a digit counter of the requested length, so the
// full result set is never materialized. It is not safe for concurrent use
// and cannot be restarted; create a new Generator to enumerate again.
package generator

import (
	"errors"
	"iter"
	"math/bits"
)

var (
	ErrInvalidLength = errors.New("generator: length must be a positive integer")
	ErrEmptyAlphabet = errors.New("generator: alphabet must not be empty")
)

// Generator is a base-|alphabet| counter of length digits.
type Generator struct {
	alphabet []rune
	digits   []int
	buf      []rune
	emitted  uint64
	done     bool
}

// New returns a Generator positioned before the first combination.
// Duplicate characters are allowed and produce duplicate combinations.
func New(alphabet []rune, length int) (*Generator, error) {
	if length < 1 {
		return nil, ErrInvalidLength
	}
	if len(alphabet) == 0 {
		return nil, ErrEmptyAlphabet
	}

	a := make([]rune, len(alphabet))
	copy(a, alphabet)

	buf := make([]rune, length)
	for i := range buf {
		buf[i] = a[0]
	}

	return &Generator{
		alphabet: a,
		digits:   make([]int, length),
		buf:      buf,
	}, nil
}

// Next returns the next combination, or false once the sequence is exhausted.
func (g *Generator) Next() (string, bool) {
	if g.done {
		return "", false
	}

	s := string(g.buf)
	g.emitted++
	g.advance()
	return s, true
}

// advance increments the counter starting from the last position.
// Carrying out of position 0 marks the sequence as exhausted.
func (g *Generator) advance() {
	for i := len(g.digits) - 1; i >= 0; i-- {
		g.digits[i]++
		if g.digits[i] < len(g.alphabet) {
			g.buf[i] = g.alphabet[g.digits[i]]
			return
		}
		g.digits[i] = 0
		g.buf[i] = g.alphabet[0]
	}
	g.done = true
}

// All returns the remaining combinations as a lazy sequence.
// Breaking out of the range loop leaves the Generator where it stopped.
func (g *Generator) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			s, ok := g.Next()
			if !ok || !yield(s) {
				return
			}
		}
	}
}

// Emitted reports how many combinations Next has returned so far.
func (g *Generator) Emitted() uint64 { return g.emitted }

// Count returns alphabetSize^length. ok is false when the result overflows uint64
// or the arguments are not positive.
func Count(alphabetSize, length int) (n uint64, ok bool) {
	if alphabetSize < 1 || length < 1 {
		return 0, false
	}
	if alphabetSize == 1 {
		return 1, true
	}
	n = 1
	base := uint64(alphabetSize)
	for range length {
		hi, lo := bits.Mul64(n, base)
		if hi != 0 {
			return 0, false
		}
		n = lo
	}
	return n, true
}

// Duplicates returns every character that occurs more than once in alphabet,
// each reported once, in the order its first repeat is seen.
func Duplicates(alphabet []rune) []rune {
	seen := make(map[rune]int, len(alphabet))
	var dups []rune
	for _, r := range alphabet {
		seen[r]++
		if seen[r] == 2 {
			dups = append(dups, r)
		}
	}
	return dups
}
