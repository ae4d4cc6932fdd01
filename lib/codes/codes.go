// Package codes enumerates the IATA code space for a given code class.
package codes

import "strings"

type Kind int

const (
	// Carrier designates 2-character airline designators, which may
	// contain digits (e.g. "T2").
	Carrier Kind = iota
	// Airport designates 3-letter location identifiers.
	Airport
)

const (
	carrierAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	airportAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(s) {
	case "carrier":
		return Carrier, true
	case "airport", "air":
		return Airport, true
	}
	return 0, false
}

func (k Kind) String() string {
	switch k {
	case Carrier:
		return "carrier"
	case Airport:
		return "airport"
	}
	return "unknown"
}

func (k Kind) Length() int {
	if k == Carrier {
		return 2
	}
	return 3
}

func (k Kind) Alphabet() string {
	if k == Carrier {
		return carrierAlphabet
	}
	return airportAlphabet
}

// Count returns the total number of codes in the class,
// |alphabet|^length.
func (k Kind) Count() int {
	n := 1
	for i := 0; i < k.Length(); i++ {
		n *= len(k.Alphabet())
	}
	return n
}

// Sequence walks every code of a class in lexicographic order over the
// class alphabet. The zero cost of a Sequence is intentional: the full
// airport space is 26^3 strings and is never materialized.
type Sequence struct {
	alphabet string
	indices  []int
	done     bool
}

// Codes returns a fresh sequence positioned before the first code.
func (k Kind) Codes() *Sequence {
	return &Sequence{
		alphabet: k.Alphabet(),
		indices:  make([]int, k.Length()),
	}
}

// Next returns the next code in the class, or ("", false) once the
// space is exhausted.
func (s *Sequence) Next() (string, bool) {
	if s.done {
		return "", false
	}

	var b strings.Builder
	b.Grow(len(s.indices))
	for _, i := range s.indices {
		b.WriteByte(s.alphabet[i])
	}

	// advance the rightmost position, carrying leftward
	for pos := len(s.indices) - 1; ; pos-- {
		if pos < 0 {
			s.done = true
			break
		}
		s.indices[pos]++
		if s.indices[pos] < len(s.alphabet) {
			break
		}
		s.indices[pos] = 0
	}

	return b.String(), true
}

// Reset rewinds the sequence to the first code.
func (s *Sequence) Reset() {
	for i := range s.indices {
		s.indices[i] = 0
	}
	s.done = false
}
