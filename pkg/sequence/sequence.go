// Package sequence derives the code strings printed on a sheet.
//
// A [Sequence] maps every integer of an inclusive range to
// prefix + zero-padded number, e.g. 301 → "P0301" for prefix "P" and 4
// digits. The mapping is pure: iterating twice yields the same codes in the
// same (ascending) order.
//
//	seq, err := sequence.New("P", 4, 301, 305)
//	for i, code := range seq.All() {
//	    fmt.Println(i, code) // 301 P0301 ... 305 P0305
//	}
package sequence

import (
	"iter"
	"strconv"
	"strings"

	"github.com/matzehuels/qrsheet/pkg/errors"
)

// MaxLen is the largest number of codes a sequence may hold.
const MaxLen = 1_000_000

// Sequence is an inclusive, ascending range of codes.
type Sequence struct {
	prefix     string
	digits     int
	start, end int
}

// New returns the sequence for [start, end]. It fails with INVALID_RANGE
// when start > end, start is negative, or the range holds more than
// [MaxLen] codes, and with INVALID_CONFIG when the prefix or digit width is
// unusable.
func New(prefix string, digits, start, end int) (Sequence, error) {
	if digits < 1 {
		return Sequence{}, errors.New(errors.ErrCodeInvalidConfig, "digits must be at least 1, got %d", digits)
	}
	if err := errors.ValidatePrefix(prefix); err != nil {
		return Sequence{}, err
	}
	if start < 0 {
		return Sequence{}, errors.New(errors.ErrCodeInvalidRange, "start must not be negative, got %d", start)
	}
	if start > end {
		return Sequence{}, errors.New(errors.ErrCodeInvalidRange, "start %d is greater than end %d", start, end)
	}
	// start >= 0, so end-start cannot overflow.
	if end-start >= MaxLen {
		return Sequence{}, errors.New(errors.ErrCodeInvalidRange, "range %d..%d exceeds %d codes", start, end, MaxLen)
	}
	return Sequence{prefix: prefix, digits: digits, start: start, end: end}, nil
}

// Start returns the first number of the range.
func (s Sequence) Start() int { return s.start }

// End returns the last number of the range.
func (s Sequence) End() int { return s.end }

// Len returns the number of codes in the sequence.
func (s Sequence) Len() int { return s.end - s.start + 1 }

// Format renders the code for i. Numbers wider than the configured digits
// are written out in full.
func (s Sequence) Format(i int) string {
	n := strconv.Itoa(i)
	if pad := s.digits - len(n); pad > 0 {
		n = strings.Repeat("0", pad) + n
	}
	return s.prefix + n
}

// All yields (i, code) pairs in ascending order of i.
func (s Sequence) All() iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		for k := range s.Len() {
			i := s.start + k
			if !yield(i, s.Format(i)) {
				return
			}
		}
	}
}

// Codes materializes the sequence.
func (s Sequence) Codes() []string {
	codes := make([]string, 0, s.Len())
	for _, c := range s.All() {
		codes = append(codes, c)
	}
	return codes
}
