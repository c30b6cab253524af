// Package basin implements pure operations on hierarchical Pfafstetter-style
// drainage-basin codes (cobacia).
//
// A basin code is a string of decimal digits encoding nested sub-basins. An
// even digit marks the sub-basin as sitting on the trunk river of its parent,
// which is what makes upstream/downstream relationships derivable from the
// code alone:
//
//	main-course code (cocursodag): the prefix ending at the first even digit
//	found scanning from the least-significant end. "8697" scans 7, 9, 6 and
//	stops at the 6, giving "86". "86994" ends in an even digit and is its own
//	main course.
//
//	downstream courses: every prefix of the code whose numeric value is even
//	identifies a trunk reach the water passes through on its way out.
package basin

import (
	"fmt"
	"math/big"
	"strings"
)

// ErrInvalidCode reports a basin code with no deriveable main course: empty,
// non-numeric, or composed entirely of odd digits.
type ErrInvalidCode struct {
	Code string
}

func (e *ErrInvalidCode) Error() string {
	return fmt.Sprintf("invalid basin code %q: no even digit to anchor the main course", e.Code)
}

// MainCoursePrefix derives the main-course code (cocursodag) of a basin code.
// Digits are scanned from least-significant to most-significant; the prefix
// ending at the first even digit is the main course. If the last digit is
// already even the code is its own main course.
func MainCoursePrefix(code string) (string, error) {
	if code == "" || !isNumeric(code) {
		return "", &ErrInvalidCode{Code: code}
	}
	for i := len(code) - 1; i >= 0; i-- {
		if (code[i]-'0')%2 == 0 {
			return code[:i+1], nil
		}
	}
	// All digits odd: the code does not sit on any trunk reach.
	return "", &ErrInvalidCode{Code: code}
}

// DownstreamCoursePrefixes enumerates, in increasing length, every prefix of
// the code whose numeric value is even. Each one is the main-course code of a
// trunk reach downstream of (or containing) the coded sub-basin.
func DownstreamCoursePrefixes(code string) ([]string, error) {
	if code == "" || !isNumeric(code) {
		return nil, &ErrInvalidCode{Code: code}
	}
	var courses []string
	for i := 1; i <= len(code); i++ {
		if prefixIsEven(code[:i]) {
			courses = append(courses, code[:i])
		}
	}
	return courses, nil
}

// prefixIsEven reports whether the numeric value of the digit string is even.
// Codes can exceed 19 digits in deeply nested basins, so the parity check
// reads the last digit rather than parsing into a fixed-width integer.
func prefixIsEven(s string) bool {
	return (s[len(s)-1]-'0')%2 == 0
}

// CompareCodes orders two basin codes numerically. Codes of equal length
// compare as strings; otherwise the shorter is padded conceptually by
// magnitude, i.e. plain big-integer comparison.
func CompareCodes(a, b string) int {
	if len(a) == len(b) {
		return strings.Compare(a, b)
	}
	ia, okA := new(big.Int).SetString(a, 10)
	ib, okB := new(big.Int).SetString(b, 10)
	if !okA || !okB {
		return strings.Compare(a, b)
	}
	return ia.Cmp(ib)
}

func isNumeric(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
