package recoil

import "unicode"

// boyerMoore finds occurrences of a literal prefix. For case-insensitive
// programs the pattern arrives already lowercased and text chars are folded
// during the scan. Right-to-left programs scan mirrored: the tail of the
// comparison is the pattern's first char.
//
// The positive table is the good-suffix shift: for a mismatch at pattern
// index i, the distance to slide so an internal occurrence of the matched
// tail lines up again (or the direction bump when there is none). The
// negative table is the bad-character shift, split into an ASCII array and
// lazily built 256-entry pages for everything else.
type boyerMoore struct {
	pattern []rune

	positive      []int
	negativeASCII []int
	negative      map[rune][]int // page index (ch >> 8) -> shifts

	caseInsensitive bool
	rightToLeft     bool
}

// newBoyerMoore preprocesses pattern. The pattern must be non-empty; Compile
// builds a scanner only for a non-empty prefix.
func newBoyerMoore(pattern []rune, caseInsensitive, rightToLeft bool) *boyerMoore {
	if len(pattern) == 0 {
		panic(newInternalError("empty Boyer-Moore pattern"))
	}
	b := &boyerMoore{
		pattern:         pattern,
		caseInsensitive: caseInsensitive,
		rightToLeft:     rightToLeft,
	}

	var beforefirst, last, bump int
	if !rightToLeft {
		beforefirst = -1
		last = len(pattern) - 1
		bump = 1
	} else {
		beforefirst = len(pattern)
		last = 0
		bump = -1
	}

	// Good-suffix table: for each candidate internal start, measure how far
	// the tail suffix matches and record the displacement at the outermost
	// mismatch index only.
	b.positive = make([]int, len(pattern))
	examine := last
	ch := pattern[examine]
	b.positive[examine] = bump
	examine -= bump

Outerloop:
	for {
		for {
			if examine == beforefirst {
				break Outerloop
			}
			if pattern[examine] == ch {
				break
			}
			examine -= bump
		}
		match := last
		scan := examine
		for {
			if scan == beforefirst || pattern[match] != pattern[scan] {
				if b.positive[match] == 0 {
					b.positive[match] = match - scan
				}
				break
			}
			scan -= bump
			match -= bump
		}
		examine -= bump
	}

	for match := last - bump; match != beforefirst; match -= bump {
		if b.positive[match] == 0 {
			b.positive[match] = bump
		}
	}

	// Bad-character table: distance from each char's occurrence nearest the
	// tail to the tail itself; absent chars shift by the whole pattern.
	defadv := last - beforefirst
	b.negativeASCII = make([]int, 128)
	for i := range b.negativeASCII {
		b.negativeASCII[i] = defadv
	}

	first := 0
	if rightToLeft {
		first = len(pattern) - 1
	}
	for examine = first; examine != last; examine += bump {
		ch = pattern[examine]
		if ch < 128 {
			b.negativeASCII[ch] = last - examine
		} else {
			page := ch >> 8
			if b.negative == nil {
				b.negative = map[rune][]int{}
			}
			shifts := b.negative[page]
			if shifts == nil {
				shifts = make([]int, 256)
				for k := range shifts {
					shifts[k] = defadv
				}
				b.negative[page] = shifts
			}
			shifts[ch&0xFF] = last - examine
		}
	}

	return b
}

func (b *boyerMoore) fold(ch rune) rune {
	if b.caseInsensitive {
		return unicode.ToLower(ch)
	}
	return ch
}

// isMatchAt reports whether the pattern occurs exactly at index. Used when
// an anchor already pins the candidate position.
func (b *boyerMoore) isMatchAt(text []rune, index, beg, end int) bool {
	if !b.rightToLeft {
		if index < beg || end-index < len(b.pattern) {
			return false
		}
	} else {
		if index > end || index-beg < len(b.pattern) {
			return false
		}
		index -= len(b.pattern)
	}
	for i, ch := range b.pattern {
		if b.fold(text[index+i]) != ch {
			return false
		}
	}
	return true
}

// scan finds the next occurrence at or after index (at or before, RTL) inside
// text[beg:end). It returns the match's leftmost index, or for right-to-left
// scanners the index just past the match's rightmost char; -1 when there is
// none.
func (b *boyerMoore) scan(text []rune, index, beg, end int) int {
	var defadv, startmatch, endmatch, test, bump int
	if !b.rightToLeft {
		defadv = len(b.pattern)
		startmatch = len(b.pattern) - 1
		endmatch = 0
		if index < beg {
			index = beg
		}
		test = index + defadv - 1
		bump = 1
	} else {
		defadv = -len(b.pattern)
		startmatch = 0
		endmatch = -defadv - 1
		if index > end {
			index = end
		}
		test = index + defadv
		bump = -1
	}

	chMatch := b.pattern[startmatch]
	for {
		if test >= end || test < beg {
			return -1
		}
		chTest := b.fold(text[test])
		if chTest != chMatch {
			test += b.shiftFor(chTest, defadv)
			continue
		}

		test2 := test
		match := startmatch
		for {
			if match == endmatch {
				if b.rightToLeft {
					return test2 + 1
				}
				return test2
			}
			match -= bump
			test2 -= bump
			chTest = b.fold(text[test2])
			if chTest == b.pattern[match] {
				continue
			}

			advance := b.positive[match]
			if candidate := (match - startmatch) + b.shiftFor(chTest, defadv); b.better(candidate, advance) {
				advance = candidate
			}
			test += advance
			break
		}
	}
}

func (b *boyerMoore) better(candidate, advance int) bool {
	if b.rightToLeft {
		return candidate < advance
	}
	return candidate > advance
}

func (b *boyerMoore) shiftFor(ch rune, defadv int) int {
	if ch < 128 {
		return b.negativeASCII[ch]
	}
	if shifts := b.negative[ch>>8]; shifts != nil {
		return shifts[ch&0xFF]
	}
	return defadv
}
