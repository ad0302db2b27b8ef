// Package recoil is a backtracking regular-expression engine core: a writer
// that lowers a parsed syntax tree into fixed-width bytecode, and a stack
// machine that executes that bytecode against rune text.
//
// The surface-syntax parser is deliberately not part of this module; callers
// construct a Tree (see tree.go) and hand it to Compile. The resulting
// Program is immutable and safe for concurrent use; each search runs on its
// own private runner state.
package recoil

import (
	"time"
)

// Options is a bitmask of matching options.
// The zero value matches case-sensitively, left to right, with ^ and $
// anchored to the text. Combine options with bitwise OR.
type Options uint16

const (
	// Case-insensitive matching: input chars are lowercased before compare;
	// literals and class blobs in the tree are compared as given
	// (backreferences fold both sides).
	IgnoreCase Options = 1 << iota

	// "^" and "$" match line boundaries.
	Multiline

	// "." matches newline. Consumed by the parser when it builds class
	// blobs; carried here so programs remember their full option set.
	Singleline

	// Unescaped whitespace in the pattern is ignored. Parser-level; carried
	// for completeness.
	IgnorePatternWhitespace

	// Scan and compare right to left.
	RightToLeft

	// ASCII-only word, digit and space interpretation, and backreferences
	// to unmatched groups succeed trivially.
	ECMAScript

	// Case folding uses the invariant mapping regardless of host locale.
	// This engine folds invariantly in all cases; the flag is accepted so
	// option sets round-trip.
	CultureInvariant
)

// LimitError reports that a search exceeded its wall-clock budget.
// No partial match state is exposed.
type LimitError struct {
	Budget time.Duration
}

func (e LimitError) Error() string {
	return "recoil: match budget of " + e.Budget.String() + " exceeded"
}

// InternalError reports a violated writer/runner invariant. It indicates a
// bug in this module or a malformed tree, never bad input text.
type InternalError struct {
	msg string
}

func (e InternalError) Error() string {
	return "recoil: internal error: " + e.msg
}

func newInternalError(msg string) InternalError {
	return InternalError{msg: msg}
}

// Compile lowers tree into an executable Program.
//
// The only error condition is a tree containing node kinds outside the
// contract in tree.go, reported as InternalError.
func Compile(tree *Tree, opts Options) (prog *Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ie, ok := r.(InternalError); ok {
				prog, err = nil, ie
				return
			}
			panic(r)
		}
	}()

	w := newWriter(tree, opts)
	prog = w.write()

	hints := analyze(tree, opts)
	prog.anchors = hints.anchors
	if hints.prefix != nil && len(hints.prefix.prefix) > 0 {
		prog.prefix = newBoyerMoore(hints.prefix.prefix, hints.prefix.caseInsensitive, opts&RightToLeft != 0)
	} else if hints.fc != nil {
		prog.fc = hints.fc
	}
	return prog, nil
}

// Search runs the program over text[beg:end), looking for the first match
// whose start is at or after start (at or before, for right-to-left
// programs). A nil Match means no match; a LimitError means the timeout
// budget expired. timeout <= 0 disables the budget.
func (p *Program) Search(text []rune, start, beg, end int, timeout time.Duration) (m *Match, err error) {
	if start < beg || start > end || beg < 0 || end > len(text) {
		return nil, nil
	}
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case LimitError:
				m, err = nil, e
			case InternalError:
				m, err = nil, e
			default:
				panic(r)
			}
		}
	}()

	r := newRunner(p, text, beg, end, timeout)
	return r.scan(start, -1), nil
}

// FindMatch applies p to text and returns the first match, or nil.
func (p *Program) FindMatch(text string, timeout time.Duration) (*Match, error) {
	runes := []rune(text)
	start := 0
	if p.rightToLeft {
		start = len(runes)
	}
	return p.Search(runes, start, 0, len(runes), timeout)
}

// FindMatchStartingAt is FindMatch beginning the search at pos, a rune index.
func (p *Program) FindMatchStartingAt(text string, pos int, timeout time.Duration) (*Match, error) {
	runes := []rune(text)
	return p.Search(runes, pos, 0, len(runes), timeout)
}

// FindNextMatch continues the search that produced match. The new search
// begins at the previous match's ending position; a zero-length previous
// match additionally bumps the position by one so that an empty match is
// never returned twice from the same spot.
//
// Returns nil when the input is exhausted.
func (p *Program) FindNextMatch(match *Match) (m *Match, err error) {
	if match == nil {
		return nil, nil
	}
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case LimitError:
				m, err = nil, e
			case InternalError:
				m, err = nil, e
			default:
				panic(r)
			}
		}
	}()
	r := newRunner(p, match.text, 0, len(match.text), match.timeout)
	return r.scan(match.textPos, match.Length), nil
}
