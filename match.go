package recoil

import "time"

// Span is one recorded capture: a start index into the searched text and a
// length, both in runes.
type Span struct {
	Start  int
	Length int
}

// Match is the immutable result of one successful search. Index/Length cover
// the full match (slot 0); each capture slot additionally keeps every span
// recorded during the match, in source-text order after tidying.
//
// Balancing groups cancel a slot's last span by appending a pair of negative
// placeholders (-3 - index of the earlier entry each one points at); tidy
// compacts the placeholders away, each pair taking the span it cancels with
// it, before the Match is handed out, so callers only ever see non-negative
// spans.
type Match struct {
	text    []rune
	prog    *Program
	timeout time.Duration

	matches    [][]int
	matchcount []int
	balancing  bool

	// Index and Length locate the full match within the searched text.
	Index  int
	Length int

	textPos int
}

func newMatch(prog *Program, text []rune, timeout time.Duration) *Match {
	return &Match{
		text:       text,
		prog:       prog,
		timeout:    timeout,
		matches:    make([][]int, prog.capsize),
		matchcount: make([]int, prog.capsize),
	}
}

func (m *Match) reset() {
	for i := range m.matchcount {
		m.matchcount[i] = 0
	}
	m.balancing = false
}

func (m *Match) addMatch(cap, start, length int) {
	capcount := m.matchcount[cap]
	if len(m.matches[cap]) < capcount*2+2 {
		grown := make([]int, max(capcount*2+2, len(m.matches[cap])*2))
		copy(grown, m.matches[cap])
		m.matches[cap] = grown
	}
	m.matches[cap][capcount*2] = start
	m.matches[cap][capcount*2+1] = length
	m.matchcount[cap] = capcount + 1
}

// balanceMatch invalidates the last span of cap by appending a placeholder
// pair pointing behind it; the real spans shift down during tidy.
func (m *Match) balanceMatch(cap int) {
	m.balancing = true

	target := m.matchcount[cap]*2 - 2
	if m.matches[cap][target] < 0 {
		target = -3 - m.matches[cap][target]
	}
	target -= 2
	if target >= 0 && m.matches[cap][target] < 0 {
		m.addMatch(cap, m.matches[cap][target], m.matches[cap][target+1])
	} else {
		m.addMatch(cap, -3-target, -4-target)
	}
}

func (m *Match) removeMatch(cap int) {
	m.matchcount[cap]--
}

func (m *Match) isMatched(cap int) bool {
	return cap >= 0 && cap < len(m.matchcount) && m.matchcount[cap] > 0 &&
		m.matches[cap][m.matchcount[cap]*2-1] != -2
}

func (m *Match) matchIndex(cap int) int {
	i := m.matches[cap][m.matchcount[cap]*2-2]
	if i >= 0 {
		return i
	}
	return m.matches[cap][-3-i]
}

func (m *Match) matchLength(cap int) int {
	i := m.matches[cap][m.matchcount[cap]*2-1]
	if i >= 0 {
		return i
	}
	return m.matches[cap][-3-i]
}

// tidy fixes up the final state once the runner accepts: records the overall
// span, and if any balancing happened, compacts each slot's span array so
// placeholders disappear and real spans sit contiguously in recorded order.
func (m *Match) tidy(textPos int) {
	m.Index = m.matches[0][0]
	m.Length = m.matches[0][1]
	m.textPos = textPos

	if !m.balancing {
		return
	}
	for cap := range m.matches {
		limit := m.matchcount[cap] * 2
		arr := m.matches[cap]
		i := 0
		for ; i < limit; i++ {
			if arr[i] < 0 {
				break
			}
		}
		j := i
		for ; i < limit; i++ {
			if arr[i] < 0 {
				j--
				continue
			}
			if i != j {
				arr[j] = arr[i]
			}
			j++
		}
		m.matchcount[cap] = j / 2
	}
	m.balancing = false
}

// GroupCount returns the number of capture slots, the full match included.
func (m *Match) GroupCount() int {
	return len(m.matchcount)
}

// IsMatched reports whether slot cap recorded a capture.
func (m *Match) IsMatched(cap int) bool {
	return m.isMatched(cap)
}

// Span returns the final span of slot cap; ok is false for unmatched slots.
func (m *Match) Span(cap int) (span Span, ok bool) {
	if !m.isMatched(cap) {
		return Span{}, false
	}
	return Span{Start: m.matchIndex(cap), Length: m.matchLength(cap)}, true
}

// Spans returns every span slot cap recorded during the match, oldest first.
// Captures inside loops record one span per iteration.
func (m *Match) Spans(cap int) []Span {
	if cap < 0 || cap >= len(m.matchcount) {
		return nil
	}
	spans := make([]Span, m.matchcount[cap])
	for i := range spans {
		spans[i] = Span{Start: m.matches[cap][i*2], Length: m.matches[cap][i*2+1]}
	}
	return spans
}

// Group returns the text of slot cap's final span, or "" when unmatched.
func (m *Match) Group(cap int) string {
	if !m.isMatched(cap) {
		return ""
	}
	start := m.matchIndex(cap)
	return string(m.text[start : start+m.matchLength(cap)])
}

// GroupByName resolves a named capture to its slot, or -1.
func (m *Match) GroupByName(name string) int {
	if m.prog.capNames == nil {
		return -1
	}
	num, ok := m.prog.capNames[name]
	if !ok {
		return -1
	}
	if m.prog.caps != nil {
		slot, ok := m.prog.caps[num]
		if !ok {
			return -1
		}
		return slot
	}
	return num
}
