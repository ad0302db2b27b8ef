package recoil

import (
	"unicode"
)

// The analyzer derives search-acceleration hints from a tree: a required
// literal prefix, the set of chars a match can start with, and the leading
// anchors. Everything here is advisory; the runner behaves identically when
// handed an empty hints value, just slower.

type hints struct {
	prefix  *literalPrefix
	fc      *firstChars
	anchors int
}

func analyze(tree *Tree, opts Options) hints {
	var h hints
	if tree.Root == nil {
		return h
	}
	h.anchors = leadingAnchors(tree.Root)
	h.prefix = findPrefix(tree.Root)
	if h.prefix == nil {
		h.fc = findFirstChars(tree.Root)
	}
	return h
}

func anchorFromKind(kind Kind) int {
	switch kind {
	case KindBeginning:
		return anchorBeginning
	case KindStart:
		return anchorStart
	case KindEndZ:
		return anchorEndZ
	case KindEnd:
		return anchorEnd
	case KindBol:
		return anchorBol
	case KindEol:
		return anchorEol
	case KindBoundary, KindECMABoundary:
		return anchorBoundary
	}
	return 0
}

// leadingAnchors collects the zero-width anchors that any match must satisfy
// at its starting position: it walks the spine of leading children,
// accumulating anchors until the first width-consuming construct.
func leadingAnchors(root *Node) int {
	curNode := root
	var concatNode *Node
	nextChild := 0
	result := 0
	for {
		switch curNode.Kind {
		case KindConcatenate:
			if len(curNode.Children) > 0 {
				concatNode = curNode
				nextChild = 0
			}

		case KindGreedy, KindCapture:
			curNode = curNode.Children[0]
			concatNode = nil
			continue

		case KindBol, KindEol, KindBoundary, KindECMABoundary,
			KindBeginning, KindStart, KindEndZ, KindEnd:
			result |= anchorFromKind(curNode.Kind)

		case KindEmpty, KindRequire, KindPrevent:
			// zero-width, keep walking

		default:
			return result
		}

		if concatNode == nil || nextChild >= len(concatNode.Children) {
			return result
		}
		curNode = concatNode.Children[nextChild]
		nextChild++
	}
}

// findPrefix extracts the literal every match must begin with, or nil when
// the pattern has none. Literals in case-insensitive trees arrive already
// lowercased from the parser, so the prefix is usable as a folded
// Boyer-Moore needle directly.
func findPrefix(root *Node) *literalPrefix {
	curNode := root
	var concatNode *Node
	nextChild := 0
	for {
		switch curNode.Kind {
		case KindConcatenate:
			if len(curNode.Children) > 0 {
				concatNode = curNode
				nextChild = 0
			}

		case KindGreedy, KindCapture:
			curNode = curNode.Children[0]
			concatNode = nil
			continue

		case KindOneloop, KindOnelazy, KindOnerep:
			if curNode.M <= 0 {
				return nil
			}
			prefix := make([]rune, curNode.M)
			for i := range prefix {
				prefix[i] = curNode.Ch
			}
			return &literalPrefix{prefix: prefix, caseInsensitive: curNode.Options&IgnoreCase != 0}

		case KindOne:
			return &literalPrefix{prefix: []rune{curNode.Ch}, caseInsensitive: curNode.Options&IgnoreCase != 0}

		case KindMulti:
			return &literalPrefix{prefix: curNode.Str, caseInsensitive: curNode.Options&IgnoreCase != 0}

		case KindBol, KindEol, KindBoundary, KindNonboundary,
			KindECMABoundary, KindNonECMABoundary,
			KindBeginning, KindStart, KindEndZ, KindEnd,
			KindEmpty, KindRequire, KindPrevent:
			// zero-width, keep walking

		default:
			return nil
		}

		if concatNode == nil || nextChild >= len(concatNode.Children) {
			return nil
		}
		curNode = concatNode.Children[nextChild]
		nextChild++
	}
}

// fcState accumulates the first-character class during the walk. A lone
// parsed set blob is adopted as-is (this is what lets a leading negated set
// survive); further contributions force a merge, which only works on
// non-negated, subtraction-free blobs.
type fcState struct {
	builder *ClassBuilder
	adopted []rune
	ci      bool
}

func blobMergeable(set []rune) bool {
	if set[classFlags]&1 != 0 {
		return false
	}
	return len(set) == classSetStart+int(set[classSetLength])+int(set[classCategoryLength])
}

func (s *fcState) merge() bool {
	if s.adopted == nil {
		return true
	}
	if !blobMergeable(s.adopted) {
		return false
	}
	if s.builder == nil {
		s.builder = NewClassBuilder()
	}
	s.builder.AddClass(s.adopted)
	s.adopted = nil
	return true
}

func (s *fcState) addRange(lo, hi rune) bool {
	if !s.merge() {
		return false
	}
	if s.builder == nil {
		s.builder = NewClassBuilder()
	}
	s.builder.AddRange(lo, hi)
	return true
}

func (s *fcState) addSet(set []rune) bool {
	if s.builder == nil && s.adopted == nil {
		s.adopted = set
		return true
	}
	if !blobMergeable(set) || !s.merge() {
		return false
	}
	s.builder.AddClass(set)
	return true
}

// findFirstChars computes the class of chars that can begin a match, walking
// every node that could possibly match the first char. Returns nil when the
// walk hits something it cannot fold into one set.
func findFirstChars(root *Node) *firstChars {
	var state fcState
	if tryFirstChars(root, &state) != 1 {
		// a nullable pattern can begin with anything, including nothing
		return nil
	}
	var set []rune
	if state.adopted != nil {
		set = state.adopted
	} else if state.builder != nil {
		set = state.builder.Encode()
	} else {
		return nil
	}
	return &firstChars{set: set, caseInsensitive: state.ci}
}

// tryFirstChars returns 1 when node consumed the first char for certain
// (a stopping point), -1 when node is or may be zero-width so the walk must
// continue past it, and 0 on failure.
func tryFirstChars(node *Node, state *fcState) int {
	if node.Options&IgnoreCase != 0 {
		state.ci = true
	}

	switch node.Kind {
	case KindOne, KindOneloop, KindOnelazy, KindOnerep:
		if !state.addRange(node.Ch, node.Ch) {
			return 0
		}
		if node.Kind == KindOne || node.M > 0 {
			return 1
		}
		return -1

	case KindNotone, KindNotoneloop, KindNotonelazy, KindNotonerep:
		if node.Ch > 0 && !state.addRange(0, node.Ch-1) {
			return 0
		}
		if node.Ch < unicode.MaxRune && !state.addRange(node.Ch+1, unicode.MaxRune) {
			return 0
		}
		if node.Kind == KindNotone || node.M > 0 {
			return 1
		}
		return -1

	case KindSet, KindSetloop, KindSetlazy, KindSetrep:
		if !state.addSet(node.Set) {
			return 0
		}
		if node.Kind == KindSet || node.M > 0 {
			return 1
		}
		return -1

	case KindMulti:
		if len(node.Str) == 0 {
			return -1
		}
		ch := node.Str[0]
		if node.Options&RightToLeft != 0 {
			ch = node.Str[len(node.Str)-1]
		}
		if !state.addRange(ch, ch) {
			return 0
		}
		return 1

	case KindEmpty, KindNothing,
		KindBol, KindEol, KindBoundary, KindNonboundary,
		KindECMABoundary, KindNonECMABoundary,
		KindBeginning, KindStart, KindEndZ, KindEnd,
		KindRequire, KindPrevent:
		return -1

	case KindRef:
		// A backreference can begin with anything it captured.
		return 0

	case KindCapture, KindGroup, KindGreedy:
		return tryFirstChars(node.Children[0], state)

	case KindConcatenate:
		for _, child := range node.Children {
			switch tryFirstChars(child, state) {
			case 0:
				return 0
			case 1:
				return 1
			}
		}
		return -1

	case KindAlternate, KindTestref:
		stop := 1
		for _, child := range node.Children {
			switch tryFirstChars(child, state) {
			case 0:
				return 0
			case -1:
				stop = -1
			}
		}
		if node.Kind == KindTestref && len(node.Children) < 2 {
			// a conditional without a "no" branch may match empty
			stop = -1
		}
		return stop

	case KindLoop, KindLazyloop:
		if node.N == 0 {
			return -1
		}
		res := tryFirstChars(node.Children[0], state)
		if res == 0 {
			return 0
		}
		if node.M == 0 || res == -1 {
			return -1
		}
		return 1
	}

	return 0
}
