package recoil

import (
	"strings"
	"testing"

	"gotest.tools/v3/assert"
)

func bmScanAll(b *boyerMoore, text string) []int {
	runes := []rune(text)
	var found []int
	pos := 0
	for {
		hit := b.scan(runes, pos, 0, len(runes))
		if hit == -1 {
			return found
		}
		found = append(found, hit)
		pos = hit + 1
	}
}

func TestBoyerMooreScan(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		text    string
		want    []int
	}{
		{"no match", "needle", "haystack haystack", nil},
		{"single hit", "stack", "haystack", []int{3}},
		{"repeated hits", "ana", "banana", []int{1, 3}},
		{"hit at start", "ab", "abab", []int{0, 2}},
		{"hit at end", "ck", "haystack", []int{6}},
		{"pattern equals text", "abc", "abc", []int{0}},
		{"single char pattern", "a", "banana", []int{1, 3, 5}},
		{"text shorter than pattern", "abcdef", "abc", nil},
		{"self-overlapping suffix", "aabaa", "aabaabaa", []int{0, 3}},
		{"unicode pattern", "héllo", "say héllo to héllo", []int{4, 13}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			b := newBoyerMoore([]rune(test.pattern), false, false)
			assert.DeepEqual(t, bmScanAll(b, test.text), test.want)
		})
	}
}

func TestBoyerMooreCaseInsensitive(t *testing.T) {
	// the needle arrives pre-lowercased; text chars fold during the scan
	b := newBoyerMoore([]rune("abc"), true, false)
	runes := []rune("xxABCyyabc")
	assert.Equal(t, b.scan(runes, 0, 0, len(runes)), 2)
	assert.Equal(t, b.scan(runes, 3, 0, len(runes)), 7)
}

func TestBoyerMooreRightToLeft(t *testing.T) {
	b := newBoyerMoore([]rune("ab"), false, true)
	runes := []rune("xxabyyab")

	// RTL scan returns the position one past the literal, i.e. where a
	// right-to-left matcher starts consuming it
	assert.Equal(t, b.scan(runes, len(runes), 0, len(runes)), 8)
	assert.Equal(t, b.scan(runes, 6, 0, len(runes)), 4)
	assert.Equal(t, b.scan(runes, 3, 0, len(runes)), -1)
}

func TestBoyerMooreWindow(t *testing.T) {
	b := newBoyerMoore([]rune("ab"), false, false)
	runes := []rune("ababab")
	assert.Equal(t, b.scan(runes, 0, 2, 5), 2)
	assert.Equal(t, b.scan(runes, 3, 2, 5), -1)
}

func TestBoyerMooreIsMatchAt(t *testing.T) {
	b := newBoyerMoore([]rune("abc"), false, false)
	runes := []rune("xabc")
	assert.Assert(t, b.isMatchAt(runes, 1, 0, len(runes)))
	assert.Assert(t, !b.isMatchAt(runes, 0, 0, len(runes)))
	assert.Assert(t, !b.isMatchAt(runes, 2, 0, len(runes)))

	rtl := newBoyerMoore([]rune("abc"), false, true)
	assert.Assert(t, rtl.isMatchAt(runes, 4, 0, len(runes)))
	assert.Assert(t, !rtl.isMatchAt(runes, 3, 0, len(runes)))
}

func TestBoyerMooreLongText(t *testing.T) {
	pattern := "GCAGAGAG"
	text := strings.Repeat("GCATCGCAGAGAGTATACAGTACG", 4)
	b := newBoyerMoore([]rune(pattern), false, false)
	assert.DeepEqual(t, bmScanAll(b, text), []int{5, 29, 53, 77})
}
