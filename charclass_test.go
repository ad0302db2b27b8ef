package recoil

import (
	"testing"
	"unicode"

	"github.com/google/go-cmp/cmp"
	"gotest.tools/v3/assert"
)

func TestCharInClassRanges(t *testing.T) {
	tests := []struct {
		name string
		add  func(b *ClassBuilder)
		in   []rune
		out  []rune
	}{
		{
			name: "single char",
			add:  func(b *ClassBuilder) { b.AddChar('x') },
			in:   []rune{'x'},
			out:  []rune{'w', 'y', 0, unicode.MaxRune},
		},
		{
			name: "range",
			add:  func(b *ClassBuilder) { b.AddRange('a', 'z') },
			in:   []rune{'a', 'm', 'z'},
			out:  []rune{'`', '{', 'A'},
		},
		{
			name: "two ranges",
			add:  func(b *ClassBuilder) { b.AddRange('a', 'f'); b.AddRange('p', 'z') },
			in:   []rune{'a', 'f', 'p', 'z'},
			out:  []rune{'g', 'o', '0'},
		},
		{
			name: "reversed endpoints",
			add:  func(b *ClassBuilder) { b.AddRange('z', 'a') },
			in:   []rune{'m'},
			out:  []rune{'0'},
		},
		{
			name: "open tail to MaxRune",
			add:  func(b *ClassBuilder) { b.AddRange(0x1000, unicode.MaxRune) },
			in:   []rune{0x1000, 0x10FFFF},
			out:  []rune{0xFFF, 'a'},
		},
		{
			name: "any",
			add:  func(b *ClassBuilder) { b.AddAny() },
			in:   []rune{0, 'a', unicode.MaxRune},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			b := NewClassBuilder()
			test.add(b)
			set := b.Encode()
			for _, ch := range test.in {
				assert.Assert(t, charInClass(ch, set), "%q should be in class", ch)
			}
			for _, ch := range test.out {
				assert.Assert(t, !charInClass(ch, set), "%q should not be in class", ch)
			}
		})
	}
}

func TestCharClassNegation(t *testing.T) {
	// without a subtrahend, negation must be an exact complement
	probe := []rune{0, 'a', 'b', 'n', 'z', '0', ' ', 0x4E00, unicode.MaxRune}

	build := func(negate bool) []rune {
		b := NewClassBuilder()
		b.AddRange('b', 'n')
		b.AddCategory("Nd", false)
		if negate {
			b.Negate()
		}
		return b.Encode()
	}
	plain := build(false)
	negated := build(true)
	for _, ch := range probe {
		assert.Equal(t, charInClass(ch, negated), !charInClass(ch, plain), "ch=%q", ch)
	}
}

func TestCharClassSubtraction(t *testing.T) {
	// [a-z-[m-p]]
	sub := NewClassBuilder()
	sub.AddRange('m', 'p')
	b := NewClassBuilder()
	b.AddRange('a', 'z')
	b.AddSubtraction(sub)
	set := b.Encode()

	for _, ch := range []rune{'a', 'l', 'q', 'z'} {
		assert.Assert(t, charInClass(ch, set), "ch=%q", ch)
	}
	for _, ch := range []rune{'m', 'n', 'p', '0'} {
		assert.Assert(t, !charInClass(ch, set), "ch=%q", ch)
	}
}

func TestNegationAppliesBeforeSubtraction(t *testing.T) {
	// [^a-c-[x]] : x is removed from the *negated* outer set
	sub := NewClassBuilder()
	sub.AddChar('x')
	b := NewClassBuilder()
	b.AddRange('a', 'c')
	b.Negate()
	b.AddSubtraction(sub)
	set := b.Encode()

	assert.Assert(t, charInClass('d', set))
	assert.Assert(t, !charInClass('a', set))
	assert.Assert(t, !charInClass('x', set))
}

func TestCharClassCategories(t *testing.T) {
	letters := NewClassBuilder()
	letters.AddCategory("L", false)
	set := letters.Encode()
	assert.Assert(t, charInClass('a', set))
	assert.Assert(t, charInClass('Я', set))
	assert.Assert(t, charInClass(0x4E00, set))
	assert.Assert(t, !charInClass('1', set))
	assert.Assert(t, !charInClass(' ', set))

	notDigits := NewClassBuilder()
	notDigits.AddDigit(false, true)
	set = notDigits.Encode()
	assert.Assert(t, charInClass('a', set))
	assert.Assert(t, !charInClass('7', set))
}

func TestWordSpaceDigitShortcuts(t *testing.T) {
	word := NewClassBuilder()
	word.AddWord(false, false)
	set := word.Encode()
	for _, ch := range []rune{'a', 'Z', '0', '_', 'ё'} {
		assert.Assert(t, charInClass(ch, set), "ch=%q", ch)
	}
	for _, ch := range []rune{' ', '-', '!'} {
		assert.Assert(t, !charInClass(ch, set), "ch=%q", ch)
	}

	ecmaWord := NewClassBuilder()
	ecmaWord.AddWord(true, false)
	set = ecmaWord.Encode()
	assert.Assert(t, charInClass('a', set))
	assert.Assert(t, !charInClass('ё', set))

	space := NewClassBuilder()
	space.AddSpace(false, false)
	set = space.Encode()
	assert.Assert(t, charInClass(' ', set))
	assert.Assert(t, charInClass('\t', set))
	assert.Assert(t, !charInClass('x', set))
}

func TestCanonicalizeIdempotent(t *testing.T) {
	// overlapping, abutting and out-of-order inserts collapse to one form
	b := NewClassBuilder()
	b.AddRange('m', 'p')
	b.AddRange('a', 'c')
	b.AddRange('b', 'n')
	b.AddChar('q')
	once := b.Encode()

	again := NewClassBuilder()
	again.AddClass(once)
	twice := again.Encode()

	assert.DeepEqual(t, once, twice)

	want := NewClassBuilder()
	want.AddRange('a', 'q')
	assert.DeepEqual(t, b, want, cmp.AllowUnexported(ClassBuilder{}, charRange{}))
}

func TestEncodeDeterministic(t *testing.T) {
	build := func() []rune {
		b := NewClassBuilder()
		b.AddRange('0', '9')
		b.AddCategory("Lu", false)
		b.AddChar('_')
		return b.Encode()
	}
	assert.DeepEqual(t, build(), build())
}

func TestAddLowercaseFoldsRanges(t *testing.T) {
	b := NewClassBuilder()
	b.AddRange('A', 'Z')
	b.AddLowercase()
	set := b.Encode()

	for _, ch := range []rune{'a', 'z', 'A', 'Z'} {
		assert.Assert(t, charInClass(ch, set), "ch=%q", ch)
	}

	// a single char is replaced by its lowercase image; the matcher folds
	// input, so equivalence is preserved
	single := NewClassBuilder()
	single.AddChar('Q')
	single.AddLowercase()
	set = single.Encode()
	assert.Assert(t, charInClass('q', set))
	assert.Assert(t, !charInClass('Q', set))

	greek := NewClassBuilder()
	greek.AddRange(0x391, 0x3AB) // Greek capitals
	greek.AddLowercase()
	set = greek.Encode()
	assert.Assert(t, charInClass('α', set))
	assert.Assert(t, charInClass('ω', set))
}

func TestWordCharPredicates(t *testing.T) {
	assert.Assert(t, isWordChar('a'))
	assert.Assert(t, isWordChar('0'))
	assert.Assert(t, isWordChar('_'))
	assert.Assert(t, isWordChar('ё'))
	assert.Assert(t, !isWordChar(' '))
	assert.Assert(t, !isWordChar('-'))

	assert.Assert(t, isECMAWordChar('a'))
	assert.Assert(t, !isECMAWordChar('ё'))
}
