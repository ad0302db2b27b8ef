package recoil

import (
	"slices"
	"unicode"
)

// A character class is encoded as a self-delimited []rune blob:
//
//	[0]          flags, bit 0 = negate
//	[1]          number of slots in the range list
//	[2]          number of slots in the category list
//	[3:3+set]    sorted boundary list; a char is in the set iff the index of
//	             the first boundary greater than it is odd (relative to the
//	             list start). A trailing boundary of MaxRune+1 is omitted.
//	[...:...]    category list; k > 0 includes general category k-1, k < 0
//	             excludes category -k-1, ±spaceCode means any/no whitespace,
//	             0 opens a group of OR-joined categories closed by another 0.
//	[suffix]     optional subtrahend blob of identical shape; membership in
//	             the suffix removes the char from the outer set.
//
// The negate flag applies to the outer set only, never to the subtrahend.

const (
	classFlags          = 0
	classSetLength      = 1
	classCategoryLength = 2
	classSetStart       = 3

	spaceCode = 100
)

// Unicode general categories in blob encoding order. Index i is stored in a
// category list as i+1 (or -(i+1) to exclude). Cn has no range table; it is
// the fallback when no other category claims the char.
var categoryTables = []*unicode.RangeTable{
	unicode.Lu, unicode.Ll, unicode.Lt, unicode.Lm, unicode.Lo,
	unicode.Mn, unicode.Mc, unicode.Me,
	unicode.Nd, unicode.Nl, unicode.No,
	unicode.Zs, unicode.Zl, unicode.Zp,
	unicode.Cc, unicode.Cf, unicode.Cs, unicode.Co,
	unicode.Pc, unicode.Pd, unicode.Ps, unicode.Pe, unicode.Pi, unicode.Pf, unicode.Po,
	unicode.Sm, unicode.Sc, unicode.Sk, unicode.So,
	nil, // Cn
}

var categoryCodes = map[string]int{
	"Lu": 1, "Ll": 2, "Lt": 3, "Lm": 4, "Lo": 5,
	"Mn": 6, "Mc": 7, "Me": 8,
	"Nd": 9, "Nl": 10, "No": 11,
	"Zs": 12, "Zl": 13, "Zp": 14,
	"Cc": 15, "Cf": 16, "Cs": 17, "Co": 18,
	"Pc": 19, "Pd": 20, "Ps": 21, "Pe": 22, "Pi": 23, "Pf": 24, "Po": 25,
	"Sm": 26, "Sc": 27, "Sk": 28, "So": 29,
	"Cn": 30,
}

// One-letter groups expand to a 0-delimited OR group of their members.
var categoryGroups = map[string][]int{
	"L": {1, 2, 3, 4, 5},
	"M": {6, 7, 8},
	"N": {9, 10, 11},
	"Z": {12, 13, 14},
	"C": {15, 16, 17, 18, 30},
	"P": {19, 20, 21, 22, 23, 24, 25},
	"S": {26, 27, 28, 29},
}

var wordGroup = []int{1, 2, 3, 4, 5, 6, 9, 19} // Lu Ll Lt Lm Lo Mn Nd Pc

// lowerRune is the match-time case fold, the same invariant mapping the
// builder's AddLowercase works from.
func lowerRune(ch rune) rune {
	return unicode.ToLower(ch)
}

func charCategory(ch rune) int {
	for i, table := range categoryTables {
		if table != nil && unicode.Is(table, ch) {
			return i
		}
	}
	return len(categoryTables) - 1 // Cn
}

// isWordChar reports whether ch belongs to the matcher's word-character set:
// letters, decimal digits, connector punctuation, Mn, and the two zero-width
// joiners.
func isWordChar(ch rune) bool {
	if ch == '\u200c' || ch == '\u200d' {
		return true
	}
	switch charCategory(ch) {
	case 0, 1, 2, 3, 4, 5, 8, 18: // Lu Ll Lt Lm Lo Mn Nd Pc
		return true
	}
	return false
}

func isECMAWordChar(ch rune) bool {
	return ch >= '0' && ch <= '9' ||
		ch >= 'A' && ch <= 'Z' ||
		ch >= 'a' && ch <= 'z' ||
		ch == '_'
}

type charRange struct {
	lo rune
	hi rune
}

// ClassBuilder accumulates a character class and serialises it with Encode.
// The range list is kept in "canonical" form (sorted, non-overlapping,
// abutting ranges merged) opportunistically; appends that break the order
// clear the flag and canonicalisation happens on Encode.
type ClassBuilder struct {
	ranges     []charRange
	categories []rune
	canonical  bool
	negate     bool
	sub        *ClassBuilder
}

func NewClassBuilder() *ClassBuilder {
	return &ClassBuilder{canonical: true}
}

func (b *ClassBuilder) addRange(lo, hi rune) {
	if len(b.ranges) > 0 {
		last := b.ranges[len(b.ranges)-1]
		if b.canonical && lo >= last.lo {
			if lo <= last.hi+1 {
				if hi > last.hi {
					b.ranges[len(b.ranges)-1].hi = hi
				}
				return
			}
		} else {
			b.canonical = false
		}
	}
	b.ranges = append(b.ranges, charRange{lo: lo, hi: hi})
}

func (b *ClassBuilder) AddChar(ch rune) {
	b.AddRange(ch, ch)
}

func (b *ClassBuilder) AddRange(lo, hi rune) {
	if lo > hi {
		lo, hi = hi, lo
	}
	b.addRange(lo, hi)
}

// AddAny makes the class match every scalar.
func (b *ClassBuilder) AddAny() {
	b.addRange(0, unicode.MaxRune)
}

// AddCategory adds a Unicode general category or one-letter group by name.
// Unknown names are ignored; the parser is responsible for validating the
// enumerated property list before it reaches the builder.
func (b *ClassBuilder) AddCategory(name string, negate bool) {
	if group, ok := categoryGroups[name]; ok {
		b.addCategoryGroup(group, negate)
		return
	}
	if code, ok := categoryCodes[name]; ok {
		if negate {
			code = -code
		}
		b.categories = append(b.categories, rune(code))
	}
}

func (b *ClassBuilder) addCategoryGroup(group []int, negate bool) {
	b.categories = append(b.categories, 0)
	for _, code := range group {
		if negate {
			code = -code
		}
		b.categories = append(b.categories, rune(code))
	}
	b.categories = append(b.categories, 0)
}

// AddDigit, AddSpace and AddWord install the \d, \s and \w shortcuts, using
// the ASCII interpretation when ecma is set.
func (b *ClassBuilder) AddDigit(ecma, negate bool) {
	if ecma {
		if negate {
			b.addRange(0, '0'-1)
			b.addRange('9'+1, unicode.MaxRune)
		} else {
			b.addRange('0', '9')
		}
		return
	}
	code := rune(categoryCodes["Nd"])
	if negate {
		code = -code
	}
	b.categories = append(b.categories, code)
}

func (b *ClassBuilder) AddSpace(ecma, negate bool) {
	if ecma {
		if negate {
			b.addRange(0, '\t'-1)
			b.addRange('\r'+1, ' '-1)
			b.addRange(' '+1, unicode.MaxRune)
		} else {
			b.addRange('\t', '\r')
			b.addRange(' ', ' ')
		}
		return
	}
	if negate {
		b.categories = append(b.categories, -spaceCode)
	} else {
		b.categories = append(b.categories, spaceCode)
	}
}

func (b *ClassBuilder) AddWord(ecma, negate bool) {
	if ecma {
		if negate {
			b.addRange(0, '0'-1)
			b.addRange('9'+1, 'A'-1)
			b.addRange('Z'+1, '_'-1)
			b.addRange('_'+1, 'a'-1)
			b.addRange('z'+1, unicode.MaxRune)
		} else {
			b.addRange('0', '9')
			b.addRange('A', 'Z')
			b.addRange('_', '_')
			b.addRange('a', 'z')
		}
		return
	}
	b.addCategoryGroup(wordGroup, negate)
}

// AddClass merges a non-negated, subtraction-free blob into the builder.
func (b *ClassBuilder) AddClass(set []rune) {
	setLen := int(set[classSetLength])
	i := classSetStart
	end := i + setLen
	for i < end {
		lo := set[i]
		hi := rune(unicode.MaxRune)
		if i+1 < end {
			hi = set[i+1] - 1
		}
		b.addRange(lo, hi)
		i += 2
	}
	b.categories = append(b.categories, set[end:end+int(set[classCategoryLength])]...)
}

func (b *ClassBuilder) AddSubtraction(sub *ClassBuilder) {
	b.sub = sub
}

func (b *ClassBuilder) Negate() {
	b.negate = !b.negate
}

func (b *ClassBuilder) canonicalize() {
	if b.canonical {
		return
	}
	slices.SortFunc(b.ranges, func(a, c charRange) int {
		if a.lo != c.lo {
			if a.lo < c.lo {
				return -1
			}
			return 1
		}
		return 0
	})
	j := 0
	for i := 1; i < len(b.ranges); i++ {
		next := b.ranges[i]
		if next.lo <= b.ranges[j].hi+1 {
			if next.hi > b.ranges[j].hi {
				b.ranges[j].hi = next.hi
			}
			continue
		}
		j++
		b.ranges[j] = next
	}
	if len(b.ranges) > 0 {
		b.ranges = b.ranges[:j+1]
	}
	b.canonical = true
}

// Encode serialises the accumulated class into its blob form.
func (b *ClassBuilder) Encode() []rune {
	b.canonicalize()

	setLen := 0
	for _, r := range b.ranges {
		setLen += 2
		if r.hi == unicode.MaxRune {
			setLen--
		}
	}

	blob := make([]rune, 0, classSetStart+setLen+len(b.categories))
	var flags rune
	if b.negate {
		flags = 1
	}
	blob = append(blob, flags, rune(setLen), rune(len(b.categories)))
	for _, r := range b.ranges {
		blob = append(blob, r.lo)
		if r.hi != unicode.MaxRune {
			blob = append(blob, r.hi+1)
		}
	}
	blob = append(blob, b.categories...)
	if b.sub != nil {
		blob = append(blob, b.sub.Encode()...)
	}
	return blob
}

// charInClass answers membership of ch in an encoded class blob.
func charInClass(ch rune, set []rune) bool {
	return charInClassRecursive(ch, set, 0)
}

func charInClassRecursive(ch rune, set []rune, start int) bool {
	setLen := int(set[start+classSetLength])
	catLen := int(set[start+classCategoryLength])
	endPos := start + classSetStart + setLen + catLen

	subtracted := false
	if len(set) > endPos {
		subtracted = charInClassRecursive(ch, set, endPos)
	}

	in := charInClassInternal(ch, set, start, setLen, catLen)

	// Negation applies before the subtraction.
	if set[start+classFlags]&1 != 0 {
		in = !in
	}
	return in && !subtracted
}

func charInClassInternal(ch rune, set []rune, start, setLen, catLen int) bool {
	lo := start + classSetStart
	hi := lo + setLen
	for lo != hi {
		mid := (lo + hi) / 2
		if ch < set[mid] {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	// The parity of the insertion point relative to the list start decides
	// membership via the range portion.
	if (lo-start-classSetStart)&1 == 1 {
		return true
	}
	if catLen == 0 {
		return false
	}
	return charInCategory(ch, set, start, setLen, catLen)
}

func charInCategory(ch rune, set []rune, start, setLen, catLen int) bool {
	category := charCategory(ch)
	i := start + classSetStart + setLen
	end := i + catLen
	for i < end {
		cur := int(int32(set[i]))
		if cur == 0 {
			if charInCategoryGroup(category, set, &i) {
				return true
			}
		} else if cur > 0 {
			if cur == spaceCode {
				if unicode.IsSpace(ch) {
					return true
				}
			} else if category == cur-1 {
				return true
			}
		} else {
			if cur == -spaceCode {
				if !unicode.IsSpace(ch) {
					return true
				}
			} else if category != -1-cur {
				return true
			}
		}
		i++
	}
	return false
}

func charInCategoryGroup(category int, set []rune, i *int) bool {
	*i++
	cur := int(int32(set[*i]))
	if cur > 0 {
		// Positive group: in ANY of the member categories.
		in := false
		for cur != 0 {
			if !in && category == cur-1 {
				in = true
			}
			*i++
			cur = int(int32(set[*i]))
		}
		return in
	}
	// Negative group: in NONE of the member categories.
	in := true
	for cur != 0 {
		if in && category == -1-cur {
			in = false
		}
		*i++
		cur = int(int32(set[*i]))
	}
	return in
}

// Lowercase mapping rules. Unicode partitions into intervals on which the
// lowercase image is computable by one of four shapes.
const (
	lcSet = iota // constant
	lcAdd        // add offset
	lcBor        // or with 1
	lcBad        // bump odd up: ch += ch & 1
)

type lcMapping struct {
	chMin rune
	chMax rune
	op    int
	data  rune
}

var lcTable = []lcMapping{
	{0x0041, 0x005A, lcAdd, 32},
	{0x00C0, 0x00DE, lcAdd, 32},
	{0x0100, 0x012E, lcBor, 0},
	{0x0130, 0x0130, lcSet, 0x0069},
	{0x0132, 0x0136, lcBor, 0},
	{0x0139, 0x0147, lcBad, 0},
	{0x014A, 0x0176, lcBor, 0},
	{0x0178, 0x0178, lcSet, 0x00FF},
	{0x0179, 0x017D, lcBad, 0},
	{0x0181, 0x0181, lcSet, 0x0253},
	{0x0182, 0x0184, lcBor, 0},
	{0x0186, 0x0186, lcSet, 0x0254},
	{0x0187, 0x0187, lcSet, 0x0188},
	{0x0189, 0x018A, lcAdd, 205},
	{0x018B, 0x018B, lcSet, 0x018C},
	{0x0190, 0x0190, lcSet, 0x025B},
	{0x0191, 0x0191, lcSet, 0x0192},
	{0x0193, 0x0193, lcSet, 0x0260},
	{0x0194, 0x0194, lcSet, 0x0263},
	{0x0196, 0x0196, lcSet, 0x0269},
	{0x0197, 0x0197, lcSet, 0x0268},
	{0x0198, 0x0198, lcSet, 0x0199},
	{0x01A0, 0x01A4, lcBor, 0},
	{0x01A7, 0x01A7, lcSet, 0x01A8},
	{0x01A9, 0x01A9, lcSet, 0x0283},
	{0x01AC, 0x01AC, lcSet, 0x01AD},
	{0x01AE, 0x01AE, lcSet, 0x0288},
	{0x01AF, 0x01AF, lcSet, 0x01B0},
	{0x01B1, 0x01B2, lcAdd, 217},
	{0x01B3, 0x01B5, lcBad, 0},
	{0x01B7, 0x01B7, lcSet, 0x0292},
	{0x01B8, 0x01B8, lcSet, 0x01B9},
	{0x01BC, 0x01BC, lcSet, 0x01BD},
	{0x01C4, 0x01C4, lcSet, 0x01C6},
	{0x01C7, 0x01C7, lcSet, 0x01C9},
	{0x01CA, 0x01CA, lcSet, 0x01CC},
	{0x01CD, 0x01DB, lcBad, 0},
	{0x01DE, 0x01EE, lcBor, 0},
	{0x01F1, 0x01F1, lcSet, 0x01F3},
	{0x01F4, 0x01F4, lcSet, 0x01F5},
	{0x01FA, 0x0216, lcBor, 0},
	{0x0386, 0x0386, lcSet, 0x03AC},
	{0x0388, 0x038A, lcAdd, 37},
	{0x038C, 0x038C, lcSet, 0x03CC},
	{0x038E, 0x038F, lcAdd, 63},
	{0x0391, 0x03AB, lcAdd, 32},
	{0x03E2, 0x03EE, lcBor, 0},
	{0x0400, 0x040F, lcAdd, 80},
	{0x0410, 0x042F, lcAdd, 32},
	{0x0460, 0x0480, lcBor, 0},
	{0x0490, 0x04BE, lcBor, 0},
	{0x04C1, 0x04C3, lcBad, 0},
	{0x04C7, 0x04C7, lcSet, 0x04C8},
	{0x04CB, 0x04CB, lcSet, 0x04CC},
	{0x04D0, 0x04EA, lcBor, 0},
	{0x04EE, 0x04F4, lcBor, 0},
	{0x04F8, 0x04F8, lcSet, 0x04F9},
	{0x0531, 0x0556, lcAdd, 48},
	{0x10A0, 0x10C5, lcAdd, 48},
	{0x1E00, 0x1EF8, lcBor, 0},
	{0x1F08, 0x1F0F, lcAdd, -8},
	{0x1F18, 0x1F1D, lcAdd, -8},
	{0x1F28, 0x1F2F, lcAdd, -8},
	{0x1F38, 0x1F3F, lcAdd, -8},
	{0x1F48, 0x1F4D, lcAdd, -8},
	{0x1F59, 0x1F5F, lcBor, 0},
	{0x1F68, 0x1F6F, lcAdd, -8},
	{0x1F88, 0x1F8F, lcAdd, -8},
	{0x1F98, 0x1F9F, lcAdd, -8},
	{0x1FA8, 0x1FAF, lcAdd, -8},
	{0x1FB8, 0x1FB9, lcAdd, -8},
	{0x1FBA, 0x1FBB, lcAdd, -74},
	{0x1FC8, 0x1FCB, lcAdd, -86},
	{0x1FD8, 0x1FD9, lcAdd, -8},
	{0x1FDA, 0x1FDB, lcAdd, -100},
	{0x1FE8, 0x1FE9, lcAdd, -8},
	{0x1FEA, 0x1FEB, lcAdd, -112},
	{0x1FF8, 0x1FF9, lcAdd, -128},
	{0x1FFA, 0x1FFB, lcAdd, -126},
	{0x2160, 0x216F, lcAdd, 16},
	{0x24B6, 0x24CF, lcAdd, 26},
	{0xFF21, 0xFF3A, lcAdd, 32},
}

// AddLowercase folds the accumulated ranges: single chars are replaced by
// their lowercase image, wider ranges gain the image of every interval the
// mapping table intersects. The matcher lowercases input chars under the
// same mapping, so replaced singles stay equivalent.
func (b *ClassBuilder) AddLowercase() {
	b.canonicalize()
	for i, n := 0, len(b.ranges); i < n; i++ {
		r := b.ranges[i]
		if r.lo == r.hi {
			lo := unicode.ToLower(r.lo)
			b.ranges[i] = charRange{lo: lo, hi: lo}
		} else {
			b.addLowercaseRange(r.lo, r.hi)
		}
	}
	b.canonical = false
}

func (b *ClassBuilder) addLowercaseRange(chMin, chMax rune) {
	lo, hi := 0, len(lcTable)
	for lo < hi {
		mid := (lo + hi) / 2
		if lcTable[mid].chMax < chMin {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	for ; lo < len(lcTable) && lcTable[lo].chMin <= chMax; lo++ {
		lc := lcTable[lo]
		loT, hiT := lc.chMin, lc.chMax
		if loT < chMin {
			loT = chMin
		}
		if hiT > chMax {
			hiT = chMax
		}
		switch lc.op {
		case lcSet:
			loT, hiT = lc.data, lc.data
		case lcAdd:
			loT += lc.data
			hiT += lc.data
		case lcBor:
			loT |= 1
			hiT |= 1
		case lcBad:
			loT += loT & 1
			hiT += hiT & 1
		}
		if loT < chMin || hiT > chMax {
			b.ranges = append(b.ranges, charRange{lo: loT, hi: hiT})
		}
	}
}
