package recoil

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gotest.tools/v3/assert"
)

// walkCodes decodes the program into (pc, opcode) pairs.
func walkCodes(t *testing.T, p *Program) map[int]int {
	t.Helper()
	ops := map[int]int{}
	for pc := 0; pc < len(p.codes); {
		op := p.codes[pc]
		ops[pc] = op
		pc += opcodeSize(op)
	}
	return ops
}

func TestWriterDeterministic(t *testing.T) {
	build := func() *Tree {
		return &Tree{
			Root: cat(
				grp(1, alt(str("foo"), str("bar"))),
				setloop(wordSet(), 0, inf),
				backref(1),
			),
			CapTop: 2,
		}
	}
	p1 := mustCompile(t, build(), 0)
	p2 := mustCompile(t, build(), 0)

	assert.DeepEqual(t, p1.codes, p2.codes)
	assert.DeepEqual(t, p1.strings, p2.strings, cmp.Comparer(func(a, b []rune) bool {
		return string(a) == string(b)
	}))
	assert.Equal(t, p1.trackCount, p2.trackCount)
}

func TestWriterWrapperShape(t *testing.T) {
	p := mustCompile(t, &Tree{Root: chr('a'), CapTop: 1}, 0)

	// outer wrapper: Lazybranch aimed at the final Stop
	assert.Equal(t, p.codes[0]&opMask, opLazybranch)
	assert.Equal(t, p.codes[len(p.codes)-1]&opMask, opStop)
	assert.Equal(t, p.codes[1], len(p.codes)-1)
}

func TestWriterLoopLowering(t *testing.T) {
	// a{2,} lowers to an exact rep followed by an open loop
	tree := &Tree{Root: oneloop('a', 2, inf), CapTop: 1}
	p := mustCompile(t, tree, 0)

	ops := walkCodes(t, p)
	var sawRep, sawLoop bool
	for _, op := range ops {
		switch op & opMask {
		case opOnerep:
			sawRep = true
		case opOneloop:
			sawLoop = true
		}
	}
	assert.Assert(t, sawRep)
	assert.Assert(t, sawLoop)
}

func TestWriterStringPoolInterning(t *testing.T) {
	// the same literal used three times interns to one pool entry
	tree := &Tree{Root: cat(str("dup"), str("dup"), str("dup")), CapTop: 1}
	p := mustCompile(t, tree, 0)
	assert.Equal(t, len(p.strings), 1)
	assert.Equal(t, string(p.strings[0]), "dup")
}

func TestWriterSparseCaptureMapping(t *testing.T) {
	// source numbers {0, 3, 7} pack into slots {0, 1, 2}
	tree := &Tree{
		Root:       cat(grp(3, chr('a')), grp(7, chr('b')), backref(3)),
		Caps:       map[int]int{0: 0, 3: 1, 7: 2},
		CapNumList: []int{0, 3, 7},
		CapNames:   map[string]int{"x": 7},
	}
	p := mustCompile(t, tree, 0)
	assert.Equal(t, p.CaptureCount(), 3)

	// the Ref operand must use the dense slot
	var refOperand = -1
	for pc := 0; pc < len(p.codes); {
		op := p.codes[pc]
		if op&opMask == opRef {
			refOperand = p.codes[pc+1]
		}
		pc += opcodeSize(op)
	}
	assert.Equal(t, refOperand, 1)

	m := find(t, p, "aba")
	assertSpan(t, m, 0, 0, 3)
	assertSpan(t, m, 1, 0, 1)
	assertSpan(t, m, 2, 1, 1)
	assert.Equal(t, m.GroupByName("x"), 2)
}

func TestWriterTrackReservation(t *testing.T) {
	tree := &Tree{
		Root:   cat(loopgrp(0, inf, grp(1, alt(chr('a'), chr('b')))), chr('c')),
		CapTop: 2,
	}
	p := mustCompile(t, tree, 0)
	assert.Assert(t, p.trackCount > 0)

	// the reservation covers the deepest forward path: a long match must
	// run without the forward executor ever touching unreserved slots
	m := find(t, p, strings.Repeat("ab", 50)+"c")
	assertSpan(t, m, 0, 0, 101)
}

func TestProgramDump(t *testing.T) {
	tree := &Tree{Root: cat(grp(1, oneloop('a', 1, inf)), chr('b')), CapTop: 2}
	p := mustCompile(t, tree, 0)

	dump := p.Dump()
	for _, want := range []string{"Lazybranch", "Setmark", "Onerep", "Oneloop", "Capturemark", "Stop"} {
		assert.Assert(t, strings.Contains(dump, want), "dump missing %s:\n%s", want, dump)
	}
}
