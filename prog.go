package recoil

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
)

// Opcodes. Leaf values match the tree kinds that lower to them (see tree.go).
const (
	opOnerep     = 0
	opNotonerep  = 1
	opSetrep     = 2
	opOneloop    = 3
	opNotoneloop = 4
	opSetloop    = 5
	opOnelazy    = 6
	opNotonelazy = 7
	opSetlazy    = 8

	opOne    = 9
	opNotone = 10
	opSet    = 11
	opMulti  = 12
	opRef    = 13

	opBol         = 14
	opEol         = 15
	opBoundary    = 16
	opNonboundary = 17
	opBeginning   = 18
	opStart       = 19
	opEndZ        = 20
	opEnd         = 21

	opNothing         = 22
	opLazybranch      = 23
	opBranchmark      = 24
	opLazybranchmark  = 25
	opNullcount       = 26
	opSetcount        = 27
	opBranchcount     = 28
	opLazybranchcount = 29
	opNullmark        = 30
	opSetmark         = 31
	opCapturemark     = 32
	opGetmark         = 33
	opSetjump         = 34
	opBackjump        = 35
	opForejump        = 36
	opTestref         = 37
	opGoto            = 38
	opStop            = 40

	opECMABoundary    = 41
	opNonECMABoundary = 42

	// Modifier bits OR-ed onto the primary code. opBack and opBack2 appear
	// only in backtracking notes, never in emitted code.
	opMask = 63
	opRtl  = 64
	opBack = 128
	// Second backtracking variant, for loop tails that must also undo the
	// loop-entry state once the body has been undone.
	opBack2 = 256
	opCi    = 512
)

// opcodeSize returns the instruction width in code slots, operands included.
func opcodeSize(op int) int {
	switch op & opMask {
	case opNothing, opBol, opEol, opBoundary, opNonboundary,
		opECMABoundary, opNonECMABoundary, opBeginning, opStart,
		opEndZ, opEnd, opNullmark, opSetmark, opGetmark,
		opSetjump, opBackjump, opForejump, opStop:
		return 1

	case opOne, opNotone, opSet, opMulti, opRef,
		opTestref, opGoto, opNullcount, opSetcount,
		opLazybranch, opBranchmark, opLazybranchmark:
		return 2

	case opOnerep, opNotonerep, opSetrep,
		opOneloop, opNotoneloop, opSetloop,
		opOnelazy, opNotonelazy, opSetlazy,
		opCapturemark, opBranchcount, opLazybranchcount:
		return 3
	}
	panic(newInternalError("unexpected opcode in opcodeSize: " + strconv.Itoa(op)))
}

// opcodeBacktracks reports whether the opcode counts toward the writer's
// track reservation: every opcode that may record a backtracking note, plus
// Goto and Backjump, which record none themselves.
func opcodeBacktracks(op int) bool {
	switch op & opMask {
	case opOneloop, opNotoneloop, opSetloop,
		opOnelazy, opNotonelazy, opSetlazy,
		opLazybranch, opBranchmark, opLazybranchmark,
		opNullcount, opSetcount, opBranchcount, opLazybranchcount,
		opSetmark, opCapturemark, opGetmark,
		opSetjump, opBackjump, opForejump, opGoto:
		return true
	}
	return false
}

// anchor bits, also produced by the prefix analyzer
const (
	anchorBeginning = 1 << iota // \A
	anchorStart                 // \G
	anchorEndZ                  // \Z
	anchorEnd                   // \z
	anchorBol
	anchorEol
	anchorBoundary
)

// literalPrefix is a required leading literal, used to seed a Boyer-Moore
// scanner.
type literalPrefix struct {
	prefix          []rune
	caseInsensitive bool
}

// firstChars is the set of chars legal at a match start, the fallback
// accelerator when no literal prefix exists.
type firstChars struct {
	set             []rune
	caseInsensitive bool
}

// Program is the immutable output of the writer. It is safely shared by any
// number of concurrent runners.
type Program struct {
	codes   []int
	strings [][]rune

	trackCount int

	caps     map[int]int
	capsize  int
	capNames map[string]int

	prefix  *boyerMoore
	fc      *firstChars
	anchors int

	options     Options
	rightToLeft bool
}

// CaptureCount returns the number of capture slots, the full match included.
func (p *Program) CaptureCount() int {
	return p.capsize
}

var opNames = []string{
	"Onerep", "Notonerep", "Setrep",
	"Oneloop", "Notoneloop", "Setloop",
	"Onelazy", "Notonelazy", "Setlazy",
	"One", "Notone", "Set", "Multi", "Ref",
	"Bol", "Eol", "Boundary", "Nonboundary",
	"Beginning", "Start", "EndZ", "End",
	"Nothing", "Lazybranch", "Branchmark", "Lazybranchmark",
	"Nullcount", "Setcount", "Branchcount", "Lazybranchcount",
	"Nullmark", "Setmark", "Capturemark", "Getmark",
	"Setjump", "Backjump", "Forejump", "Testref", "Goto",
	"Prune", "Stop",
	"ECMABoundary", "NonECMABoundary",
}

func operandDescription(op, operand int, strs [][]rune) string {
	switch op & opMask {
	case opOne, opNotone, opOnerep, opNotonerep,
		opOneloop, opNotoneloop, opOnelazy, opNotonelazy:
		return fmt.Sprintf("Ch = %q", rune(operand))
	case opSet, opSetrep, opSetloop, opSetlazy:
		return fmt.Sprintf("Set = #%d", operand)
	case opMulti:
		return fmt.Sprintf("String = %q", string(strs[operand]))
	case opRef, opTestref, opCapturemark:
		return "Slot = " + strconv.Itoa(operand)
	case opGoto, opLazybranch, opBranchmark, opLazybranchmark,
		opBranchcount, opLazybranchcount:
		return "Addr = " + strconv.Itoa(operand)
	}
	return strconv.Itoa(operand)
}

// Dump disassembles the program, one instruction per line.
func (p *Program) Dump() string {
	buf := &bytes.Buffer{}
	for pc := 0; pc < len(p.codes); {
		op := p.codes[pc]
		fmt.Fprintf(buf, "%4d: %s", pc, opNames[op&opMask])
		if op&opCi != 0 {
			buf.WriteString("-Ci")
		}
		if op&opRtl != 0 {
			buf.WriteString("-Rtl")
		}
		size := opcodeSize(op)
		if size > 1 {
			buf.WriteString("(")
			buf.WriteString(operandDescription(op, p.codes[pc+1], p.strings))
			if size > 2 {
				operand := p.codes[pc+2]
				if operand == math.MaxInt32 {
					buf.WriteString(", inf")
				} else {
					buf.WriteString(", " + strconv.Itoa(operand))
				}
			}
			buf.WriteString(")")
		}
		buf.WriteString("\n")
		pc += size
	}
	return buf.String()
}
