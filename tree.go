package recoil

// The syntax tree is the writer's input. It is produced by a pattern parser
// that lives outside this module; the writer only walks it, so nodes carry no
// parse-time bookkeeping (no parent pointers, no grammar roles) and the tree
// is immutable once handed to Compile.

// Kind identifies a syntax-tree node.
//
// Leaf kinds below KindNothing share their numeric values with the opcodes
// they lower to, so the writer can emit them without a translation table.
// The same applies to the two ECMA boundary kinds.
type Kind int32

const (
	KindOnerep     Kind = 0 // char, count       a{n}
	KindNotonerep  Kind = 1 // char, count       [^a]{n}
	KindSetrep     Kind = 2 // set, count        [\d]{n}
	KindOneloop    Kind = 3 // char, min, max    a*
	KindNotoneloop Kind = 4 // char, min, max    [^a]*
	KindSetloop    Kind = 5 // set, min, max     [\d]*
	KindOnelazy    Kind = 6 // char, min, max    a*?
	KindNotonelazy Kind = 7 // char, min, max    [^a]*?
	KindSetlazy    Kind = 8 // set, min, max     [\d]*?

	KindOne    Kind = 9  // char              a
	KindNotone Kind = 10 // char              [^a]
	KindSet    Kind = 11 // set               [a-z\s]
	KindMulti  Kind = 12 // string            abcd
	KindRef    Kind = 13 // capture number    \1

	KindBol         Kind = 14 // ^
	KindEol         Kind = 15 // $
	KindBoundary    Kind = 16 // \b
	KindNonboundary Kind = 17 // \B
	KindBeginning   Kind = 18 // \A
	KindStart       Kind = 19 // \G
	KindEndZ        Kind = 20 // \Z
	KindEnd         Kind = 21 // \z

	KindNothing Kind = 22 // [] (matches nothing)
	KindEmpty   Kind = 23 // ()

	KindAlternate   Kind = 24 // a|b
	KindConcatenate Kind = 25 // ab
	KindLoop        Kind = 26 // min, max      (...)* (...)+ (...){m,n}
	KindLazyloop    Kind = 27 // min, max      (...)*? etc.
	KindCapture     Kind = 28 // M = capture number, N = uncapture number or -1
	KindGroup       Kind = 29 // (?:...)
	KindRequire     Kind = 30 // (?=...) (?<=...)
	KindPrevent     Kind = 31 // (?!...) (?<!...)
	KindGreedy      Kind = 32 // (?>...)
	KindTestref     Kind = 33 // (?(1)yes|no), M = capture number
	KindTestgroup   Kind = 34 // (?(exp)yes|no)

	KindECMABoundary    Kind = 41 // \b with the ASCII word set
	KindNonECMABoundary Kind = 42 // \B with the ASCII word set
)

// Tree is the parsed form of a pattern, plus the capture bookkeeping the
// parser accumulated. Caps is nil when the source capture numbers are already
// dense 0..CapTop-1; otherwise it maps each sparse source number to its dense
// slot and CapNumList holds the sorted source numbers.
type Tree struct {
	Root        *Node
	Caps        map[int]int
	CapNumList  []int
	CapTop      int
	CapNames    map[string]int
	CapNameList []string
	Options     Options
}

// Node is one syntax-tree node. Which payload fields are meaningful depends
// on Kind: Ch for the One/Notone family, Str for Multi, Set (a class blob,
// see charclass.go) for the Set family, M/N for loop bounds and capture
// numbers.
type Node struct {
	Kind     Kind
	Options  Options
	Children []*Node
	Ch       rune
	Str      []rune
	Set      []rune
	M        int
	N        int
}

func NewNode(kind Kind, opts Options) *Node {
	return &Node{Kind: kind, Options: opts}
}

func NewNodeCh(kind Kind, opts Options, ch rune) *Node {
	return &Node{Kind: kind, Options: opts, Ch: ch}
}

func NewNodeStr(kind Kind, opts Options, str []rune) *Node {
	return &Node{Kind: kind, Options: opts, Str: str}
}

func NewNodeSet(kind Kind, opts Options, set []rune) *Node {
	return &Node{Kind: kind, Options: opts, Set: set}
}

func NewNodeM(kind Kind, opts Options, m int) *Node {
	return &Node{Kind: kind, Options: opts, M: m}
}

func NewNodeMN(kind Kind, opts Options, m, n int) *Node {
	return &Node{Kind: kind, Options: opts, M: m, N: n}
}

func (n *Node) AddChild(child *Node) *Node {
	n.Children = append(n.Children, child)
	return n
}

func (n *Node) childCount() int {
	return len(n.Children)
}
