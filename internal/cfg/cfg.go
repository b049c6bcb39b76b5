// Package cfg extracts an approximate control-flow graph — basic blocks
// derived from labels and branch mnemonics — from a token stream, and
// scores the structural similarity of two such graphs.
package cfg

import (
	"strings"

	"github.com/maci0/resembl/internal/asmtoken"
)

// Graph is the extracted basic-block control-flow graph.
type Graph struct {
	NumBlocks  int
	NumEdges   int
	BlockSizes []int
	Adj        [][]int // Adj[i] lists i's successor block indices.
}

type branchKind int

const (
	branchNone branchKind = iota
	branchUnconditional
	branchConditional
)

type pendingEdge struct {
	from   int
	kind   branchKind
	target string // uppercased label name, or "" if none/unresolved operand
	next   int    // prospective index of the block following this one
}

// Extract builds the CFG for code. The token stream is lexed with
// generalization off so label names and branch targets survive.
func Extract(code string) Graph {
	lines := strings.Split(code, "\n")

	var blocks []int // size (instruction count) of each finalized block
	labelToBlock := make(map[string]int)
	var pending []pendingEdge

	currentSize := 0
	closeCurrent := func() {
		if currentSize > 0 {
			blocks = append(blocks, currentSize)
			currentSize = 0
		}
	}

	handleInstruction := func(toks []asmtoken.Token) {
		mnemonic := toks[0].Text
		currentSize++

		if isReturn(toks) {
			closeCurrent()
			return
		}

		kind := classifyBranch(mnemonic)
		if kind == branchNone {
			return
		}

		target := findLabelTarget(toks[1:])
		fromIdx := len(blocks)
		closeCurrent()
		nextIdx := len(blocks)
		pending = append(pending, pendingEdge{from: fromIdx, kind: kind, target: target, next: nextIdx})
	}

	for _, line := range lines {
		toks := asmtoken.Tokenize(line, false)
		if len(toks) == 0 {
			continue
		}
		if isLabelDef(toks) {
			closeCurrent()
			labelToBlock[toks[0].Text] = len(blocks)
			rest := toks[2:]
			if len(rest) > 0 {
				handleInstruction(rest)
			}
			continue
		}
		handleInstruction(toks)
	}
	closeCurrent()

	adj := make([][]int, len(blocks))
	numEdges := 0
	addEdge := func(from, to int) {
		if to < 0 || to >= len(blocks) {
			return
		}
		adj[from] = append(adj[from], to)
		numEdges++
	}

	for _, e := range pending {
		resolved := false
		if e.target != "" {
			if tIdx, ok := labelToBlock[e.target]; ok && tIdx < len(blocks) {
				addEdge(e.from, tIdx)
				resolved = true
			}
		}
		switch e.kind {
		case branchUnconditional:
			if !resolved {
				addEdge(e.from, e.next)
			}
		case branchConditional:
			addEdge(e.from, e.next)
		}
	}

	return Graph{
		NumBlocks:  len(blocks),
		NumEdges:   numEdges,
		BlockSizes: blocks,
		Adj:        adj,
	}
}

func isLabelDef(toks []asmtoken.Token) bool {
	return len(toks) >= 2 && toks[0].Kind == asmtoken.KindLabel && toks[1].Kind == asmtoken.KindPunct && toks[1].Text == ":"
}

// isReturn reports whether the instruction at toks (mnemonic + operands)
// terminates its block with no successor: RET/RETQ/RETN, or "JR $RA".
func isReturn(toks []asmtoken.Token) bool {
	m := toks[0].Text
	if asmtoken.IsReturn(m) {
		return true
	}
	if m == "JR" && len(toks) >= 2 && toks[1].Kind == asmtoken.KindRegister && toks[1].Text == "$RA" {
		return true
	}
	return false
}

func classifyBranch(mnemonic string) branchKind {
	switch {
	case mnemonic == "JR":
		return branchUnconditional // indirect jump; target unresolved below
	case asmtoken.IsUnconditionalBranch(mnemonic):
		return branchUnconditional
	case asmtoken.IsConditionalBranch(mnemonic):
		return branchConditional
	default:
		return branchNone
	}
}

// findLabelTarget returns the first label-kind operand token's text, or ""
// if the instruction has no symbolic target (e.g. an indirect branch
// through a register).
func findLabelTarget(operands []asmtoken.Token) string {
	for _, t := range operands {
		if t.Kind == asmtoken.KindLabel {
			return t.Text
		}
	}
	return ""
}
