package asmtoken

// Closed, documented instruction and register sets used by the tokenizer and
// the shingle weighting scheme. These lists are illustrative of the source
// architectures but are pinned here so that normalization and weighting are
// reproducible across runs regardless of which architecture a snippet
// originated from.

// rareInstructions names mnemonics that, when every token of a shingle is
// drawn from this set, earn the shingle the maximum insertion weight (3).
// They are privilege-sensitive, timing, or vector-crypto instructions that
// are both distinctive and infrequent in ordinary code.
var rareInstructions = buildSet(
	"CPUID", "RDTSC", "RDTSCP", "RDMSR", "WRMSR", "VMCALL", "VMLAUNCH", "VMRESUME",
	"SYSCALL", "SYSENTER", "SYSEXIT", "XGETBV", "XSETBV",
	"AESENC", "AESDEC", "AESENCLAST", "AESDECLAST", "AESIMC", "AESKEYGENASSIST",
	"PCLMULQDQ", "MOVDQA", "MOVDQU", "VPXOR", "VMOVDQA", "VMOVDQU",
	"SHA256RNDS2", "SHA1RNDS4", "SHA256MSG1", "SHA256MSG2",
	"CLFLUSH", "CLFLUSHOPT", "CLWB", "MFENCE", "LFENCE", "SFENCE",
)

// commonInstructions names mnemonics ubiquitous enough across ordinary code
// that a shingle built entirely from them earns the minimum insertion
// weight (1).
var commonInstructions = buildSet(
	"MOV", "PUSH", "POP", "CALL", "RET", "JMP",
	"JE", "JNE", "JZ", "JNZ",
	"ADD", "SUB", "NOP", "LEA", "CMP", "TEST", "INC", "DEC",
)

// RareInstructions returns the closed set of mnemonics considered "rare" for
// shingle weighting, exposed for inspection.
func RareInstructions() map[string]struct{} { return cloneSet(rareInstructions) }

// CommonInstructions returns the closed set of mnemonics considered "common"
// for shingle weighting, exposed for inspection.
func CommonInstructions() map[string]struct{} { return cloneSet(commonInstructions) }

// IsRareInstruction reports whether tok names a rare mnemonic.
func IsRareInstruction(tok string) bool { _, ok := rareInstructions[tok]; return ok }

// IsCommonInstruction reports whether tok names a common mnemonic.
func IsCommonInstruction(tok string) bool { _, ok := commonInstructions[tok]; return ok }

// Branch mnemonic classification for the CFG extractor.

var unconditionalBranches = buildSet("JMP", "B", "BR", "J")

var conditionalBranches = buildSet(
	"JE", "JNE", "JZ", "JNZ", "JA", "JAE", "JB", "JBE", "JG", "JGE", "JL", "JLE",
	"JO", "JNO", "JS", "JNS", "JP", "JNP", "JCXZ", "JECXZ", "JRCXZ",
	"BEQ", "BNE", "BL", "BLE", "BGT", "BLT", "BGE", "BLEZ", "BGEZ", "BLTZ", "BGTZ",
	"BC", "BC1T", "BC1F", "CBZ", "CBNZ", "TBZ", "TBNZ",
)

var returnMnemonics = buildSet("RET", "RETQ", "RETN")

// IsUnconditionalBranch reports whether mnemonic m is an unconditional jump.
func IsUnconditionalBranch(m string) bool { _, ok := unconditionalBranches[m]; return ok }

// IsConditionalBranch reports whether mnemonic m is a conditional branch.
func IsConditionalBranch(m string) bool { _, ok := conditionalBranches[m]; return ok }

// IsReturn reports whether mnemonic m terminates a basic block with no
// successor edge. "JR $RA" is matched by the caller
// inspecting the two-token form; this set covers the single-mnemonic forms.
func IsReturn(m string) bool { _, ok := returnMnemonics[m]; return ok }

// register sets, unioned across x86, ARM/AArch64, MIPS, RISC-V. Deliberately closed rather than pattern-matched, so that e.g. a
// mnemonic is never misclassified as a register by accident.
var registers = buildSet(
	// x86 8/16/32/64-bit general purpose.
	"AL", "BL", "CL", "DL", "AH", "BH", "CH", "DH",
	"SIL", "DIL", "BPL", "SPL",
	"AX", "BX", "CX", "DX", "SI", "DI", "BP", "SP",
	"EAX", "EBX", "ECX", "EDX", "ESI", "EDI", "EBP", "ESP",
	"RAX", "RBX", "RCX", "RDX", "RSI", "RDI", "RBP", "RSP",
	"R8", "R9", "R10", "R11", "R12", "R13", "R14", "R15",
	"R8D", "R9D", "R10D", "R11D", "R12D", "R13D", "R14D", "R15D",
	"R8W", "R9W", "R10W", "R11W", "R12W", "R13W", "R14W", "R15W",
	"R8B", "R9B", "R10B", "R11B", "R12B", "R13B", "R14B", "R15B",
	"CS", "DS", "ES", "FS", "GS", "SS", "RIP", "EIP",
	"XMM0", "XMM1", "XMM2", "XMM3", "XMM4", "XMM5", "XMM6", "XMM7",
	"XMM8", "XMM9", "XMM10", "XMM11", "XMM12", "XMM13", "XMM14", "XMM15",
	"YMM0", "YMM1", "YMM2", "YMM3", "YMM4", "YMM5", "YMM6", "YMM7",

	// ARM/AArch64.
	"X0", "X1", "X2", "X3", "X4", "X5", "X6", "X7", "X8", "X9",
	"X10", "X11", "X12", "X13", "X14", "X15", "X16", "X17", "X18", "X19",
	"X20", "X21", "X22", "X23", "X24", "X25", "X26", "X27", "X28", "X29", "X30",
	"W0", "W1", "W2", "W3", "W4", "W5", "W6", "W7", "W8", "W9",
	"W10", "W11", "W12", "W13", "W14", "W15", "W16", "W17", "W18", "W19",
	"W20", "W21", "W22", "W23", "W24", "W25", "W26", "W27", "W28", "W29", "W30",
	"SP", "LR", "PC", "XZR", "WZR", "FP",
	"V0", "V1", "V2", "V3", "V4", "V5", "V6", "V7",

	// MIPS.
	"$ZERO", "$AT", "$V0", "$V1", "$A0", "$A1", "$A2", "$A3",
	"$T0", "$T1", "$T2", "$T3", "$T4", "$T5", "$T6", "$T7", "$T8", "$T9",
	"$S0", "$S1", "$S2", "$S3", "$S4", "$S5", "$S6", "$S7",
	"$K0", "$K1", "$GP", "$SP", "$FP", "$RA",
	"$F0", "$F1", "$F2", "$F3", "$F4", "$F5", "$F6", "$F7",

	// RISC-V.
	"ZERO", "RA", "GP", "TP", "T0", "T1", "T2", "T3", "T4", "T5", "T6",
	"S0", "S1", "S2", "S3", "S4", "S5", "S6", "S7", "S8", "S9", "S10", "S11",
	"A0", "A1", "A2", "A3", "A4", "A5", "A6", "A7",
	"FA0", "FA1", "FA2", "FA3", "FA4", "FA5", "FA6", "FA7",
	"FT0", "FT1", "FT2", "FT3", "FT4", "FT5", "FT6", "FT7", "FT8", "FT9", "FT10", "FT11",
	"FS0", "FS1", "FS2", "FS3", "FS4", "FS5", "FS6", "FS7", "FS8", "FS9", "FS10", "FS11",
)

// Registers returns the closed, architecture-unioned register set, exposed
// for inspection.
func Registers() map[string]struct{} { return cloneSet(registers) }

// IsRegister reports whether tok (already uppercased, '$' and leading
// punctuation preserved) names a register in the unioned closed set.
func IsRegister(tok string) bool { _, ok := registers[tok]; return ok }

var memSizeHints = buildSet("BYTE", "WORD", "DWORD", "QWORD", "PTR", "TBYTE", "XMMWORD", "YMMWORD")

// IsMemSizeHint reports whether tok is a memory-operand size keyword.
func IsMemSizeHint(tok string) bool { _, ok := memSizeHints[tok]; return ok }

func buildSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

func cloneSet(src map[string]struct{}) map[string]struct{} {
	dst := make(map[string]struct{}, len(src))
	for k := range src {
		dst[k] = struct{}{}
	}
	return dst
}
