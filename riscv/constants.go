// Package riscv holds the bit-level constants of the RV32I base integer
// instruction set: opcodes, funct3/funct7 selectors, register aliases and
// the one syscall number the emulator recognizes.
package riscv

// Primary opcode field (instr[6:0]).
const (
	OpLoad     = 0x03 // LB, LH, LW, LBU, LHU
	OpStore    = 0x23 // SB, SH, SW
	OpBranch   = 0x63 // BEQ, BNE, BLT, BGE, BLTU, BGEU
	OpImm      = 0x13 // ADDI, SLTI, SLTIU, XORI, ORI, ANDI, SLLI, SRLI, SRAI
	OpReg      = 0x33 // ADD, SUB, SLL, SLT, SLTU, XOR, SRL, SRA, OR, AND
	OpLUI      = 0x37
	OpAUIPC    = 0x17
	OpJAL      = 0x6F
	OpJALR     = 0x67
	OpSystem   = 0x73 // ECALL, EBREAK, CSR*
	OpMiscMem  = 0x0F // FENCE, FENCE.I
)

// funct3 selectors shared by OpLoad/OpStore/OpBranch/OpImm/OpReg.
const (
	F3ADDI_ADD_SUB = 0x0
	F3SLLI_SLL     = 0x1
	F3SLTI_SLT     = 0x2
	F3SLTIU_SLTU   = 0x3
	F3XORI_XOR     = 0x4
	F3SRLI_SRAI_SR = 0x5
	F3ORI_OR       = 0x6
	F3ANDI_AND     = 0x7

	F3BEQ  = 0x0
	F3BNE  = 0x1
	F3BLT  = 0x4
	F3BGE  = 0x5
	F3BLTU = 0x6
	F3BGEU = 0x7

	F3LB  = 0x0
	F3LH  = 0x1
	F3LW  = 0x2
	F3LBU = 0x4
	F3LHU = 0x5

	F3SB = 0x0
	F3SH = 0x1
	F3SW = 0x2

	F3ECALL_EBREAK = 0x0
	F3FENCE        = 0x0
	F3FENCEI       = 0x1
)

// funct7 selectors distinguishing ADD/SUB and SRL/SRA within OpReg/OpImm.
const (
	F7Logical     = 0x00
	F7Alternate   = 0x20 // SUB, SRA, SRAI
)

// Register indices with their standard ABI names, used by the ecall
// handler and by debug dumps.
const (
	RegZero = 0  // x0, hardwired to 0
	RegRA   = 1  // x1, return address
	RegSP   = 2  // x2, stack pointer
	RegA0   = 10 // x10, first argument / return value
	RegA7   = 17 // x17, syscall number
)

// RegisterNames are the conventional ABI names for x0..x31, in order.
var RegisterNames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// SysExit is the only syscall number this emulator recognizes, matching the
// Linux riscv32 ABI's exit(2): a7 == SysExit halts the hart with the exit
// code taken from a0.
const SysExit = 93
