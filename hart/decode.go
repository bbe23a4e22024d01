package hart

import "github.com/rv32hart/ruscv/riscv"

// Mnemonic tags a decoded Instruction with the exact operation it
// represents. Decode always resolves an instruction word down to one of
// these concrete tags (or fails outright); execution never re-inspects the
// raw opcode/funct3/funct7 fields.
type Mnemonic uint8

const (
	mnemonicInvalid Mnemonic = iota

	ADDI
	SLTI
	SLTIU
	XORI
	ORI
	ANDI
	SLLI
	SRLI
	SRAI

	ADD
	SUB
	SLL
	SLT
	SLTU
	XOR
	SRL
	SRA
	OR
	AND

	LUI
	AUIPC

	JAL
	JALR

	BEQ
	BNE
	BLT
	BGE
	BLTU
	BGEU

	LB
	LH
	LW
	LBU
	LHU

	SB
	SH
	SW

	ECALL
	EBREAK
	FENCE
)

var mnemonicNames = map[Mnemonic]string{
	ADDI: "addi", SLTI: "slti", SLTIU: "sltiu", XORI: "xori", ORI: "ori", ANDI: "andi",
	SLLI: "slli", SRLI: "srli", SRAI: "srai",
	ADD: "add", SUB: "sub", SLL: "sll", SLT: "slt", SLTU: "sltu", XOR: "xor",
	SRL: "srl", SRA: "sra", OR: "or", AND: "and",
	LUI: "lui", AUIPC: "auipc",
	JAL: "jal", JALR: "jalr",
	BEQ: "beq", BNE: "bne", BLT: "blt", BGE: "bge", BLTU: "bltu", BGEU: "bgeu",
	LB: "lb", LH: "lh", LW: "lw", LBU: "lbu", LHU: "lhu",
	SB: "sb", SH: "sh", SW: "sw",
	ECALL: "ecall", EBREAK: "ebreak", FENCE: "fence",
}

func (m Mnemonic) String() string {
	if name, ok := mnemonicNames[m]; ok {
		return name
	}
	return "invalid"
}

// Instruction is the decoder's single output type: every RV32I instruction,
// regardless of its wire format, decodes into one of these records. Fields
// that don't apply to a given Mnemonic are left zero.
type Instruction struct {
	Mnemonic Mnemonic
	Rd       uint32
	Rs1      uint32
	Rs2      uint32
	Imm      int32 // already sign-extended; execute never re-extends it
}

// field extraction, shared across all six formats.
func opcode(inst uint32) uint32 { return inst & 0x7F }
func rd(inst uint32) uint32     { return (inst >> 7) & 0x1F }
func funct3(inst uint32) uint32 { return (inst >> 12) & 0x7 }
func rs1(inst uint32) uint32    { return (inst >> 15) & 0x1F }
func rs2(inst uint32) uint32    { return (inst >> 20) & 0x1F }
func funct7(inst uint32) uint32 { return (inst >> 25) & 0x7F }

// signExtend sign-extends the low (bit+1) bits of v, treating bit `bit` as
// the sign bit, the same helper the teacher's fast package applies per
// immediate format before any execute arm sees the value.
func signExtend(v uint32, bit uint) int32 {
	shift := 31 - bit
	return int32(v<<shift) >> shift
}

func immTypeI(inst uint32) int32 {
	return signExtend(inst>>20, 11)
}

func immTypeS(inst uint32) int32 {
	v := ((inst >> 25) << 5) | ((inst >> 7) & 0x1F)
	return signExtend(v, 11)
}

func immTypeB(inst uint32) int32 {
	v := (((inst >> 31) & 0x1) << 12) |
		(((inst >> 7) & 0x1) << 11) |
		(((inst >> 25) & 0x3F) << 5) |
		(((inst >> 8) & 0xF) << 1)
	return signExtend(v, 12)
}

func immTypeU(inst uint32) int32 {
	return int32(inst & 0xFFFFF000)
}

func immTypeJ(inst uint32) int32 {
	v := (((inst >> 31) & 0x1) << 20) |
		(((inst >> 12) & 0xFF) << 12) |
		(((inst >> 20) & 0x1) << 11) |
		(((inst >> 21) & 0x3FF) << 1)
	return signExtend(v, 20)
}

// Decode maps a 32-bit instruction word to an Instruction, or fails with
// IllegalInstruction if the opcode, funct3/funct7 combination, or
// shift-immediate encoding is not one this emulator recognizes. Decode has
// no side effects: it neither reads nor writes Hart state, and two calls on
// the same word always return equal results.
func Decode(inst uint32) (Instruction, error) {
	op := opcode(inst)
	f3 := funct3(inst)
	f7 := funct7(inst)

	switch op {
	case riscv.OpImm:
		imm := immTypeI(inst)
		mnemonic, err := decodeOpImm(f3, f7, imm)
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Mnemonic: mnemonic, Rd: rd(inst), Rs1: rs1(inst), Imm: imm}, nil

	case riscv.OpReg:
		mnemonic, err := decodeOpReg(f3, f7)
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Mnemonic: mnemonic, Rd: rd(inst), Rs1: rs1(inst), Rs2: rs2(inst)}, nil

	case riscv.OpLUI:
		return Instruction{Mnemonic: LUI, Rd: rd(inst), Imm: immTypeU(inst)}, nil

	case riscv.OpAUIPC:
		return Instruction{Mnemonic: AUIPC, Rd: rd(inst), Imm: immTypeU(inst)}, nil

	case riscv.OpJAL:
		return Instruction{Mnemonic: JAL, Rd: rd(inst), Imm: immTypeJ(inst)}, nil

	case riscv.OpJALR:
		if f3 != 0 {
			return Instruction{}, errIllegal(inst, "JALR requires funct3 == 0")
		}
		return Instruction{Mnemonic: JALR, Rd: rd(inst), Rs1: rs1(inst), Imm: immTypeI(inst)}, nil

	case riscv.OpBranch:
		mnemonic, err := decodeBranch(f3)
		if err != nil {
			return Instruction{}, errIllegal(inst, err.Error())
		}
		return Instruction{Mnemonic: mnemonic, Rs1: rs1(inst), Rs2: rs2(inst), Imm: immTypeB(inst)}, nil

	case riscv.OpLoad:
		mnemonic, err := decodeLoad(f3)
		if err != nil {
			return Instruction{}, errIllegal(inst, err.Error())
		}
		return Instruction{Mnemonic: mnemonic, Rd: rd(inst), Rs1: rs1(inst), Imm: immTypeI(inst)}, nil

	case riscv.OpStore:
		mnemonic, err := decodeStore(f3)
		if err != nil {
			return Instruction{}, errIllegal(inst, err.Error())
		}
		return Instruction{Mnemonic: mnemonic, Rs1: rs1(inst), Rs2: rs2(inst), Imm: immTypeS(inst)}, nil

	case riscv.OpSystem:
		if f3 != riscv.F3ECALL_EBREAK {
			// CSR instructions (CSRRW/CSRRS/CSRRC and the *I variants) are
			// out of scope: RV32I needs no CSRs besides what ecall uses.
			return Instruction{}, errIllegal(inst, "CSR instructions are not supported")
		}
		switch immTypeI(inst) {
		case 0:
			return Instruction{Mnemonic: ECALL}, nil
		case 1:
			return Instruction{Mnemonic: EBREAK}, nil
		default:
			return Instruction{}, errIllegal(inst, "unrecognized SYSTEM immediate")
		}

	case riscv.OpMiscMem:
		if f3 != riscv.F3FENCE {
			// fence.i (funct3 == 1) has no effect to emulate without an
			// instruction cache, but it's still a distinct encoding this
			// emulator chooses not to special-case; see DESIGN.md.
			return Instruction{}, errIllegal(inst, "fence.i is not supported")
		}
		return Instruction{Mnemonic: FENCE}, nil

	default:
		return Instruction{}, errIllegal(inst, "unrecognized opcode")
	}
}

func decodeOpImm(f3, f7 uint32, imm int32) (Mnemonic, error) {
	switch f3 {
	case riscv.F3ADDI_ADD_SUB:
		return ADDI, nil
	case riscv.F3SLTI_SLT:
		return SLTI, nil
	case riscv.F3SLTIU_SLTU:
		return SLTIU, nil
	case riscv.F3XORI_XOR:
		return XORI, nil
	case riscv.F3ORI_OR:
		return ORI, nil
	case riscv.F3ANDI_AND:
		return ANDI, nil
	case riscv.F3SLLI_SLL:
		if shamtHigh(imm) != 0 {
			return 0, errShamt(imm)
		}
		return SLLI, nil
	case riscv.F3SRLI_SRAI_SR:
		switch shamtHigh(imm) {
		case riscv.F7Logical:
			return SRLI, nil
		case riscv.F7Alternate:
			return SRAI, nil
		default:
			return 0, errShamt(imm)
		}
	default:
		return 0, errf("unrecognized OP-IMM funct3 %#x", f3)
	}
}

// shamtHigh returns the bits of a shift-immediate above the 5-bit shift
// amount itself; non-zero here means a reserved encoding (IllegalInstruction
// per §4.2) for SLLI, or identifies SRLI vs SRAI for the shift-right forms.
func shamtHigh(imm int32) uint32 {
	return uint32(imm) >> 5
}

func decodeOpReg(f3, f7 uint32) (Mnemonic, error) {
	switch f3 {
	case riscv.F3ADDI_ADD_SUB:
		switch f7 {
		case riscv.F7Logical:
			return ADD, nil
		case riscv.F7Alternate:
			return SUB, nil
		}
	case riscv.F3SLLI_SLL:
		if f7 == riscv.F7Logical {
			return SLL, nil
		}
	case riscv.F3SLTI_SLT:
		if f7 == riscv.F7Logical {
			return SLT, nil
		}
	case riscv.F3SLTIU_SLTU:
		if f7 == riscv.F7Logical {
			return SLTU, nil
		}
	case riscv.F3XORI_XOR:
		if f7 == riscv.F7Logical {
			return XOR, nil
		}
	case riscv.F3SRLI_SRAI_SR:
		switch f7 {
		case riscv.F7Logical:
			return SRL, nil
		case riscv.F7Alternate:
			return SRA, nil
		}
	case riscv.F3ORI_OR:
		if f7 == riscv.F7Logical {
			return OR, nil
		}
	case riscv.F3ANDI_AND:
		if f7 == riscv.F7Logical {
			return AND, nil
		}
	}
	return 0, errf("unrecognized OP funct3=%#x funct7=%#x", f3, f7)
}

func decodeBranch(f3 uint32) (Mnemonic, error) {
	switch f3 {
	case riscv.F3BEQ:
		return BEQ, nil
	case riscv.F3BNE:
		return BNE, nil
	case riscv.F3BLT:
		return BLT, nil
	case riscv.F3BGE:
		return BGE, nil
	case riscv.F3BLTU:
		return BLTU, nil
	case riscv.F3BGEU:
		return BGEU, nil
	default:
		return 0, errf("unrecognized BRANCH funct3 %#x", f3)
	}
}

func decodeLoad(f3 uint32) (Mnemonic, error) {
	switch f3 {
	case riscv.F3LB:
		return LB, nil
	case riscv.F3LH:
		return LH, nil
	case riscv.F3LW:
		return LW, nil
	case riscv.F3LBU:
		return LBU, nil
	case riscv.F3LHU:
		return LHU, nil
	default:
		return 0, errf("unrecognized LOAD funct3 %#x", f3)
	}
}

func decodeStore(f3 uint32) (Mnemonic, error) {
	switch f3 {
	case riscv.F3SB:
		return SB, nil
	case riscv.F3SH:
		return SH, nil
	case riscv.F3SW:
		return SW, nil
	default:
		return 0, errf("unrecognized STORE funct3 %#x", f3)
	}
}
