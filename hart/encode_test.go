package hart

import "github.com/rv32hart/ruscv/riscv"

// These encoders build raw instruction words for test fixtures, standing
// in for the assembler + cross-compiler toolchain the specification treats
// as an external collaborator. They intentionally mirror the field layout
// Decode itself expects, so a bug shared between encoder and decoder would
// not be caught here -- the conformance tests in conformance_test.go, which
// load real compiled RV32UI binaries, are what catches that class of bug.

func encodeR(opcode, rd, f3, rs1, rs2, f7 uint32) uint32 {
	return (f7 << 25) | (rs2 << 20) | (rs1 << 15) | (f3 << 12) | (rd << 7) | opcode
}

func encodeI(opcode, rd, f3, rs1 uint32, imm int32) uint32 {
	return (uint32(imm)<<20)&0xFFF00000 | (rs1 << 15) | (f3 << 12) | (rd << 7) | opcode
}

func encodeS(opcode, f3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm)
	return ((u>>5)&0x7F)<<25 | (rs2 << 20) | (rs1 << 15) | (f3 << 12) | ((u&0x1F)<<7) | opcode
}

func encodeB(opcode, f3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm)
	return ((u>>12)&0x1)<<31 | ((u>>5)&0x3F)<<25 | (rs2 << 20) | (rs1 << 15) | (f3 << 12) |
		((u>>11)&0x1)<<7 | ((u>>1)&0xF)<<8 | opcode
}

func encodeU(opcode, rd uint32, imm int32) uint32 {
	return (uint32(imm) & 0xFFFFF000) | (rd << 7) | opcode
}

func encodeJ(opcode, rd uint32, imm int32) uint32 {
	u := uint32(imm)
	return ((u>>20)&0x1)<<31 | ((u>>1)&0x3FF)<<21 | ((u>>11)&0x1)<<20 | ((u>>12)&0xFF)<<12 | (rd << 7) | opcode
}

func asmADDI(rd, rs1 uint32, imm int32) uint32 {
	return encodeI(riscv.OpImm, rd, riscv.F3ADDI_ADD_SUB, rs1, imm)
}
func asmSLTIU(rd, rs1 uint32, imm int32) uint32 {
	return encodeI(riscv.OpImm, rd, riscv.F3SLTIU_SLTU, rs1, imm)
}
func asmSLTU(rd, rs1, rs2 uint32) uint32 {
	return encodeR(riscv.OpReg, rd, riscv.F3SLTIU_SLTU, rs1, rs2, riscv.F7Logical)
}
func asmADD(rd, rs1, rs2 uint32) uint32 {
	return encodeR(riscv.OpReg, rd, riscv.F3ADDI_ADD_SUB, rs1, rs2, riscv.F7Logical)
}
func asmSW(rs1, rs2 uint32, imm int32) uint32 {
	return encodeS(riscv.OpStore, riscv.F3SW, rs1, rs2, imm)
}
func asmLW(rd, rs1 uint32, imm int32) uint32 {
	return encodeI(riscv.OpLoad, rd, riscv.F3LW, rs1, imm)
}
func asmBEQ(rs1, rs2 uint32, imm int32) uint32 {
	return encodeB(riscv.OpBranch, riscv.F3BEQ, rs1, rs2, imm)
}
func asmJAL(rd uint32, imm int32) uint32 {
	return encodeJ(riscv.OpJAL, rd, imm)
}
func asmJALR(rd, rs1 uint32, imm int32) uint32 {
	return encodeI(riscv.OpJALR, rd, 0, rs1, imm)
}
func asmECALL() uint32 {
	return encodeI(riscv.OpSystem, 0, riscv.F3ECALL_EBREAK, 0, 0)
}
func asmEBREAK() uint32 {
	return encodeI(riscv.OpSystem, 0, riscv.F3ECALL_EBREAK, 0, 1)
}

// words packs a sequence of instruction words into a little-endian byte
// image, the shape LoadImage expects.
func words(ws ...uint32) []byte {
	out := make([]byte, 0, len(ws)*4)
	for _, w := range ws {
		out = append(out, byte(w), byte(w>>8), byte(w>>16), byte(w>>24))
	}
	return out
}
