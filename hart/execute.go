package hart

import "github.com/rv32hart/ruscv/riscv"

// execute mutates register file, memory, and PC for one decoded
// instruction fetched at pc. It returns halt=true with an exit code when
// the instruction is a recognized exit ecall, or a non-nil trap on any
// fault. When the instruction traps or halts the hart, PC is left at pc;
// otherwise, unless the instruction is a control transfer, PC is advanced
// by exactly 4 before returning.
func (h *Hart) execute(pc uint32, in Instruction) (halt bool, exitCode int32, trapErr *TrapError) {
	switch in.Mnemonic {

	case ADDI:
		h.writeRegister(in.Rd, h.Register(in.Rs1)+uint32(in.Imm))
	case SLTI:
		h.writeRegister(in.Rd, boolToWord(int32(h.Register(in.Rs1)) < in.Imm))
	case SLTIU:
		h.writeRegister(in.Rd, boolToWord(h.Register(in.Rs1) < uint32(in.Imm)))
	case XORI:
		h.writeRegister(in.Rd, h.Register(in.Rs1)^uint32(in.Imm))
	case ORI:
		h.writeRegister(in.Rd, h.Register(in.Rs1)|uint32(in.Imm))
	case ANDI:
		h.writeRegister(in.Rd, h.Register(in.Rs1)&uint32(in.Imm))
	case SLLI:
		h.writeRegister(in.Rd, h.Register(in.Rs1)<<shamt(in.Imm))
	case SRLI:
		h.writeRegister(in.Rd, h.Register(in.Rs1)>>shamt(in.Imm))
	case SRAI:
		h.writeRegister(in.Rd, uint32(int32(h.Register(in.Rs1))>>shamt(in.Imm)))

	case ADD:
		h.writeRegister(in.Rd, h.Register(in.Rs1)+h.Register(in.Rs2))
	case SUB:
		h.writeRegister(in.Rd, h.Register(in.Rs1)-h.Register(in.Rs2))
	case SLL:
		h.writeRegister(in.Rd, h.Register(in.Rs1)<<shamtReg(h.Register(in.Rs2)))
	case SLT:
		h.writeRegister(in.Rd, boolToWord(int32(h.Register(in.Rs1)) < int32(h.Register(in.Rs2))))
	case SLTU:
		h.writeRegister(in.Rd, boolToWord(h.Register(in.Rs1) < h.Register(in.Rs2)))
	case XOR:
		h.writeRegister(in.Rd, h.Register(in.Rs1)^h.Register(in.Rs2))
	case SRL:
		h.writeRegister(in.Rd, h.Register(in.Rs1)>>shamtReg(h.Register(in.Rs2)))
	case SRA:
		h.writeRegister(in.Rd, uint32(int32(h.Register(in.Rs1))>>shamtReg(h.Register(in.Rs2))))
	case OR:
		h.writeRegister(in.Rd, h.Register(in.Rs1)|h.Register(in.Rs2))
	case AND:
		h.writeRegister(in.Rd, h.Register(in.Rs1)&h.Register(in.Rs2))

	case LUI:
		h.writeRegister(in.Rd, uint32(in.Imm))
	case AUIPC:
		h.writeRegister(in.Rd, pc+uint32(in.Imm))

	case JAL:
		target := pc + uint32(in.Imm)
		if target&0x3 != 0 {
			return false, 0, trapf(MisalignedInstruction, pc, "jal target 0x%08x is not 4-byte aligned", target)
		}
		h.writeRegister(in.Rd, pc+4)
		h.pc = target
		return false, 0, nil

	case JALR:
		// rs1 is read, and the target computed, before rd is written: this
		// matters when rd == rs1, and is the hazard the specification
		// flags explicitly.
		target := (h.Register(in.Rs1) + uint32(in.Imm)) &^ 1
		if target&0x2 != 0 {
			return false, 0, trapf(MisalignedInstruction, pc, "jalr target 0x%08x is not 4-byte aligned", target)
		}
		h.writeRegister(in.Rd, pc+4)
		h.pc = target
		return false, 0, nil

	case BEQ, BNE, BLT, BGE, BLTU, BGEU:
		taken := branchTaken(in.Mnemonic, h.Register(in.Rs1), h.Register(in.Rs2))
		if !taken {
			h.pc = pc + 4
			return false, 0, nil
		}
		target := pc + uint32(in.Imm)
		if target&0x3 != 0 {
			return false, 0, trapf(MisalignedInstruction, pc, "branch target 0x%08x is not 4-byte aligned", target)
		}
		h.pc = target
		return false, 0, nil

	case LB, LH, LW, LBU, LHU:
		addr := h.Register(in.Rs1) + uint32(in.Imm)
		value, err := h.load(in.Mnemonic, addr)
		if err != nil {
			return false, 0, trapf(MemoryOutOfRange, pc, "%s at 0x%08x: %v", in.Mnemonic, addr, err)
		}
		h.writeRegister(in.Rd, value)

	case SB, SH, SW:
		addr := h.Register(in.Rs1) + uint32(in.Imm)
		if err := h.store(in.Mnemonic, addr, h.Register(in.Rs2)); err != nil {
			return false, 0, trapf(MemoryOutOfRange, pc, "%s at 0x%08x: %v", in.Mnemonic, addr, err)
		}

	case ECALL:
		return h.syscall(pc)

	case EBREAK:
		return false, 0, trap(Breakpoint, pc, "ebreak")

	case FENCE:
		// No pipeline, no other harts: nothing to order.

	default:
		return false, 0, trapf(IllegalInstruction, pc, "unhandled mnemonic %s", in.Mnemonic)
	}

	h.pc = pc + 4
	return false, 0, nil
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// shamt masks an I-immediate shift amount down to its low 5 bits. Decode
// already rejects SLLI/SRLI/SRAI encodings with non-zero bits above bit 4,
// so this mask is redundant for those but kept to document the invariant
// at the point of use.
func shamt(imm int32) uint32 {
	return uint32(imm) & 0x1F
}

// shamtReg masks an R-format shift amount taken from rs2's low 5 bits, per
// §8's shift-amount-masking invariant.
func shamtReg(v uint32) uint32 {
	return v & 0x1F
}

func branchTaken(m Mnemonic, a, b uint32) bool {
	switch m {
	case BEQ:
		return a == b
	case BNE:
		return a != b
	case BLT:
		return int32(a) < int32(b)
	case BGE:
		return int32(a) >= int32(b)
	case BLTU:
		return a < b
	case BGEU:
		return a >= b
	default:
		return false
	}
}

func (h *Hart) load(m Mnemonic, addr uint32) (uint32, error) {
	switch m {
	case LB:
		v, err := h.mem.Load8(addr)
		return uint32(int32(int8(v))), err
	case LBU:
		v, err := h.mem.Load8(addr)
		return uint32(v), err
	case LH:
		v, err := h.mem.Load16(addr)
		return uint32(int32(int16(v))), err
	case LHU:
		v, err := h.mem.Load16(addr)
		return uint32(v), err
	case LW:
		return h.mem.Load32(addr)
	default:
		panic("load: unreachable mnemonic")
	}
}

func (h *Hart) store(m Mnemonic, addr, value uint32) error {
	switch m {
	case SB:
		return h.mem.Store8(addr, uint8(value))
	case SH:
		return h.mem.Store16(addr, uint16(value))
	case SW:
		return h.mem.Store32(addr, value)
	default:
		panic("store: unreachable mnemonic")
	}
}

// syscall implements the sole recognized syscall in scope: exit. a7 (x17)
// selects the syscall number; any value besides riscv.SysExit traps as
// UnsupportedSyscall.
func (h *Hart) syscall(pc uint32) (halt bool, exitCode int32, trapErr *TrapError) {
	a7 := h.Register(riscv.RegA7)
	if a7 != riscv.SysExit {
		return false, 0, trapf(UnsupportedSyscall, pc, "a7=%d is not the exit syscall (%d)", a7, riscv.SysExit)
	}
	return true, int32(h.Register(riscv.RegA0)), nil
}
