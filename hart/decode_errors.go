package hart

import "fmt"

// decodeError is the decoder's own error type: Decode has no access to PC,
// so it cannot construct a TrapError directly. Step wraps a decodeError in
// a TrapError (IllegalInstruction) once it knows the faulting PC.
type decodeError struct {
	msg string
}

func (e *decodeError) Error() string { return e.msg }

func errf(format string, args ...any) *decodeError {
	return &decodeError{msg: fmt.Sprintf(format, args...)}
}

func errIllegal(inst uint32, reason string) *decodeError {
	return errf("instruction %#08x: %s", inst, reason)
}

func errShamt(imm int32) *decodeError {
	return errf("shift-immediate %#x has non-zero bits above the 5-bit shift amount", uint32(imm)&0xFFF)
}
