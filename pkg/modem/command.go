package modem

import (
	"errors"
	"fmt"
	"strings"
)

// Command is one of the control words the acoustic channel carries.
// The numeric value is the four-bit wire code.
type Command uint8

const (
	CommandCapture Command = 0b0001 // ask the remote side to take a capture
	CommandDone    Command = 0b0010 // remote action completed
	CommandError   Command = 0b0011 // remote action failed
	CommandPing    Command = 0b0100 // liveness check
	CommandPong    Command = 0b0101 // liveness reply
)

// Commands lists every known command in wire-code order.
var Commands = []Command{
	CommandCapture,
	CommandDone,
	CommandError,
	CommandPing,
	CommandPong,
}

var ErrUnknownCommand = errors.New("unknown command")

const (
	CommandBits  = 4               // width of a command code
	CodewordBits = CommandBits * 2 // code plus its check nibble
)

func (c Command) String() string {
	switch c {
	case CommandCapture:
		return "CAPTURE"
	case CommandDone:
		return "DONE"
	case CommandError:
		return "ERROR"
	case CommandPing:
		return "PING"
	case CommandPong:
		return "PONG"
	default:
		return fmt.Sprintf("Command(%#04b)", uint8(c))
	}
}

// Valid reports whether c is one of the known commands.
func (c Command) Valid() bool {
	switch c {
	case CommandCapture, CommandDone, CommandError, CommandPing, CommandPong:
		return true
	}
	return false
}

// ParseCommand resolves a command by its name, case-insensitively.
func ParseCommand(s string) (Command, error) {
	for _, c := range Commands {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCommand, s)
}

// checkNibble XOR-folds the two nibbles of b into one. For a bare four-bit
// code the fold reduces to the code itself, which is exactly the check the
// pump firmware computes.
func checkNibble(b uint8) uint8 {
	return (b>>4 ^ b) & 0x0f
}

// Codeword returns the eight bits that represent c on the air: the four
// command bits followed by their check nibble, most significant bit first.
func (c Command) Codeword() uint8 {
	code := uint8(c) & 0x0f
	return code<<4 | checkNibble(code)
}

// commandFromCodeword reverses Codeword. It rejects bytes whose check nibble
// does not match their code and codes that name no known command.
func commandFromCodeword(b uint8) (Command, bool) {
	code := b >> 4
	if checkNibble(code) != b&0x0f {
		return 0, false
	}
	c := Command(code)
	return c, c.Valid()
}
