package loader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/viant/gokern/model/program"
	"github.com/viant/parsly"
)

// opArity maps each numeric-operand mnemonic to its operand count. Print is
// handled separately since it carries a string literal.
var opArity = map[string]int{
	program.OpExit:   1,
	program.OpYield:  0,
	program.OpTime:   0,
	program.OpInfo:   0,
	program.OpSbrk:   1,
	program.OpMmap:   3,
	program.OpMunmap: 2,
	program.OpSpin:   1,
}

// Parse parses a program listing into an image. A listing holds '#' comments,
// '.name' '.stack' and '.segment' directives and one instruction per line.
func Parse(input []byte) (*program.Image, error) {
	image := &program.Image{}
	cursor := parsly.NewCursor("", input, 0)
	for {
		cursor.MatchOne(whitespaceToken)
		if cursor.Pos >= cursor.InputSize {
			break
		}
		matched := cursor.MatchAny(commentToken, directiveToken, identifierToken)
		switch matched.Code {
		case commentCode:
			continue
		case directiveCode:
			if err := parseDirective(cursor, matched.Text(cursor), image); err != nil {
				return nil, err
			}
		case identifierCode:
			if err := parseInstruction(cursor, matched.Text(cursor), image); err != nil {
				return nil, err
			}
		default:
			return nil, cursor.NewError(commentToken, directiveToken, identifierToken)
		}
	}
	return image, nil
}

func parseDirective(cursor *parsly.Cursor, directive string, image *program.Image) error {
	switch strings.TrimPrefix(directive, ".") {
	case "name":
		matched := cursor.MatchAfterOptional(whitespaceToken, identifierToken)
		if matched.Code != identifierCode {
			return cursor.NewError(identifierToken)
		}
		image.Name = matched.Text(cursor)
	case "stack":
		size, err := expectNumber(cursor)
		if err != nil {
			return err
		}
		if size <= 0 {
			return fmt.Errorf("invalid stack size: %v", size)
		}
		image.StackSize = uintptr(size)
	case "segment":
		start, err := expectNumber(cursor)
		if err != nil {
			return err
		}
		size, err := expectNumber(cursor)
		if err != nil {
			return err
		}
		port, err := expectPort(cursor)
		if err != nil {
			return err
		}
		if start < 0 || size <= 0 {
			return fmt.Errorf("invalid segment bounds: start %v, size %v", start, size)
		}
		image.Segments = append(image.Segments, program.Segment{
			Start: uintptr(start),
			Size:  uintptr(size),
			Port:  port,
		})
	default:
		return fmt.Errorf("unknown directive: %v", directive)
	}
	return nil
}

func parseInstruction(cursor *parsly.Cursor, op string, image *program.Image) error {
	if op == program.OpPrint {
		matched := cursor.MatchAfterOptional(whitespaceToken, stringToken)
		if matched.Code != stringCode {
			return cursor.NewError(stringToken)
		}
		text := matched.Text(cursor)
		image.Instructions = append(image.Instructions, program.Instruction{
			Op:   op,
			Text: strings.Trim(text, `"`),
		})
		return nil
	}
	arity, ok := opArity[op]
	if !ok {
		return fmt.Errorf("unknown operation: %v", op)
	}
	var args []int64
	for i := 0; i < arity; i++ {
		value, err := expectNumber(cursor)
		if err != nil {
			return fmt.Errorf("%v operand %v: %w", op, i+1, err)
		}
		args = append(args, value)
	}
	image.Instructions = append(image.Instructions, program.Instruction{Op: op, Args: args})
	return nil
}

func expectNumber(cursor *parsly.Cursor) (int64, error) {
	matched := cursor.MatchAfterOptional(whitespaceToken, numberToken)
	if matched.Code != numberCode {
		return 0, cursor.NewError(numberToken)
	}
	text := matched.Text(cursor)
	value, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %v: %w", text, err)
	}
	return value, nil
}

// expectPort reads either a permission-letter identifier such as rw or a raw
// numeric permission value.
func expectPort(cursor *parsly.Cursor) (uint64, error) {
	matched := cursor.MatchAfterOptional(whitespaceToken, identifierToken, numberToken)
	switch matched.Code {
	case identifierCode:
		return parsePortLetters(matched.Text(cursor))
	case numberCode:
		text := matched.Text(cursor)
		value, err := strconv.ParseUint(text, 0, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid permission value %v: %w", text, err)
		}
		return value, nil
	default:
		return 0, cursor.NewError(identifierToken, numberToken)
	}
}

func parsePortLetters(text string) (uint64, error) {
	var port uint64
	for _, c := range text {
		switch c {
		case 'r':
			port |= 0x1
		case 'w':
			port |= 0x2
		case 'x':
			port |= 0x4
		default:
			return 0, fmt.Errorf("unknown permission letter %q in %v", c, text)
		}
	}
	return port, nil
}
