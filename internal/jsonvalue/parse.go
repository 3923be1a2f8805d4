package jsonvalue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

var (
	ErrEmptyInput   = errors.New("input is empty or contains only whitespace")
	ErrTrailingData = errors.New("unexpected data after the top-level value")
	ErrTruncated    = errors.New("unexpected end of input")
)

// ParseError reports input that is not a single valid JSON value.
type ParseError struct {
	Offset int64 // byte offset into the input
	Line   int   // 1-based
	Column int   // 1-based, in bytes
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid JSON at line %d, column %d: %v", e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseString parses text as exactly one JSON value.
func ParseString(text string) (Value, error) {
	return ParseBytes([]byte(text))
}

// Parse reads r to the end and parses it as exactly one JSON value.
func Parse(r io.Reader) (Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Value{}, fmt.Errorf("read input: %w", err)
	}
	return ParseBytes(data)
}

// ParseBytes parses data as exactly one JSON value. Object member order and
// number literals are preserved. Errors are always *ParseError.
func ParseBytes(data []byte) (Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Value{}, newParseError(data, 0, ErrEmptyInput)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, wrapDecodeError(data, dec, err)
	}

	// Anything but EOF after the value is an error, including a second value.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, newParseError(data, dec.InputOffset(), ErrTrailingData)
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			members := []Member{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("object key must be a string, got %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				members = append(members, Member{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return NewObject(members...), nil
		case '[':
			items := []Value{}
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, val)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return NewArray(items...), nil
		default:
			return Value{}, fmt.Errorf("unexpected delimiter %q", rune(t))
		}
	case string:
		return NewString(t), nil
	case json.Number:
		return NewNumber(t.String()), nil
	case bool:
		return NewBool(t), nil
	case nil:
		return Null(), nil
	default:
		return Value{}, fmt.Errorf("unexpected token %v", tok)
	}
}

func wrapDecodeError(data []byte, dec *json.Decoder, err error) *ParseError {
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &syntaxErr):
		return newParseError(data, syntaxErr.Offset, syntaxErr)
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return newParseError(data, int64(len(data)), ErrTruncated)
	default:
		return newParseError(data, dec.InputOffset(), err)
	}
}

func newParseError(data []byte, offset int64, err error) *ParseError {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	if offset < 0 {
		offset = 0
	}
	before := data[:offset]
	line := bytes.Count(before, []byte("\n")) + 1
	col := int(offset) + 1
	if i := bytes.LastIndexByte(before, '\n'); i >= 0 {
		col = int(offset) - i
	}
	return &ParseError{Offset: offset, Line: line, Column: col, Err: err}
}

// Repair attempts to turn almost-JSON (trailing commas, single quotes,
// missing brackets) into valid JSON text. It only suggests: the result is
// returned to the caller and never parsed implicitly.
func Repair(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}
	repaired, err := jsonrepair.JSONRepair(text)
	if err != nil {
		return "", fmt.Errorf("repair JSON: %w", err)
	}
	return repaired, nil
}
