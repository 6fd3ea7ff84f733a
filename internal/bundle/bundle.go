// Package bundle stores compiled Lox programs as CBOR images so they can
// be run later without recompiling the source.
package bundle

import (
	"errors"
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/tliron/commonlog"

	"lox/internal/code"
	"lox/internal/object"
)

const (
	Magic   = "loxc"
	Version = 1

	// Ext is the file extension the CLI uses for images.
	Ext = ".loxc"
)

var (
	ErrBadMagic   = errors.New("bundle: not a lox image")
	ErrBadVersion = errors.New("bundle: unsupported image version")
)

var log = commonlog.GetLogger("lox.bundle")

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bundle: failed to create CBOR enc mode: %v", err))
	}
	encMode = em

	// Every nested function adds three levels (function, constant list,
	// constant), so the library default is too shallow.
	dm, err := cbor.DecOptions{MaxNestedLevels: 1024}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("bundle: failed to create CBOR dec mode: %v", err))
	}
	decMode = dm
}

type image struct {
	Magic   string    `cbor:"1,keyasint"`
	Version int       `cbor:"2,keyasint"`
	Script  *function `cbor:"3,keyasint"`
}

type function struct {
	Name         *string    `cbor:"1,keyasint"`
	Arity        int        `cbor:"2,keyasint"`
	UpvalueCount int        `cbor:"3,keyasint"`
	Code         []byte     `cbor:"4,keyasint"`
	Lines        []int      `cbor:"5,keyasint"`
	Constants    []constant `cbor:"6,keyasint"`
}

type constantKind uint8

const (
	constNil constantKind = iota
	constBool
	constNumber
	constString
	constFunction
)

type constant struct {
	Kind     constantKind `cbor:"1,keyasint"`
	Bool     bool         `cbor:"2,keyasint,omitempty"`
	Number   float64      `cbor:"3,keyasint,omitempty"`
	String   string       `cbor:"4,keyasint,omitempty"`
	Function *function    `cbor:"5,keyasint,omitempty"`
}

// Marshal encodes a compiled script and every function nested in its
// constant pool. The encoding is deterministic.
func Marshal(fn *object.Function) ([]byte, error) {
	if fn == nil {
		return nil, errors.New("bundle: nil function")
	}
	f, err := encodeFunction(fn)
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(&image{Magic: Magic, Version: Version, Script: f})
}

// Unmarshal decodes an image produced by Marshal. The structure is checked
// but the bytecode itself is trusted.
func Unmarshal(data []byte) (*object.Function, error) {
	var img image
	if err := decMode.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("bundle: unmarshal image: %w", err)
	}
	if img.Magic != Magic {
		return nil, ErrBadMagic
	}
	if img.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrBadVersion, img.Version)
	}
	if img.Script == nil {
		return nil, errors.New("bundle: image has no script")
	}
	return decodeFunction(img.Script)
}

func WriteFile(path string, fn *object.Function) error {
	data, err := Marshal(fn)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("bundle: write %s: %w", path, err)
	}
	log.Debugf("wrote %s (%d bytes)", path, len(data))
	return nil
}

func ReadFile(path string) (*object.Function, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bundle: read %s: %w", path, err)
	}
	log.Debugf("read %s (%d bytes)", path, len(data))
	return Unmarshal(data)
}

func encodeFunction(fn *object.Function) (*function, error) {
	f := &function{
		Arity:        fn.Arity,
		UpvalueCount: fn.UpvalueCount,
		Code:         []byte(fn.Chunk.Code),
		Lines:        fn.Chunk.Lines,
		Constants:    make([]constant, len(fn.Chunk.Constants)),
	}
	if fn.Name != nil {
		name := fn.Name.Value
		f.Name = &name
	}

	for i, v := range fn.Chunk.Constants {
		switch {
		case v.IsNil():
			f.Constants[i] = constant{Kind: constNil}
		case v.IsBool():
			f.Constants[i] = constant{Kind: constBool, Bool: v.AsBool()}
		case v.IsNumber():
			f.Constants[i] = constant{Kind: constNumber, Number: v.AsNumber()}
		case v.IsString():
			f.Constants[i] = constant{Kind: constString, String: v.AsString().Value}
		default:
			inner, ok := v.AsObj().(*object.Function)
			if !ok {
				return nil, fmt.Errorf("bundle: %s: cannot encode constant %d of type %s",
					fn.DisplayName(), i, v.AsObj().Type())
			}
			enc, err := encodeFunction(inner)
			if err != nil {
				return nil, err
			}
			f.Constants[i] = constant{Kind: constFunction, Function: enc}
		}
	}
	return f, nil
}

func decodeFunction(f *function) (*object.Function, error) {
	fn := object.NewFunction()
	if f.Name != nil {
		fn.Name = object.NewString(*f.Name)
	}
	if len(f.Lines) != len(f.Code) {
		return nil, fmt.Errorf("bundle: %s: %d line entries for %d code bytes",
			fn.DisplayName(), len(f.Lines), len(f.Code))
	}
	if f.Arity < 0 || f.UpvalueCount < 0 {
		return nil, fmt.Errorf("bundle: %s: negative arity or upvalue count", fn.DisplayName())
	}
	fn.Arity = f.Arity
	fn.UpvalueCount = f.UpvalueCount
	fn.Chunk.Code = code.Instructions(f.Code)
	fn.Chunk.Lines = f.Lines

	fn.Chunk.Constants = make([]object.Value, len(f.Constants))
	for i, c := range f.Constants {
		switch c.Kind {
		case constNil:
			fn.Chunk.Constants[i] = object.NilValue()
		case constBool:
			fn.Chunk.Constants[i] = object.BoolValue(c.Bool)
		case constNumber:
			fn.Chunk.Constants[i] = object.NumberValue(c.Number)
		case constString:
			fn.Chunk.Constants[i] = object.StringValue(c.String)
		case constFunction:
			if c.Function == nil {
				return nil, fmt.Errorf("bundle: %s: constant %d: missing function", fn.DisplayName(), i)
			}
			inner, err := decodeFunction(c.Function)
			if err != nil {
				return nil, err
			}
			fn.Chunk.Constants[i] = object.ObjValue(inner)
		default:
			return nil, fmt.Errorf("bundle: %s: constant %d: unknown kind %d", fn.DisplayName(), i, c.Kind)
		}
	}
	return fn, nil
}
