package types

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
	"golang.org/x/xerrors"
)

// ScalarKind tags the concrete type carried by a Scalar.
type ScalarKind byte

const (
	// ScalarBool is a boolean scalar.
	ScalarBool ScalarKind = iota
	// ScalarInt is an integer scalar.
	ScalarInt
	// ScalarText is an integer rendered as decimal text.
	ScalarText
)

// Scalar is an externally supplied raw value: a boolean, an integer, or
// numeric text. Arithmetic strategies convert it into their internal
// representation. On the wire it travels as the plain value, the kind is
// recovered from the msgpack code.
type Scalar struct {
	Kind ScalarKind
	Bool bool
	Int  int64
	Text string
}

// BoolScalar returns a boolean scalar.
func BoolScalar(v bool) Scalar {
	return Scalar{Kind: ScalarBool, Bool: v}
}

// IntScalar returns an integer scalar.
func IntScalar(v int64) Scalar {
	return Scalar{Kind: ScalarInt, Int: v}
}

// TextScalar returns a numeric-text scalar.
func TextScalar(v string) Scalar {
	return Scalar{Kind: ScalarText, Text: v}
}

func (s Scalar) String() string {
	switch s.Kind {
	case ScalarBool:
		return fmt.Sprintf("%v", s.Bool)
	case ScalarInt:
		return fmt.Sprintf("%d", s.Int)
	case ScalarText:
		return s.Text
	default:
		return fmt.Sprintf("{scalar kind %d}", s.Kind)
	}
}

// EncodeMsgpack implements msgpack.CustomEncoder. A scalar is packed as its
// plain value.
func (s Scalar) EncodeMsgpack(enc *msgpack.Encoder) error {
	switch s.Kind {
	case ScalarBool:
		return enc.EncodeBool(s.Bool)
	case ScalarInt:
		return enc.EncodeInt(s.Int)
	case ScalarText:
		return enc.EncodeString(s.Text)
	default:
		return xerrors.Errorf("cannot encode scalar kind %d", s.Kind)
	}
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (s *Scalar) DecodeMsgpack(dec *msgpack.Decoder) error {
	code, err := dec.PeekCode()
	if err != nil {
		return err
	}

	switch {
	case code == msgpcode.True || code == msgpcode.False:
		v, err := dec.DecodeBool()
		if err != nil {
			return err
		}
		*s = BoolScalar(v)
	case msgpcode.IsString(code):
		v, err := dec.DecodeString()
		if err != nil {
			return err
		}
		*s = TextScalar(v)
	default:
		v, err := dec.DecodeInt64()
		if err != nil {
			return xerrors.Errorf("scalar is neither bool, string nor integer: %w", err)
		}
		*s = IntScalar(v)
	}
	return nil
}
