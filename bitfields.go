package construct

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/puzpuzpuz/xsync/v4"
)

// BitField names one field of a BitFields declaration. A blank Name marks
// padding: its bits are allocated and consumed like any other field, but
// never appear in the resulting Record, exactly as test_bitfieldstruct.py's
// "_ = BitPadding(3)" convention works.
type BitField struct {
	Name  string
	Width int
}

// Bit declares a named bit-field of the given width.
func Bit(name string, width int) BitField { return BitField{Name: name, Width: width} }

// BitPadding declares width bits of unnamed filler.
func BitPadding(width int) BitField { return BitField{Width: width} }

// bitWidthCache memoizes each *BitFields value's total bit width, the same
// reflect-avoidance amortization oy3o-codec/fixed.go applies to its own
// sizeCache, keyed here by the BitFields pointer instead of a reflect.Type.
var bitWidthCache = xsync.NewMap[*BitFields, int]()

// BitFields packs a sequence of sub-byte-width fields MSB-first into
// ceil(totalBits/8) bytes treated as one big-endian unsigned integer: the
// first declared field occupies the top bits, each subsequent field the
// next bits down, including across a byte boundary (spec §4.8: "splits
// them MSB-first into named unsigned integer fields ... packs MSB-first").
// Any bits left over below the last field (when totalBits isn't a
// multiple of 8) are unused padding, always zero on build. This is the
// opposite bit order from test_bitfieldstruct.py's BitFieldStruct, which
// packs LSB-first into a little-endian integer -- that convention belongs
// to the original library, not to this one. Grounded on structures.py's
// BitFieldStruct / Bit / BitPadding shape, reassigned to the documented
// MSB-first packing order.
type BitFields struct {
	Specs []BitField
}

// NewBitFields builds a *BitFields from an ordered list of fields, the
// primary constructor spec.md's `[(name, bit_width)]` ordered-pairs form
// maps onto.
func NewBitFields(fields ...BitField) *BitFields {
	return &BitFields{Specs: fields}
}

// ParseBitFieldSpec parses the original library's compact
// "name:bits,name:bits" layout string into an ordered []BitField, a
// convenience on top of NewBitFields grounded on original_source/'s own
// string-based bitfield declarations. It does not change BitFields' wire
// semantics; a blank name (",:3," or a bare "3") yields padding bits the
// same way BitPadding does.
func ParseBitFieldSpec(spec string) ([]BitField, error) {
	var fields []BitField
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, widthStr, hasName := strings.Cut(part, ":")
		if !hasName {
			widthStr, name = name, ""
		}
		width, err := strconv.Atoi(widthStr)
		if err != nil || width <= 0 {
			return nil, fmt.Errorf("construct: invalid bitfield spec %q", part)
		}
		fields = append(fields, BitField{Name: name, Width: width})
	}
	return fields, nil
}

func (bf *BitFields) totalBits() int {
	if n, ok := bitWidthCache.Load(bf); ok {
		return n
	}
	total := 0
	for _, spec := range bf.Specs {
		total += spec.Width
	}
	bitWidthCache.Store(bf, total)
	return total
}

func (bf *BitFields) byteWidth() int {
	bits := bf.totalBits()
	return (bits + 7) / 8
}

func (bf *BitFields) parse(s *Stream, _ *Context) (any, error) {
	n := bf.byteWidth()
	raw, err := s.read(n)
	if err != nil {
		return nil, err
	}
	var packed uint64
	for i := 0; i < n; i++ {
		packed = (packed << 8) | uint64(raw[i])
	}
	rec := NewRecord()
	remaining := uint(n * 8)
	for _, spec := range bf.Specs {
		remaining -= uint(spec.Width)
		mask := uint64(1)<<uint(spec.Width) - 1
		v := (packed >> remaining) & mask
		if spec.Name != "" {
			rec.Set(spec.Name, v)
		}
	}
	return rec, nil
}

func (bf *BitFields) build(s *Stream, _ *Context, v any) (any, error) {
	rec, ok := v.(*Record)
	if !ok {
		return nil, fmt.Errorf("%w: BitFields requires a *Record, got %T", ErrAdapterFailure, v)
	}
	n := bf.byteWidth()
	var packed uint64
	remaining := uint(n * 8)
	for _, spec := range bf.Specs {
		remaining -= uint(spec.Width)
		mask := uint64(1)<<uint(spec.Width) - 1
		var raw uint64
		if spec.Name != "" {
			if fv, present := rec.Get(spec.Name); present {
				u, err := toUint64(fv)
				if err != nil {
					return nil, err
				}
				raw = u
			}
		}
		if raw > mask {
			return nil, fmt.Errorf("%w: field %q value %d exceeds %d bit(s)", ErrOutOfRange, spec.Name, raw, spec.Width)
		}
		packed |= raw << remaining
	}
	raw := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		raw[i] = byte(packed)
		packed >>= 8
	}
	if err := s.write(raw); err != nil {
		return nil, err
	}
	return rec, nil
}

func (bf *BitFields) sizeof(*Context) (int, error) { return bf.byteWidth(), nil }

// embedded is always true: a BitFields block's fields merge directly into
// the enclosing Struct, matching MyContainerStruct's
// "bitfields = MyBitfields(embedded=True)" usage in
// test_bitfieldstruct.py -- BitFields declares named sub-fields of its
// own, so nesting them under one more field name would defeat the point.
func (*BitFields) embedded() bool { return true }
