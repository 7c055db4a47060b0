// Package ctypes classifies raw C type spellings from the SWIG binding into
// the numeric field descriptors used by generated blocks.
package ctypes

import (
	"math"
	"sort"
	"strings"
)

// NumberFieldKind is the Kind of every NumericFieldSpec.
const NumberFieldKind = "number-field"

// FloatPrecision is the step used for float and double fields.
const FloatPrecision = 0.01

// NumericFieldSpec describes the bounded numeric input shown for a parameter.
// 64-bit integer bounds are not exactly representable as float64 and round
// to the nearest power of two; the UI spinner has the same limitation.
type NumericFieldSpec struct {
	Kind      string  `json:"kind"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Precision float64 `json:"precision"`
	Default   float64 `json:"default"`
	Bits      int     `json:"bits"`
	Signed    bool    `json:"signed"`
	Float     bool    `json:"float"`
}

func integer(bits int, signed bool) NumericFieldSpec {
	s := NumericFieldSpec{Kind: NumberFieldKind, Precision: 1, Bits: bits, Signed: signed}
	if signed {
		s.Min = -math.Exp2(float64(bits - 1))
		s.Max = math.Exp2(float64(bits-1)) - 1
	} else {
		s.Max = math.Exp2(float64(bits)) - 1
	}
	return s
}

// floating derives the range from the exponent width instead of the IEEE
// limits: the field is a bounded spinner, not a storage type.
func floating(bits, exponentBits int) NumericFieldSpec {
	limit := math.Pow(10, float64(exponentBits))
	return NumericFieldSpec{
		Kind:      NumberFieldKind,
		Min:       -limit,
		Max:       limit,
		Precision: FloatPrecision,
		Bits:      bits,
		Signed:    true,
		Float:     true,
	}
}

var numericTypes = map[string]NumericFieldSpec{
	"signed char":        integer(8, true),
	"unsigned char":      integer(8, false),
	"short":              integer(16, true),
	"unsigned short":     integer(16, false),
	"int":                integer(32, true),
	"unsigned int":       integer(32, false),
	"long":               integer(64, true),
	"unsigned long":      integer(64, false),
	"long long":          integer(64, true),
	"unsigned long long": integer(64, false),

	"int8_t":   integer(8, true),
	"uint8_t":  integer(8, false),
	"int16_t":  integer(16, true),
	"uint16_t": integer(16, false),
	"int32_t":  integer(32, true),
	"uint32_t": integer(32, false),
	"int64_t":  integer(64, true),
	"uint64_t": integer(64, false),

	"float":  floating(32, 8),
	"double": floating(64, 11),
}

// Normalize collapses whitespace and drops a leading const qualifier, in
// either the C spelling or SWIG's "q(const)." form. Pointers keep their "p."
// prefix so they stay unrecognised.
func Normalize(cType string) string {
	fields := strings.Fields(cType)
	if len(fields) > 0 && fields[0] == "const" {
		fields = fields[1:]
	}
	return strings.TrimPrefix(strings.Join(fields, " "), "q(const).")
}

// Classify returns the numeric field descriptor for cType, or false when
// the type cannot be represented by a numeric block input.
func Classify(cType string) (NumericFieldSpec, bool) {
	spec, ok := numericTypes[Normalize(cType)]
	return spec, ok
}

// IsVoid reports whether cType is exactly the void return type.
func IsVoid(cType string) bool {
	return Normalize(cType) == "void"
}

// Known returns every recognised spelling, sorted.
func Known() []string {
	out := make([]string, 0, len(numericTypes))
	for k := range numericTypes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
