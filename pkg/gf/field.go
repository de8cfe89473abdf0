// Package gf implements table-driven arithmetic over GF(2^m) for any
// generator (reducing) polynomial up to MaxPower bits.
package gf

import (
	"errors"
	"fmt"
)

const (
	// MaxPower bounds the field width so tables stay at most 64K entries.
	MaxPower = 16

	// DivideByZero is returned by Div when the divisor is zero. It lies
	// outside every field.
	DivideByZero = -1
)

var (
	ErrEvenGenerator  = errors.New("generator polynomial must be odd")
	ErrGeneratorRange = errors.New("generator polynomial out of range")
	ErrNotPrimitive   = errors.New("generator polynomial is not primitive")
)

// Field holds the exponent, log and inverse tables of one GF(2^m)
// configuration. A Field is immutable once built and safe for concurrent use.
type Field struct {
	power   int
	order   int
	mask    int
	genPoly int

	// table maps exponent i to alpha^i, length order-1.
	table []int
	// index maps an element to its exponent, length order. index[0] is unused.
	index []int
	// inverse maps an element to its multiplicative inverse, length order.
	inverse []int
}

// New builds the tables for the given generator polynomial. The second return
// value counts how often the register sequence repeated before covering the
// field; anything other than 0 means the polynomial is not primitive and the
// tables alias some elements.
func New(genPoly int) (*Field, int, error) {
	if genPoly&1 == 0 {
		return nil, 0, fmt.Errorf("%w: %d", ErrEvenGenerator, genPoly)
	}
	if genPoly < 3 {
		return nil, 0, fmt.Errorf("%w: %d has no degree", ErrGeneratorRange, genPoly)
	}

	f := &Field{genPoly: genPoly, order: 1}
	for 2*f.order <= genPoly {
		f.order *= 2
		f.power++
	}
	if f.power > MaxPower {
		return nil, 0, fmt.Errorf("%w: degree %d exceeds %d", ErrGeneratorRange, f.power, MaxPower)
	}
	f.mask = f.order - 1

	f.table = make([]int, f.order-1)
	f.index = make([]int, f.order)
	f.inverse = make([]int, f.order)

	repeats := f.fillTables()
	if repeats == 0 {
		f.fillInverse()
	}

	return f, repeats, nil
}

// NewPrimitive is New but rejects polynomials that do not generate the
// whole multiplicative group.
func NewPrimitive(genPoly int) (*Field, error) {
	f, repeats, err := New(genPoly)
	if err != nil {
		return nil, err
	}
	if repeats != 0 {
		return nil, fmt.Errorf("%w: %d (sequence repeated %d times)", ErrNotPrimitive, genPoly, repeats)
	}
	return f, nil
}

// fillTables runs a Galois-configuration LFSR seeded with alpha^0. Each right
// shift divides by alpha, so the register walks the exponents downward from
// order-2 to 0.
func (f *Field) fillTables() int {
	taps := f.genPoly >> 1
	lfsr := 1
	repeats := 0
	for i := f.order - 2; i >= 0; i-- {
		feedback := lfsr & 1
		lfsr >>= 1
		if feedback != 0 {
			lfsr ^= taps
		}
		f.table[i] = lfsr
		f.index[lfsr] = i
		if lfsr == 1 && i > 0 {
			repeats++
		}
	}
	f.index[0] = 0
	return repeats
}

func (f *Field) fillInverse() {
	n := f.order - 1
	f.inverse[0] = 0
	for a := 1; a < f.order; a++ {
		f.inverse[a] = f.table[(n-f.index[a])%n]
	}
}

// Power returns m for GF(2^m).
func (f *Field) Power() int { return f.power }

// Order returns the field size 2^m.
func (f *Field) Order() int { return f.order }

// Mask returns order-1, the bit mask of a valid symbol.
func (f *Field) Mask() int { return f.mask }

// GeneratorPoly returns the reducing polynomial the field was built from.
func (f *Field) GeneratorPoly() int { return f.genPoly }

// Table returns a copy of the exponent table, alpha^i for i in [0, order-2].
func (f *Field) Table() []int {
	out := make([]int, len(f.table))
	copy(out, f.table)
	return out
}

// Contains reports whether a is a valid field element.
func (f *Field) Contains(a int) bool {
	return a >= 0 && a < f.order
}

// Exponent reduces e into [0, order-2].
func (f *Field) Exponent(e int) int {
	n := f.order - 1
	e %= n
	if e < 0 {
		e += n
	}
	return e
}

// Add returns a + b, which is also a - b in characteristic 2.
func (f *Field) Add(a, b int) int {
	return a ^ b
}

// Mul multiplies by adding exponents.
func (f *Field) Mul(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return f.table[(f.index[a]+f.index[b])%(f.order-1)]
}

// Div divides by subtracting exponents. It returns DivideByZero when b is 0.
func (f *Field) Div(a, b int) int {
	if b == 0 {
		return DivideByZero
	}
	if a == 0 {
		return 0
	}
	e := f.index[a] - f.index[b]
	for e < 0 {
		e += f.order - 1
	}
	return f.table[e]
}

// Pow returns alpha^i.
func (f *Field) Pow(i int) int {
	return f.table[f.Exponent(i)]
}

// Log returns the exponent of a. Log(0) is the unused sentinel 0.
func (f *Field) Log(a int) int {
	return f.index[a&f.mask]
}

// Inv returns 1/a. Inv(0) is 0.
func (f *Field) Inv(a int) int {
	return f.inverse[a&f.mask]
}

// Conv multiplies two polynomials stored lowest degree first. The result has
// len(p1)+len(p2)-1 coefficients.
func (f *Field) Conv(p1, p2 []int) []int {
	if len(p1) == 0 || len(p2) == 0 {
		return nil
	}
	out := make([]int, len(p1)+len(p2)-1)
	for i, a := range p1 {
		if a == 0 {
			continue
		}
		for j, b := range p2 {
			out[i+j] ^= f.Mul(a, b)
		}
	}
	return out
}

func (f *Field) String() string {
	return fmt.Sprintf("GF(2^%d, poly=0x%X)", f.power, f.genPoly)
}
