// Package rs implements a systematic Reed-Solomon codec over a gf.Field.
//
// Codewords are stored highest-degree symbol first: the message occupies the
// front of the block and the parity symbols follow it. Blocks shorter than
// the field's natural length are shortened codes, the missing leading
// symbols being implicitly zero.
package rs

import (
	"errors"
	"fmt"

	"github.com/Davincible/rscodec/pkg/gf"
)

var (
	ErrNilField      = errors.New("field is required")
	ErrRootCount     = errors.New("invalid number of generator roots")
	ErrBufferSize    = errors.New("buffer too short for message and parity")
	ErrBlockLength   = errors.New("invalid block length")
	ErrSymbolRange   = errors.New("symbol outside field")
	ErrUncorrectable = errors.New("block could not be corrected")
	ErrMessageLength = errors.New("message must contain at least one symbol")
)

// Codec holds the generator polynomial for one (field, first root, parity)
// configuration. It keeps only read-only state, so a single Codec can encode
// and decode from many goroutines at once.
type Codec struct {
	field      *gf.Field
	firstRoot  int
	numRoots   int
	fieldOrder int

	// genPoly has numRoots+1 coefficients, lowest degree first.
	genPoly []int
}

// New builds the generator polynomial
//
//	g(x) = (x + a^b)(x + a^(b+1)) ... (x + a^(b+numRoots-1))
//
// where b is firstRoot. numRoots parity symbols correct up to numRoots/2
// symbol errors.
func New(field *gf.Field, firstRoot, numRoots int) (*Codec, error) {
	if field == nil {
		return nil, ErrNilField
	}
	if numRoots < 1 || numRoots >= field.Order()-1 {
		return nil, fmt.Errorf("%w: %d (must be in [1, %d))", ErrRootCount, numRoots, field.Order()-1)
	}

	c := &Codec{
		field:      field,
		firstRoot:  field.Exponent(firstRoot),
		numRoots:   numRoots,
		fieldOrder: field.Order(),
	}

	c.genPoly = []int{field.Pow(c.firstRoot), 1}
	factor := []int{0, 1}
	for i := 1; i < numRoots; i++ {
		factor[0] = field.Pow(c.firstRoot + i)
		c.genPoly = field.Conv(c.genPoly, factor)
	}

	return c, nil
}

// Field returns the field the codec operates in.
func (c *Codec) Field() *gf.Field { return c.field }

// FirstRoot returns the first consecutive root exponent, reduced modulo order-1.
func (c *Codec) FirstRoot() int { return c.firstRoot }

// NumRoots returns the number of parity symbols.
func (c *Codec) NumRoots() int { return c.numRoots }

// FieldOrder returns the size of the underlying field.
func (c *Codec) FieldOrder() int { return c.fieldOrder }

// Capability returns the number of symbol errors the code is guaranteed to correct.
func (c *Codec) Capability() int { return c.numRoots / 2 }

// MaxBlockLength returns the natural (unshortened) block length.
func (c *Codec) MaxBlockLength() int { return c.fieldOrder - 1 }

// GeneratorPoly returns a copy of the generator coefficients, lowest degree first.
func (c *Codec) GeneratorPoly() []int {
	out := make([]int, len(c.genPoly))
	copy(out, c.genPoly)
	return out
}

func (c *Codec) String() string {
	return fmt.Sprintf("RS(%s, fcr=%d, roots=%d)", c.field, c.firstRoot, c.numRoots)
}

func (c *Codec) checkBlockLength(n int) error {
	if n <= c.numRoots || n > c.fieldOrder-1 {
		return fmt.Errorf("%w: %d (must be in (%d, %d])", ErrBlockLength, n, c.numRoots, c.fieldOrder-1)
	}
	return nil
}

func (c *Codec) checkSymbols(symbols []int) error {
	for i, s := range symbols {
		if !c.field.Contains(s) {
			return fmt.Errorf("%w: symbol %d is %d, field order %d", ErrSymbolRange, i, s, c.fieldOrder)
		}
	}
	return nil
}
