package rs

import (
	"fmt"
	"math"
)

// InvalidBlock is the Decode result for a block that cannot be decoded at
// all: wrong length or symbols outside the field. Such a block is left
// untouched.
const InvalidBlock = math.MinInt32

// Session is the scratch state of one decode call. It is allocated per call
// and never shared, so concurrent decodes on one Codec do not interfere.
type Session struct {
	// Syndromes holds one value per generator root, as received.
	Syndromes []int
	// ErrorLocator is sigma(x), lowest degree first.
	ErrorLocator []int
	// ErrorPositions are block indices found by the Chien search.
	ErrorPositions []int
	// LocatorRoots are the exponents e with sigma(a^e) = 0, one per position.
	LocatorRoots []int
	// ErrorEvaluator is omega(x) = sigma(x)S(x) mod x^numRoots, truncated to
	// ErrorCount terms.
	ErrorEvaluator []int
	// ErrorMagnitudes are XORed into the block at ErrorPositions.
	ErrorMagnitudes []int
	// ErrorCount is the number of locations found by the Chien search.
	ErrorCount int
	// Residual counts nonzero syndromes left in the block when decoding stops.
	Residual int
	// Result is what Decode returns.
	Result int
	// Err is set when Result is negative.
	Err error
}

// Failed reports whether the decode did not yield a valid codeword.
func (s *Session) Failed() bool { return s.Result < 0 }

// Decode corrects block in place and returns the number of symbols
// corrected. A negative return means failure: either InvalidBlock, or minus
// the number of syndromes still nonzero after the attempted correction, in
// which case block may have been modified.
func (c *Codec) Decode(block []int) int {
	return c.DecodeSession(block).Result
}

// Correct is Decode with an error instead of a negative count.
func (c *Codec) Correct(block []int) (int, error) {
	s := c.DecodeSession(block)
	if s.Failed() {
		return 0, s.Err
	}
	return s.Result, nil
}

// DecodeSession runs the decoder and returns every intermediate stage.
func (c *Codec) DecodeSession(block []int) *Session {
	s := &Session{}

	if err := c.checkBlockLength(len(block)); err != nil {
		s.Result, s.Err = InvalidBlock, err
		return s
	}
	if err := c.checkSymbols(block); err != nil {
		s.Result, s.Err = InvalidBlock, err
		return s
	}

	s.Syndromes = make([]int, c.numRoots)
	received := c.syndromes(block, s.Syndromes)
	if received == 0 {
		return s
	}

	s.ErrorLocator = c.berlekampMassey(s.Syndromes)
	s.ErrorPositions, s.LocatorRoots = c.chienSearch(s.ErrorLocator, len(block))
	s.ErrorCount = len(s.ErrorPositions)
	if deg := degree(s.ErrorLocator); deg != s.ErrorCount {
		// sigma of degree L must have L distinct roots inside the block
		s.Residual = received
		s.Result = -s.Residual
		s.Err = fmt.Errorf("%w: locator has degree %d but %d roots in the block",
			ErrUncorrectable, deg, s.ErrorCount)
		return s
	}
	s.ErrorEvaluator = c.errorEvaluator(s.Syndromes, s.ErrorLocator, s.ErrorCount)
	s.ErrorMagnitudes = c.forney(s.ErrorEvaluator, s.ErrorLocator, s.ErrorPositions, s.LocatorRoots, len(block))

	for i, pos := range s.ErrorPositions {
		block[pos] ^= s.ErrorMagnitudes[i]
	}

	s.Residual = c.syndromes(block, make([]int, c.numRoots))
	if s.Residual != 0 {
		s.Result = -s.Residual
		s.Err = fmt.Errorf("%w: %d of %d syndromes nonzero after %d corrections",
			ErrUncorrectable, s.Residual, c.numRoots, s.ErrorCount)
		return s
	}

	s.Result = s.ErrorCount
	return s
}

func degree(p []int) int {
	for i := len(p) - 1; i > 0; i-- {
		if p[i] != 0 {
			return i
		}
	}
	return 0
}

// syndromes evaluates the block polynomial at a^(b+i) for every root with
// Horner's rule and returns how many evaluations are nonzero.
func (c *Codec) syndromes(block, out []int) int {
	nonzero := 0
	for i := range out {
		x := c.field.Pow(c.firstRoot + i)
		s := 0
		for _, sym := range block[:len(block)-1] {
			s = c.field.Mul(s^sym, x)
		}
		s ^= block[len(block)-1]
		out[i] = s
		if s != 0 {
			nonzero++
		}
	}
	return nonzero
}

// berlekampMassey finds the shortest LFSR, sigma(x), generating the
// syndrome sequence. corr is the correction polynomial, starting at x and
// multiplied by x after every step.
func (c *Codec) berlekampMassey(syn []int) []int {
	r := c.numRoots
	f := c.field

	sigma := make([]int, r+1)
	next := make([]int, r+1)
	corr := make([]int, r+1)
	sigma[0] = 1
	corr[1] = 1
	order := 0

	for k := 1; k <= r; k++ {
		e := syn[k-1]
		for i := 1; i <= order; i++ {
			e ^= f.Mul(sigma[i], syn[k-1-i])
		}

		if e != 0 {
			for i := range next {
				next[i] = sigma[i] ^ f.Mul(e, corr[i])
			}
			if 2*order < k {
				inv := f.Inv(e)
				for i := range corr {
					corr[i] = f.Mul(sigma[i], inv)
				}
				order = k - order
			}
			sigma, next = next, sigma
		}

		copy(corr[1:], corr[:r])
		corr[0] = 0
	}

	return sigma
}

// chienSearch tries every block position. Position j of an n-symbol block
// carries x^(n-1-j), so its locator root is a^(j+order-1-(n-1)), which is
// where the shortening offset comes from.
func (c *Codec) chienSearch(sigma []int, n int) (positions, roots []int) {
	f := c.field
	for j := 0; j < n; j++ {
		y := f.Exponent(j + c.fieldOrder - n)
		v := sigma[0]
		for i := 1; i < len(sigma); i++ {
			if sigma[i] != 0 {
				v ^= f.Pow(f.Log(sigma[i]) + y*i)
			}
		}
		if v == 0 {
			positions = append(positions, j)
			roots = append(roots, y)
		}
	}
	return positions, roots
}

func (c *Codec) errorEvaluator(syn, sigma []int, count int) []int {
	if count > len(syn) {
		count = len(syn)
	}
	omega := make([]int, count)
	for i := range omega {
		v := syn[i]
		for j := 1; j <= i && j < len(sigma); j++ {
			v ^= c.field.Mul(syn[i-j], sigma[j])
		}
		omega[i] = v
	}
	return omega
}

// forney computes Y = X^(1-b) * omega(X^-1) / sigma'(X^-1) for each located
// error, with X = a^(n-1-pos) and b the first root. The formal derivative
// keeps only the odd-degree terms of sigma. A zero derivative gives a zero
// magnitude and leaves the failure to verification.
func (c *Codec) forney(omega, sigma, positions, roots []int, n int) []int {
	f := c.field
	mags := make([]int, len(positions))
	for k, pos := range positions {
		y := roots[k]

		num := 0
		for i, w := range omega {
			if w != 0 {
				num ^= f.Pow(f.Log(w) + y*i)
			}
		}

		den := 0
		for j := 1; j < len(sigma); j += 2 {
			if sigma[j] != 0 {
				den ^= f.Pow(f.Log(sigma[j]) + y*(j-1))
			}
		}
		if den == 0 || num == 0 {
			continue
		}

		x := (n - 1 - pos) * (1 - c.firstRoot)
		mags[k] = f.Mul(f.Mul(num, f.Pow(x)), f.Inv(den))
	}
	return mags
}
