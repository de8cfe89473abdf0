package rs

import "fmt"

// Encode computes numRoots parity symbols for buf[:messageLength] and writes
// them to buf[messageLength:messageLength+numRoots]. The parity region is
// cleared first. The message symbols are not modified.
//
// The parity is the remainder of m(x)*x^numRoots divided by g(x), computed
// with a feedback register of numRoots+1 cells that slides along the message.
func (c *Codec) Encode(buf []int, messageLength int) error {
	r := c.numRoots
	if messageLength < 1 {
		return ErrMessageLength
	}
	if len(buf) < messageLength+r {
		return fmt.Errorf("%w: have %d, need %d", ErrBufferSize, len(buf), messageLength+r)
	}
	blockLength := messageLength + r
	if err := c.checkBlockLength(blockLength); err != nil {
		return err
	}
	if err := c.checkSymbols(buf[:messageLength]); err != nil {
		return err
	}

	block := buf[:blockLength]
	parity := block[messageLength:]
	for i := range parity {
		parity[i] = 0
	}

	reg := make([]int, r+1)
	copy(reg, block)
	for i := 0; i < messageLength; i++ {
		feedback := reg[0]
		for j := 1; j <= r; j++ {
			reg[j-1] = c.field.Mul(feedback, c.genPoly[r-j]) ^ reg[j]
		}
		if next := i + r + 1; next < blockLength {
			reg[r] = block[next]
		} else {
			reg[r] = 0
		}
	}

	copy(parity, reg[:r])
	return nil
}
