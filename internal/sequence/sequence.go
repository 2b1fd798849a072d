// Package sequence implements the modular 8-bit sequence-number arithmetic
// used to label sent packets (SN) and acknowledge received ones (NESN).
package sequence

// Number is an 8-bit unsigned value with wrap-around arithmetic. Comparisons
// are on the raw value, not nearest-modular-predecessor: the protocol relies
// on equality checks such as `p.NESN == lastSent + 1` holding across wrap.
type Number uint8

// Max is the largest representable sequence number. Both zero and Max are
// valid, ordinary states — there is no reserved/sentinel value at this
// layer.
const Max Number = 255

// Add returns n + delta, wrapped mod 256.
func (n Number) Add(delta uint8) Number {
	return Number(uint8(n) + delta)
}

// Sub returns n - delta, wrapped mod 256.
func (n Number) Sub(delta uint8) Number {
	return Number(uint8(n) - delta)
}

// Next returns n + 1, wrapped mod 256. Equivalent to the original's
// pre/post-increment; Go has no in-place mutating operator here, so callers
// write `n = n.Next()`.
func (n Number) Next() Number {
	return n.Add(1)
}

// Prev returns n - 1, wrapped mod 256.
func (n Number) Prev() Number {
	return n.Sub(1)
}
