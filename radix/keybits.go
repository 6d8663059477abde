package radix

import (
	"github.com/LideDing/rocPRIM/device"
)

// CanonicalBits maps a key's raw bit pattern (in the low bits of raw) into an
// unsigned domain whose natural ordering matches the key type's ordering:
// identity for unsigned integers, sign-bit flip for signed integers, and the
// IEEE-754 trick for floats (flip all bits when negative, else flip the sign
// bit). Negative zero orders just below positive zero and NaNs order by their
// transformed bit patterns, deterministically.
//
// keyBitsExpr generates the device-side macro for the same mapping; the two
// live side by side in this file so the host reference and the kernels cannot
// drift apart.
func CanonicalBits(dt device.DataType, raw uint64) uint64 {
	switch dt {
	case device.Int8:
		return raw ^ 0x80
	case device.Int16:
		return raw ^ 0x8000
	case device.Int32:
		return raw ^ 0x80000000
	case device.Int64:
		return raw ^ 0x8000000000000000
	case device.Float32:
		u := uint32(raw)
		if u>>31 != 0 {
			u = ^u
		} else {
			u ^= 0x80000000
		}
		return uint64(u)
	case device.Float64:
		if raw>>63 != 0 {
			return ^raw
		}
		return raw ^ 0x8000000000000000
	default:
		return raw
	}
}

// WindowValue reduces a key's canonical bits to the active [startBit, endBit)
// window, the quantity the sort actually orders by
func WindowValue(dt device.DataType, raw uint64, startBit, endBit int) uint64 {
	bits := CanonicalBits(dt, raw) >> uint(startBit)
	width := endBit - startBit
	if width >= 64 {
		return bits
	}
	return bits & (1<<uint(width) - 1)
}

// keyBitsExpr returns the C expression body of the RS_KEY_BITS(k) macro for a
// key type, operating on the type's unsigned carrier (rs_key_t)
func keyBitsExpr(dt device.DataType) string {
	switch dt {
	case device.Int8:
		return "((rs_key_t)((k) ^ (rs_key_t)0x80))"
	case device.Int16:
		return "((rs_key_t)((k) ^ (rs_key_t)0x8000))"
	case device.Int32:
		return "((k) ^ (rs_key_t)0x80000000u)"
	case device.Int64:
		return "((k) ^ (rs_key_t)0x8000000000000000ull)"
	case device.Float32:
		return "((k) ^ (((k) >> 31) != 0u ? (rs_key_t)0xFFFFFFFFu : (rs_key_t)0x80000000u))"
	case device.Float64:
		return "((k) ^ (((k) >> 63) != 0ull ? (rs_key_t)0xFFFFFFFFFFFFFFFFull : (rs_key_t)0x8000000000000000ull))"
	default:
		return "(k)"
	}
}

// carrierCName returns the unsigned C type the kernels use to move a scalar of
// the given width; keys and values travel as raw bit patterns on the device
func carrierCName(dt device.DataType) string {
	switch dt.Size() {
	case 1:
		return "unsigned char"
	case 2:
		return "unsigned short"
	case 4:
		return "unsigned int"
	default:
		return "unsigned long long"
	}
}
