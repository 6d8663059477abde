package device

import "fmt"

// DataType identifies a supported device scalar type
type DataType int

const (
	None DataType = iota
	Uint8
	Uint16
	Uint32
	Uint64
	Int8
	Int16
	Int32
	Int64
	Float32
	Float64
)

// Size returns the size in bytes of a data type
func (dt DataType) Size() int64 {
	switch dt {
	case Uint8, Int8:
		return 1
	case Uint16, Int16:
		return 2
	case Uint32, Int32, Float32:
		return 4
	case Uint64, Int64, Float64:
		return 8
	default:
		return 0
	}
}

// Bits returns the width in bits of a data type
func (dt DataType) Bits() int {
	return int(dt.Size()) * 8
}

// IsFloat reports whether the type is a floating-point type
func (dt DataType) IsFloat() bool {
	return dt == Float32 || dt == Float64
}

// IsSigned reports whether the type is a signed integer type
func (dt DataType) IsSigned() bool {
	switch dt {
	case Int8, Int16, Int32, Int64:
		return true
	default:
		return false
	}
}

// Valid reports whether the type is one of the supported scalar types
func (dt DataType) Valid() bool {
	return dt > None && dt <= Float64
}

func (dt DataType) String() string {
	switch dt {
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return fmt.Sprintf("DataType(%d)", int(dt))
	}
}

// ParseDataType maps a type name as printed by String back to its DataType
func ParseDataType(name string) (DataType, error) {
	for dt := Uint8; dt <= Float64; dt++ {
		if dt.String() == name {
			return dt, nil
		}
	}
	return None, fmt.Errorf("%w: unknown data type %q", ErrInvalidArgument, name)
}

// TypeOf returns the DataType matching a sample host slice
func TypeOf(sample interface{}) DataType {
	switch sample.(type) {
	case []uint8:
		return Uint8
	case []uint16:
		return Uint16
	case []uint32:
		return Uint32
	case []uint64:
		return Uint64
	case []int8:
		return Int8
	case []int16:
		return Int16
	case []int32:
		return Int32
	case []int64:
		return Int64
	case []float32:
		return Float32
	case []float64:
		return Float64
	default:
		return None
	}
}
