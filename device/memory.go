package device

import (
	"fmt"
	"unsafe"

	"github.com/notargets/gocca"
)

// Alloc reserves uninitialized device memory. Allocation failures surface as
// ErrResourceExhausted rather than a panic from the underlying runtime.
func Alloc(dev *gocca.OCCADevice, bytes int64) (mem *gocca.OCCAMemory, err error) {
	if dev == nil {
		return nil, fmt.Errorf("%w: nil device", ErrInvalidArgument)
	}
	if bytes <= 0 {
		return nil, fmt.Errorf("%w: allocation of %d bytes", ErrInvalidArgument, bytes)
	}
	defer func() {
		if r := recover(); r != nil {
			mem = nil
			err = fmt.Errorf("%w: allocating %d bytes: %v", ErrResourceExhausted, bytes, r)
		}
	}()
	mem = dev.Malloc(bytes, nil, nil)
	if mem == nil {
		err = fmt.Errorf("%w: allocating %d bytes", ErrResourceExhausted, bytes)
	}
	return mem, err
}

// Upload allocates device memory sized for the host slice and copies the slice
// into it. The slice must be one of the supported scalar slice types.
func Upload(dev *gocca.OCCADevice, data interface{}) (mem *gocca.OCCAMemory, err error) {
	if dev == nil {
		return nil, fmt.Errorf("%w: nil device", ErrInvalidArgument)
	}
	ptr, bytes, err := slicePointer(data)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			mem = nil
			err = fmt.Errorf("%w: uploading %d bytes: %v", ErrResourceExhausted, bytes, r)
		}
	}()
	mem = dev.Malloc(bytes, ptr, nil)
	if mem == nil {
		err = fmt.Errorf("%w: uploading %d bytes", ErrResourceExhausted, bytes)
	}
	return mem, err
}

// Download copies device memory back into the host slice, transferring exactly
// the slice's byte length from the start of the allocation
func Download(mem *gocca.OCCAMemory, dst interface{}) error {
	return DownloadAt(mem, dst, 0)
}

// DownloadAt copies from device memory starting at a byte offset into the host
// slice. Useful for reading a carved region out of a larger allocation.
func DownloadAt(mem *gocca.OCCAMemory, dst interface{}, offsetBytes int64) error {
	if mem == nil {
		return fmt.Errorf("%w: nil device memory", ErrInvalidArgument)
	}
	ptr, bytes, err := slicePointer(dst)
	if err != nil {
		return err
	}
	if offsetBytes == 0 {
		mem.CopyTo(ptr, bytes)
	} else {
		mem.CopyToWithOffset(ptr, bytes, offsetBytes)
	}
	return nil
}

// UploadAt copies the host slice into device memory starting at a byte offset
func UploadAt(mem *gocca.OCCAMemory, src interface{}, offsetBytes int64) error {
	if mem == nil {
		return fmt.Errorf("%w: nil device memory", ErrInvalidArgument)
	}
	ptr, bytes, err := slicePointer(src)
	if err != nil {
		return err
	}
	if offsetBytes == 0 {
		mem.CopyFrom(ptr, bytes)
	} else {
		mem.CopyFromWithOffset(ptr, bytes, offsetBytes)
	}
	return nil
}

// slicePointer resolves a supported host slice to its base pointer and byte
// length
func slicePointer(data interface{}) (unsafe.Pointer, int64, error) {
	switch s := data.(type) {
	case []uint8:
		if len(s) == 0 {
			break
		}
		return unsafe.Pointer(&s[0]), int64(len(s)), nil
	case []uint16:
		if len(s) == 0 {
			break
		}
		return unsafe.Pointer(&s[0]), int64(len(s) * 2), nil
	case []uint32:
		if len(s) == 0 {
			break
		}
		return unsafe.Pointer(&s[0]), int64(len(s) * 4), nil
	case []uint64:
		if len(s) == 0 {
			break
		}
		return unsafe.Pointer(&s[0]), int64(len(s) * 8), nil
	case []int8:
		if len(s) == 0 {
			break
		}
		return unsafe.Pointer(&s[0]), int64(len(s)), nil
	case []int16:
		if len(s) == 0 {
			break
		}
		return unsafe.Pointer(&s[0]), int64(len(s) * 2), nil
	case []int32:
		if len(s) == 0 {
			break
		}
		return unsafe.Pointer(&s[0]), int64(len(s) * 4), nil
	case []int64:
		if len(s) == 0 {
			break
		}
		return unsafe.Pointer(&s[0]), int64(len(s) * 8), nil
	case []float32:
		if len(s) == 0 {
			break
		}
		return unsafe.Pointer(&s[0]), int64(len(s) * 4), nil
	case []float64:
		if len(s) == 0 {
			break
		}
		return unsafe.Pointer(&s[0]), int64(len(s) * 8), nil
	default:
		return nil, 0, fmt.Errorf("%w: unsupported host type %T", ErrInvalidArgument, data)
	}
	return nil, 0, fmt.Errorf("%w: empty host slice", ErrInvalidArgument)
}
