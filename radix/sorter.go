package radix

import (
	"fmt"

	"github.com/LideDing/rocPRIM/device"
	"github.com/LideDing/rocPRIM/functional"
	"github.com/notargets/gocca"
)

// Config selects the key and value types a Sorter is compiled for. Leave
// Values as device.None for a keys-only sorter.
type Config struct {
	Keys   device.DataType
	Values device.DataType
}

// Sorter is a device-wide radix sort bound to one device and one key/value
// type configuration. Construction compiles and caches the stage kernels;
// each Sort call then only launches them. A Sorter holds no caller buffers
// between calls and is reusable for any element count; concurrent calls on
// one Sorter are not supported.
//
// All Sort entry points implement the two-phase temp storage protocol: pass
// temp == nil to receive the required byte count through tempBytes without
// any device work, then call again with an allocation of at least that size.
type Sorter struct {
	dev     *gocca.OCCADevice
	cfg     Config
	pairs   bool
	keySize int64
	valSize int64
	source  string
	kernels map[string]*gocca.OCCAKernel
}

// stream addresses one logical key (and value) array: a device allocation
// plus element offsets into it. Caller buffers use offset 0; spare buffers
// live at carved offsets inside the temp allocation.
type stream struct {
	keys   *gocca.OCCAMemory
	keyOff int64
	vals   *gocca.OCCAMemory
	valOff int64
}

// NewSorter compiles the stage kernels for the given type configuration on
// the device
func NewSorter(dev *gocca.OCCADevice, cfg Config) (*Sorter, error) {
	if dev == nil {
		return nil, fmt.Errorf("%w: nil device", device.ErrInvalidArgument)
	}
	if !cfg.Keys.Valid() {
		return nil, fmt.Errorf("%w: unsupported key type %v", device.ErrInvalidArgument, cfg.Keys)
	}
	pairs := cfg.Values != device.None
	if pairs && !cfg.Values.Valid() {
		return nil, fmt.Errorf("%w: unsupported value type %v", device.ErrInvalidArgument, cfg.Values)
	}

	s := &Sorter{
		dev:     dev,
		cfg:     cfg,
		pairs:   pairs,
		keySize: cfg.Keys.Size(),
		source:  kernelSource(cfg.Keys, cfg.Values, pairs),
		kernels: make(map[string]*gocca.OCCAKernel),
	}
	if pairs {
		s.valSize = cfg.Values.Size()
	}

	names := []string{histogramKernel, scanKernel, scatterKeysKernel}
	if pairs {
		names[2] = scatterPairsKernel
	}
	for _, name := range names {
		kernel, err := s.buildKernel(name)
		if err != nil {
			s.Free()
			return nil, err
		}
		s.kernels[name] = kernel
	}
	return s, nil
}

// buildKernel compiles one named kernel out of the generated source
func (s *Sorter) buildKernel(name string) (*gocca.OCCAKernel, error) {
	var kernel *gocca.OCCAKernel
	var err error

	if s.dev.Mode() == "OpenMP" {
		// Workaround for OCCA bug: OpenMP doesn't get default -O3 flag
		props := gocca.JsonParse(`{"compiler_flags": "-O3"}`)
		defer props.Free()
		kernel, err = s.dev.BuildKernelFromString(s.source, name, props)
	} else {
		kernel, err = s.dev.BuildKernelFromString(s.source, name, nil)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: building kernel %s: %v", device.ErrDeviceFault, name, err)
	}
	if kernel == nil {
		return nil, fmt.Errorf("%w: kernel build returned nil for %s", device.ErrDeviceFault, name)
	}
	return kernel, nil
}

// Free releases the compiled kernels. The Sorter must not be used afterwards.
func (s *Sorter) Free() {
	for _, kernel := range s.kernels {
		kernel.Free()
	}
}

// KeyBits returns the key width in bits for this Sorter's key type
func (s *Sorter) KeyBits() int {
	return s.cfg.Keys.Bits()
}

// TempBytes reports the exact temporary storage requirement for sorting
// count elements over [startBit, endBit) without touching any data. The
// result is deterministic in its arguments; executing with exactly this many
// bytes never fails for lack of space. endBit == 0 selects the full key
// width.
func (s *Sorter) TempBytes(count, startBit, endBit int) (int64, error) {
	endBit, err := s.checkArgs(count, startBit, endBit)
	if err != nil {
		return 0, err
	}
	l := computeLayout(count, startBit, endBit, s.keySize, s.valSize)
	return l.total, nil
}

// SortKeys sorts count keys ascending over the bit window [startBit,
// endBit), reading keysIn and writing keysOut. keysIn is never written.
// With temp == nil this is a sizing call: the required temp byte count is
// written through tempBytes and nothing else happens.
func (s *Sorter) SortKeys(temp *gocca.OCCAMemory, tempBytes *int64,
	keysIn, keysOut *gocca.OCCAMemory, count, startBit, endBit int) error {
	return s.sort(temp, tempBytes, keysIn, keysOut, nil, nil,
		count, startBit, endBit, false, false)
}

// SortKeysDescending is SortKeys with the comparison domain reversed. Ties
// keep their input order, same as ascending.
func (s *Sorter) SortKeysDescending(temp *gocca.OCCAMemory, tempBytes *int64,
	keysIn, keysOut *gocca.OCCAMemory, count, startBit, endBit int) error {
	return s.sort(temp, tempBytes, keysIn, keysOut, nil, nil,
		count, startBit, endBit, true, false)
}

// SortPairs sorts count (key, value) pairs ascending over the bit window;
// each value travels with its key. Requires a Sorter configured with a value
// type.
func (s *Sorter) SortPairs(temp *gocca.OCCAMemory, tempBytes *int64,
	keysIn, keysOut, valuesIn, valuesOut *gocca.OCCAMemory,
	count, startBit, endBit int) error {
	return s.sort(temp, tempBytes, keysIn, keysOut, valuesIn, valuesOut,
		count, startBit, endBit, false, true)
}

// SortPairsDescending is SortPairs with the comparison domain reversed
func (s *Sorter) SortPairsDescending(temp *gocca.OCCAMemory, tempBytes *int64,
	keysIn, keysOut, valuesIn, valuesOut *gocca.OCCAMemory,
	count, startBit, endBit int) error {
	return s.sort(temp, tempBytes, keysIn, keysOut, valuesIn, valuesOut,
		count, startBit, endBit, true, true)
}

// checkArgs validates count and the bit window, resolving endBit == 0 to the
// full key width
func (s *Sorter) checkArgs(count, startBit, endBit int) (int, error) {
	if count < 0 {
		return 0, fmt.Errorf("%w: negative element count %d", device.ErrInvalidArgument, count)
	}
	if endBit == 0 {
		endBit = s.KeyBits()
	}
	if startBit < 0 || startBit >= endBit || endBit > s.KeyBits() {
		return 0, fmt.Errorf("%w: bit window [%d, %d) for %d-bit keys",
			device.ErrInvalidArgument, startBit, endBit, s.KeyBits())
	}
	return endBit, nil
}

// sort validates, sizes, and runs the pass chain. All validation happens
// before the first kernel launch; a sizing call returns before any device
// work.
func (s *Sorter) sort(temp *gocca.OCCAMemory, tempBytes *int64,
	keysIn, keysOut, valuesIn, valuesOut *gocca.OCCAMemory,
	count, startBit, endBit int, descending, pairs bool) error {

	if tempBytes == nil {
		return fmt.Errorf("%w: nil temp size pointer", device.ErrInvalidArgument)
	}
	if pairs != s.pairs {
		if pairs {
			return fmt.Errorf("%w: pair sort on a keys-only sorter", device.ErrInvalidArgument)
		}
		return fmt.Errorf("%w: key-only sort on a pair sorter", device.ErrInvalidArgument)
	}
	endBit, err := s.checkArgs(count, startBit, endBit)
	if err != nil {
		return err
	}

	layout := computeLayout(count, startBit, endBit, s.keySize, s.valSize)
	if temp == nil {
		*tempBytes = layout.total
		return nil
	}

	if count == 0 {
		return nil
	}
	if keysIn == nil || keysOut == nil {
		return fmt.Errorf("%w: nil key buffer with count %d", device.ErrInvalidArgument, count)
	}
	if pairs && (valuesIn == nil || valuesOut == nil) {
		return fmt.Errorf("%w: nil value buffer with count %d", device.ErrInvalidArgument, count)
	}
	if *tempBytes < layout.total {
		return fmt.Errorf("%w: temp storage %d bytes, need %d",
			device.ErrInvalidArgument, *tempBytes, layout.total)
	}

	in := stream{keys: keysIn, vals: valuesIn}
	out := stream{keys: keysOut, vals: valuesOut}
	var spare [2]stream
	for i := 0; i < 2; i++ {
		if layout.keys[i] < 0 {
			continue
		}
		spare[i] = stream{keys: temp, keyOff: layout.keys[i] / s.keySize}
		if pairs {
			spare[i].vals = temp
			spare[i].valOff = layout.vals[i] / s.valSize
		}
	}
	tableOff := layout.table / 8

	// Least-significant window first; the chain is laid out backwards from
	// the output so the final pass lands in keysOut whatever the parity.
	src := in
	for p := 0; p < layout.passes; p++ {
		shift := startBit + p*radixBits
		bits := functional.Min(radixBits, endBit-shift)
		mask := 1<<uint(bits) - 1
		xorv := 0
		if descending {
			xorv = mask
		}

		dst := out
		if p < layout.passes-1 {
			dst = spare[(layout.passes-2-p)%2]
		}

		if err := s.runPass(temp, tableOff, src, dst, count, layout.groups,
			shift, mask, xorv); err != nil {
			return err
		}
		src = dst
	}
	return nil
}

// runPass executes one histogram -> scan -> scatter sequence. Finish after
// each launch is the cross-group barrier: every group's stage-N writes are
// visible before any group starts stage N+1.
func (s *Sorter) runPass(temp *gocca.OCCAMemory, tableOff int64,
	src, dst stream, count, groups, shift, mask, xorv int) error {

	n := int64(count)

	err := s.kernels[histogramKernel].RunWithArgs(n, groups,
		src.keys, src.keyOff, temp, tableOff, shift, mask, xorv)
	if err != nil {
		return fmt.Errorf("%w: histogram at bit %d: %v", device.ErrDeviceFault, shift, err)
	}
	s.dev.Finish()

	err = s.kernels[scanKernel].RunWithArgs(tableLen(groups), temp, tableOff)
	if err != nil {
		return fmt.Errorf("%w: offset scan at bit %d: %v", device.ErrDeviceFault, shift, err)
	}
	s.dev.Finish()

	if s.pairs {
		err = s.kernels[scatterPairsKernel].RunWithArgs(n, groups,
			src.keys, src.keyOff, dst.keys, dst.keyOff,
			src.vals, src.valOff, dst.vals, dst.valOff,
			temp, tableOff, shift, mask, xorv)
	} else {
		err = s.kernels[scatterKeysKernel].RunWithArgs(n, groups,
			src.keys, src.keyOff, dst.keys, dst.keyOff,
			temp, tableOff, shift, mask, xorv)
	}
	if err != nil {
		return fmt.Errorf("%w: scatter at bit %d: %v", device.ErrDeviceFault, shift, err)
	}
	s.dev.Finish()

	return nil
}
