package main

import (
	"fmt"

	"github.com/LideDing/rocPRIM/device"
	"github.com/LideDing/rocPRIM/radix"
	"github.com/LideDing/rocPRIM/utils"
	"github.com/google/go-cmp/cmp"
	"github.com/notargets/gocca"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check device sort output against the host reference over the case sweep",
	RunE:  runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, cases, err := loadSweep(sweepFile)
	if err != nil {
		return err
	}

	dev, err := device.NewDevice(deviceConfigs()...)
	if err != nil {
		return err
	}
	defer dev.Free()
	logger.Info("device ready", zap.String("mode", dev.Mode()))

	sizes := utils.TestSizes(seed, cfg.ExtraSizes, cfg.MaxSize)
	failed := 0
	for _, c := range cases {
		log := logger.With(zap.String("case", c.String()))
		if err := verifyCase(dev, c, sizes); err != nil {
			log.Error("case failed", zap.Error(err))
			failed++
			continue
		}
		log.Info("case passed", zap.Int("sizes", len(sizes)))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d cases failed", failed, len(cases))
	}
	logger.Info("sweep passed",
		zap.Int("cases", len(cases)), zap.Int("sizes", len(sizes)))
	return nil
}

// verifyCase dispatches on the key type to the generic sweep
func verifyCase(dev *gocca.OCCADevice, c resolvedCase, sizes []int) error {
	switch c.keys {
	case device.Uint8:
		return verifyKeyType[uint8](dev, c, sizes)
	case device.Uint16:
		return verifyKeyType[uint16](dev, c, sizes)
	case device.Uint32:
		return verifyKeyType[uint32](dev, c, sizes)
	case device.Uint64:
		return verifyKeyType[uint64](dev, c, sizes)
	case device.Int8:
		return verifyKeyType[int8](dev, c, sizes)
	case device.Int16:
		return verifyKeyType[int16](dev, c, sizes)
	case device.Int32:
		return verifyKeyType[int32](dev, c, sizes)
	case device.Int64:
		return verifyKeyType[int64](dev, c, sizes)
	case device.Float32:
		return verifyKeyType[float32](dev, c, sizes)
	case device.Float64:
		return verifyKeyType[float64](dev, c, sizes)
	}
	return fmt.Errorf("%w: key type %v", device.ErrInvalidArgument, c.keys)
}

// Pair payloads are index values moved as raw bit patterns, so the value
// stream only needs the configured type's width, not its interpretation
func verifyKeyType[K utils.Scalar](dev *gocca.OCCADevice, c resolvedCase, sizes []int) error {
	if c.values == device.None {
		return verifyKeys[K](dev, c, sizes)
	}
	switch c.values.Size() {
	case 1:
		return verifyPairs[K, uint8](dev, c, sizes)
	case 2:
		return verifyPairs[K, uint16](dev, c, sizes)
	case 4:
		return verifyPairs[K, uint32](dev, c, sizes)
	default:
		return verifyPairs[K, uint64](dev, c, sizes)
	}
}

// verifyKeys runs one keys-only case over the size ladder, computing the
// host reference concurrently while the device sorts
func verifyKeys[K utils.Scalar](dev *gocca.OCCADevice, c resolvedCase, sizes []int) error {
	s, err := radix.NewSorter(dev, radix.Config{Keys: c.keys})
	if err != nil {
		return err
	}
	defer s.Free()

	for _, n := range sizes {
		keys := utils.RandomData[K](seed^uint64(n)*2654435761, n)

		var want []K
		g := new(errgroup.Group)
		g.Go(func() error {
			want = utils.ReferenceSortKeys(c.keys, keys, c.startBit, c.endBit, c.descending)
			return nil
		})

		got, err := deviceSortKeys(dev, s, c, keys)
		if err != nil {
			return fmt.Errorf("n=%d: %w", n, err)
		}
		g.Wait()

		if diff := cmp.Diff(want, got); diff != "" {
			return fmt.Errorf("n=%d: device order differs from reference (-want +got):\n%s", n, diff)
		}
	}
	return nil
}

func verifyPairs[K utils.Scalar, V utils.Scalar](dev *gocca.OCCADevice,
	c resolvedCase, sizes []int) error {
	s, err := radix.NewSorter(dev, radix.Config{Keys: c.keys, Values: c.values})
	if err != nil {
		return err
	}
	defer s.Free()

	for _, n := range sizes {
		keys := utils.RandomData[K](seed^uint64(n)*2654435761, n)
		values := utils.Iota[V](n)

		var wantKeys []K
		var wantVals []V
		g := new(errgroup.Group)
		g.Go(func() error {
			wantKeys, wantVals = utils.ReferenceSortPairs(c.keys, keys, values,
				c.startBit, c.endBit, c.descending)
			return nil
		})

		gotKeys, gotVals, err := deviceSortPairs(dev, s, c, keys, values)
		if err != nil {
			return fmt.Errorf("n=%d: %w", n, err)
		}
		g.Wait()

		if diff := cmp.Diff(wantKeys, gotKeys); diff != "" {
			return fmt.Errorf("n=%d: keys differ from reference (-want +got):\n%s", n, diff)
		}
		if diff := cmp.Diff(wantVals, gotVals); diff != "" {
			return fmt.Errorf("n=%d: values did not travel with their keys (-want +got):\n%s", n, diff)
		}
	}
	return nil
}

// deviceSortKeys pushes one key array through the two-phase protocol and
// returns the device's output
func deviceSortKeys[K utils.Scalar](dev *gocca.OCCADevice, s *radix.Sorter,
	c resolvedCase, keys []K) ([]K, error) {

	n := len(keys)
	keysIn, err := device.Upload(dev, keys)
	if err != nil {
		return nil, err
	}
	defer keysIn.Free()
	keysOut, err := device.Alloc(dev, int64(n)*c.keys.Size())
	if err != nil {
		return nil, err
	}
	defer keysOut.Free()

	sortCall := s.SortKeys
	if c.descending {
		sortCall = s.SortKeysDescending
	}

	var tempBytes int64
	if err := sortCall(nil, &tempBytes, nil, nil, n, c.startBit, c.endBit); err != nil {
		return nil, err
	}
	temp, err := device.Alloc(dev, tempBytes)
	if err != nil {
		return nil, err
	}
	defer temp.Free()

	if err := sortCall(temp, &tempBytes, keysIn, keysOut, n, c.startBit, c.endBit); err != nil {
		return nil, err
	}

	out := make([]K, n)
	if err := device.Download(keysOut, out); err != nil {
		return nil, err
	}
	return out, nil
}

func deviceSortPairs[K utils.Scalar, V utils.Scalar](dev *gocca.OCCADevice,
	s *radix.Sorter, c resolvedCase, keys []K, values []V) ([]K, []V, error) {

	n := len(keys)
	keysIn, err := device.Upload(dev, keys)
	if err != nil {
		return nil, nil, err
	}
	defer keysIn.Free()
	valuesIn, err := device.Upload(dev, values)
	if err != nil {
		return nil, nil, err
	}
	defer valuesIn.Free()
	keysOut, err := device.Alloc(dev, int64(n)*c.keys.Size())
	if err != nil {
		return nil, nil, err
	}
	defer keysOut.Free()
	valuesOut, err := device.Alloc(dev, int64(n)*c.values.Size())
	if err != nil {
		return nil, nil, err
	}
	defer valuesOut.Free()

	sortCall := s.SortPairs
	if c.descending {
		sortCall = s.SortPairsDescending
	}

	var tempBytes int64
	if err := sortCall(nil, &tempBytes, nil, nil, nil, nil, n, c.startBit, c.endBit); err != nil {
		return nil, nil, err
	}
	temp, err := device.Alloc(dev, tempBytes)
	if err != nil {
		return nil, nil, err
	}
	defer temp.Free()

	if err := sortCall(temp, &tempBytes, keysIn, keysOut,
		valuesIn, valuesOut, n, c.startBit, c.endBit); err != nil {
		return nil, nil, err
	}

	outKeys := make([]K, n)
	outVals := make([]V, n)
	if err := device.Download(keysOut, outKeys); err != nil {
		return nil, nil, err
	}
	if err := device.Download(valuesOut, outVals); err != nil {
		return nil, nil, err
	}
	return outKeys, outVals, nil
}
