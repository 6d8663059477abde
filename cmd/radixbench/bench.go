package main

import (
	"fmt"
	"time"

	"github.com/LideDing/rocPRIM/device"
	"github.com/LideDing/rocPRIM/radix"
	"github.com/LideDing/rocPRIM/utils"
	"github.com/dustin/go-humanize"
	"github.com/notargets/gocca"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

var (
	benchSizes []int
	benchReps  int
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Time device sorts across element counts and report throughput",
	RunE:  runBench,
}

func init() {
	benchCmd.Flags().IntSliceVar(&benchSizes, "sizes",
		[]int{1 << 16, 1 << 20, 1 << 22}, "element counts to benchmark")
	benchCmd.Flags().IntVar(&benchReps, "reps", 10,
		"timed repetitions per configuration")
}

func runBench(cmd *cobra.Command, args []string) error {
	_, cases, err := loadSweep(sweepFile)
	if err != nil {
		return err
	}

	dev, err := device.NewDevice(deviceConfigs()...)
	if err != nil {
		return err
	}
	defer dev.Free()
	logger.Info("device ready", zap.String("mode", dev.Mode()))

	for _, c := range cases {
		for _, n := range benchSizes {
			if err := benchCase(dev, c, n); err != nil {
				return fmt.Errorf("case %s n=%d: %w", c, n, err)
			}
		}
	}
	return nil
}

func benchCase(dev *gocca.OCCADevice, c resolvedCase, n int) error {
	switch c.keys {
	case device.Uint8:
		return benchKeyType[uint8](dev, c, n)
	case device.Uint16:
		return benchKeyType[uint16](dev, c, n)
	case device.Uint32:
		return benchKeyType[uint32](dev, c, n)
	case device.Uint64:
		return benchKeyType[uint64](dev, c, n)
	case device.Int8:
		return benchKeyType[int8](dev, c, n)
	case device.Int16:
		return benchKeyType[int16](dev, c, n)
	case device.Int32:
		return benchKeyType[int32](dev, c, n)
	case device.Int64:
		return benchKeyType[int64](dev, c, n)
	case device.Float32:
		return benchKeyType[float32](dev, c, n)
	case device.Float64:
		return benchKeyType[float64](dev, c, n)
	}
	return fmt.Errorf("%w: key type %v", device.ErrInvalidArgument, c.keys)
}

func benchKeyType[K utils.Scalar](dev *gocca.OCCADevice, c resolvedCase, n int) error {
	s, err := newSorterFor(dev, c)
	if err != nil {
		return err
	}
	defer s.Free()

	keys := utils.RandomData[K](seed, n)
	keysIn, err := device.Upload(dev, keys)
	if err != nil {
		return err
	}
	defer keysIn.Free()
	keysOut, err := device.Alloc(dev, int64(n)*c.keys.Size())
	if err != nil {
		return err
	}
	defer keysOut.Free()

	var valuesIn, valuesOut *gocca.OCCAMemory
	pairs := c.values != device.None
	if pairs {
		valuesIn, err = device.Alloc(dev, int64(n)*c.values.Size())
		if err != nil {
			return err
		}
		defer valuesIn.Free()
		valuesOut, err = device.Alloc(dev, int64(n)*c.values.Size())
		if err != nil {
			return err
		}
		defer valuesOut.Free()
	}

	run := func(temp *gocca.OCCAMemory, tempBytes *int64) error {
		if pairs {
			if c.descending {
				return s.SortPairsDescending(temp, tempBytes, keysIn, keysOut,
					valuesIn, valuesOut, n, c.startBit, c.endBit)
			}
			return s.SortPairs(temp, tempBytes, keysIn, keysOut,
				valuesIn, valuesOut, n, c.startBit, c.endBit)
		}
		if c.descending {
			return s.SortKeysDescending(temp, tempBytes, keysIn, keysOut,
				n, c.startBit, c.endBit)
		}
		return s.SortKeys(temp, tempBytes, keysIn, keysOut, n, c.startBit, c.endBit)
	}

	var tempBytes int64
	if err := run(nil, &tempBytes); err != nil {
		return err
	}
	temp, err := device.Alloc(dev, tempBytes)
	if err != nil {
		return err
	}
	defer temp.Free()

	// Warmup launch before timing
	if err := run(temp, &tempBytes); err != nil {
		return err
	}

	elapsed := make([]float64, benchReps)
	for r := 0; r < benchReps; r++ {
		start := time.Now()
		if err := run(temp, &tempBytes); err != nil {
			return err
		}
		elapsed[r] = time.Since(start).Seconds()
	}

	mean := stat.Mean(elapsed, nil)
	sigma := stat.StdDev(elapsed, nil)
	payload := int64(n) * c.keys.Size()
	if pairs {
		payload += int64(n) * c.values.Size()
	}

	logger.Info("bench",
		zap.String("case", c.String()),
		zap.Int("n", n),
		zap.String("payload", humanize.IBytes(uint64(payload))),
		zap.String("temp", humanize.IBytes(uint64(tempBytes))),
		zap.Float64("mean_ms", mean*1e3),
		zap.Float64("stddev_ms", sigma*1e3),
		zap.Float64("melems_per_s", float64(n)/mean/1e6),
	)
	return nil
}

func newSorterFor(dev *gocca.OCCADevice, c resolvedCase) (*radix.Sorter, error) {
	return radix.NewSorter(dev, radix.Config{Keys: c.keys, Values: c.values})
}
