package radix

import (
	"testing"

	"github.com/LideDing/rocPRIM/device"
	"github.com/stretchr/testify/require"
)

// White-box tests driving the stage kernels one at a time against host
// references, so a sweep failure can be pinned to a single stage.

func TestHistogramKernel(t *testing.T) {
	dev, err := device.NewDevice()
	require.NoError(t, err)
	defer dev.Free()

	s, err := NewSorter(dev, Config{Keys: device.Uint32})
	require.NoError(t, err)
	defer s.Free()

	const n = 3*groupElems + 517 // four groups, ragged tail
	keys := make([]uint32, n)
	for i := range keys {
		keys[i] = uint32(i*2654435761 + 12345)
	}
	shift, mask := 8, radixBuckets-1

	groups := groupsFor(n)
	want := make([]uint64, tableLen(groups))
	for i, k := range keys {
		d := (k >> uint(shift)) & uint32(mask)
		want[int(d)*groups+i/groupElems]++
	}

	keysIn, err := device.Upload(dev, keys)
	require.NoError(t, err)
	defer keysIn.Free()
	table, err := device.Alloc(dev, tableLen(groups)*8)
	require.NoError(t, err)
	defer table.Free()

	require.NoError(t, s.kernels[histogramKernel].RunWithArgs(int64(n), groups,
		keysIn, int64(0), table, int64(0), shift, mask, 0))
	dev.Finish()

	got := make([]uint64, tableLen(groups))
	require.NoError(t, device.Download(table, got))
	require.Equal(t, want, got)
}

func TestHistogramKernelDescendingMask(t *testing.T) {
	dev, err := device.NewDevice()
	require.NoError(t, err)
	defer dev.Free()

	s, err := NewSorter(dev, Config{Keys: device.Uint8})
	require.NoError(t, err)
	defer s.Free()

	// xorv complements the digit, so bucket d must hold what bucket
	// mask-d holds in the ascending table
	n := 2000
	keys := make([]uint8, n)
	for i := range keys {
		keys[i] = uint8(i * 37)
	}
	mask := radixBuckets - 1
	groups := groupsFor(n)

	keysIn, err := device.Upload(dev, keys)
	require.NoError(t, err)
	defer keysIn.Free()
	table, err := device.Alloc(dev, tableLen(groups)*8)
	require.NoError(t, err)
	defer table.Free()

	run := func(xorv int) []uint64 {
		require.NoError(t, s.kernels[histogramKernel].RunWithArgs(int64(n), groups,
			keysIn, int64(0), table, int64(0), 0, mask, xorv))
		dev.Finish()
		out := make([]uint64, tableLen(groups))
		require.NoError(t, device.Download(table, out))
		return out
	}

	asc := run(0)
	desc := run(mask)
	for d := 0; d <= mask; d++ {
		for g := 0; g < groups; g++ {
			require.Equal(t, asc[d*groups+g], desc[(mask-d)*groups+g],
				"digit %d group %d", d, g)
		}
	}
}

func TestScanOffsetsKernel(t *testing.T) {
	dev, err := device.NewDevice()
	require.NoError(t, err)
	defer dev.Free()

	s, err := NewSorter(dev, Config{Keys: device.Uint32})
	require.NoError(t, err)
	defer s.Free()

	// Table lengths straddling the per-thread chunking: shorter than the
	// thread count, one chunk each, and ragged multi-chunk
	for _, total := range []int64{16, scanThreads - 1, scanThreads, 4 * scanThreads, 977} {
		counts := make([]uint64, total)
		for i := range counts {
			counts[i] = uint64(i*i%97 + 1)
		}
		want := make([]uint64, total)
		var running uint64
		for i, c := range counts {
			want[i] = running
			running += c
		}

		table, err := device.Alloc(dev, total*8)
		require.NoError(t, err)
		require.NoError(t, device.UploadAt(table, counts, 0))

		require.NoError(t, s.kernels[scanKernel].RunWithArgs(total, table, int64(0)))
		dev.Finish()

		got := make([]uint64, total)
		require.NoError(t, device.Download(table, got))
		table.Free()
		require.Equal(t, want, got, "table length %d", total)
	}
}

func TestComputeLayout(t *testing.T) {
	t.Run("zero_count", func(t *testing.T) {
		l := computeLayout(0, 0, 32, 4, 0)
		require.Equal(t, int64(0), l.total)
		require.Equal(t, 0, l.groups)
	})

	t.Run("single_pass_no_spares", func(t *testing.T) {
		// One pass writes the output directly, so no spare arrays,
		// only the table
		l := computeLayout(1000, 0, 4, 4, 0)
		require.Equal(t, 1, l.passes)
		require.Equal(t, int64(-1), l.keys[0])
		require.Equal(t, int64(0), l.table)
		require.Equal(t, int64(radixBuckets*8), l.total)
	})

	t.Run("two_passes_one_spare", func(t *testing.T) {
		l := computeLayout(1000, 0, 8, 4, 0)
		require.Equal(t, 2, l.passes)
		require.GreaterOrEqual(t, l.keys[0], int64(0))
		require.Equal(t, int64(-1), l.keys[1])
	})

	t.Run("many_passes_cap_two_spares", func(t *testing.T) {
		l := computeLayout(1000, 0, 64, 8, 4)
		require.Equal(t, 16, l.passes)
		require.GreaterOrEqual(t, l.keys[0], int64(0))
		require.GreaterOrEqual(t, l.keys[1], int64(0))
		require.GreaterOrEqual(t, l.vals[0], int64(0))
		require.GreaterOrEqual(t, l.vals[1], int64(0))
	})

	t.Run("regions_aligned_and_disjoint", func(t *testing.T) {
		l := computeLayout(999, 0, 64, 8, 4)
		require.Zero(t, l.keys[0]%tempAlign)
		require.Zero(t, l.keys[1]%tempAlign)
		require.Zero(t, l.vals[0]%tempAlign)
		require.Zero(t, l.vals[1]%tempAlign)
		require.Zero(t, l.table%tempAlign)
		require.Greater(t, l.keys[1], l.keys[0]+999*8-tempAlign)
		require.Greater(t, l.table, l.vals[1])
		require.Equal(t, l.table+tableLen(l.groups)*8, l.total)
	})

	t.Run("groups_cover_count", func(t *testing.T) {
		require.Equal(t, 1, groupsFor(1))
		require.Equal(t, 1, groupsFor(groupElems))
		require.Equal(t, 2, groupsFor(groupElems+1))
		require.Equal(t, 0, groupsFor(0))
	})

	t.Run("passes_cover_window", func(t *testing.T) {
		require.Equal(t, 1, passesFor(0, 4))
		require.Equal(t, 1, passesFor(0, 1))
		require.Equal(t, 2, passesFor(0, 5))
		require.Equal(t, 16, passesFor(0, 64))
		require.Equal(t, 3, passesFor(1, 13))
	})
}
