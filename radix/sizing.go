package radix

import (
	"github.com/LideDing/rocPRIM/functional"
)

// Temp storage regions start on 256-byte boundaries so every region's byte
// offset divides exactly by any supported element width; kernels address the
// regions through element offsets into the one caller-provided allocation.
const tempAlign = 256

// tempLayout describes how one invocation carves its temporary storage:
// up to two spare key arrays (and matching value arrays, pairs config) for
// the ping-pong chain, plus the per-pass histogram/offset table. Offsets are
// bytes from the start of the temp allocation; -1 marks an absent region.
type tempLayout struct {
	passes int
	groups int
	keys   [2]int64
	vals   [2]int64
	table  int64
	total  int64
}

func alignUp(x, align int64) int64 {
	return (x + align - 1) / align * align
}

// groupsFor returns the execution-group count covering count elements
func groupsFor(count int) int {
	if count <= 0 {
		return 0
	}
	return functional.CeilDiv(count, groupElems)
}

// passesFor returns the number of digit windows covering [startBit, endBit)
func passesFor(startBit, endBit int) int {
	return functional.CeilDiv(endBit-startBit, radixBits)
}

// computeLayout sizes the temp storage for one invocation without touching
// any data. The same layout drives both the sizing call and execution, which
// is what makes the reported size exact and deterministic.
//
// The pass chain needs min(2, passes-1) spare arrays per stream: the final
// pass always targets the caller's output buffer, intermediate passes
// ping-pong through the spares, and the input buffer is never written.
func computeLayout(count, startBit, endBit int, keySize, valSize int64) tempLayout {
	l := tempLayout{
		passes: passesFor(startBit, endBit),
		groups: groupsFor(count),
		keys:   [2]int64{-1, -1},
		vals:   [2]int64{-1, -1},
		table:  -1,
	}
	if count <= 0 {
		return l
	}

	spares := functional.Min(l.passes-1, 2)
	var off int64
	for i := 0; i < spares; i++ {
		l.keys[i] = off
		off = alignUp(off+int64(count)*keySize, tempAlign)
	}
	if valSize > 0 {
		for i := 0; i < spares; i++ {
			l.vals[i] = off
			off = alignUp(off+int64(count)*valSize, tempAlign)
		}
	}
	l.table = off
	l.total = off + int64(l.groups)*radixBuckets*8
	return l
}

// tableLen returns the offset table's element count for a group count
func tableLen(groups int) int64 {
	return int64(groups) * radixBuckets
}
