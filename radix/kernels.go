package radix

import (
	"fmt"

	"github.com/LideDing/rocPRIM/device"
)

// Digit geometry. Four bits per pass keeps the per-group tables small enough
// for @shared memory on every backend; group geometry is 64 threads owning a
// 16-element tile each, so one execution group covers 1024 elements.
const (
	radixBits    = 4
	radixBuckets = 1 << radixBits
	groupThreads = 64
	groupTile    = 16
	groupElems   = groupThreads * groupTile
	scanThreads  = 128
)

// Kernel names as compiled into the generated source
const (
	histogramKernel    = "radixHistogram"
	scanKernel         = "radixScanOffsets"
	scatterKeysKernel  = "radixScatterKeys"
	scatterPairsKernel = "radixScatterPairs"
)

// kernelPreamble generates the typedefs and macros shared by all three stage
// kernels. RS_DIGIT is the single digit-extraction rule; histogram and scatter
// both expand it, so the two stages cannot disagree on a digit value.
func kernelPreamble(keys, values device.DataType, pairs bool) string {
	preamble := fmt.Sprintf(`// Device-wide radix sort stage kernels (generated)
#define RS_RADIX_BITS %d
#define RS_BUCKETS %d
#define RS_GROUP_THREADS %d
#define RS_GROUP_TILE %d
#define RS_GROUP_ELEMS %d
#define RS_SCAN_THREADS %d

typedef %s rs_key_t;
`, radixBits, radixBuckets, groupThreads, groupTile, groupElems, scanThreads,
		carrierCName(keys))

	if pairs {
		preamble += fmt.Sprintf("typedef %s rs_val_t;\n", carrierCName(values))
	}

	preamble += fmt.Sprintf(`
#define RS_KEY_BITS(k) %s
#define RS_DIGIT(k, shift, mask, xorv) (((unsigned int)((RS_KEY_BITS(k) >> (shift)) & ((rs_key_t)(mask)))) ^ ((unsigned int)(xorv)))
`, keyBitsExpr(keys))

	return preamble
}

// histogramSource counts digit frequencies per execution group. Each thread
// zeroes its own row of the shared table and counts its tile; the first
// RS_BUCKETS threads then column-sum the rows into the digit-major global
// table: table[digit*numGroups + group]. No atomics, fixed summation order,
// so equal inputs always produce identical tables.
const histogramSource = `
@kernel void radixHistogram(const long long n,
                            const int numGroups,
                            @restrict const rs_key_t *srcBuf,
                            const long long srcOff,
                            @restrict unsigned long long *tableBuf,
                            const long long tableOff,
                            const int shift,
                            const int mask,
                            const int xorv) {
	for (int g = 0; g < numGroups; ++g; @outer) {
		@shared unsigned int tileCounts[RS_GROUP_THREADS * RS_BUCKETS];
		for (int t = 0; t < RS_GROUP_THREADS; ++t; @inner) {
			const rs_key_t *src = srcBuf + srcOff;
			for (int d = 0; d < RS_BUCKETS; ++d) {
				tileCounts[t * RS_BUCKETS + d] = 0;
			}
			const long long base = (long long)g * RS_GROUP_ELEMS + (long long)t * RS_GROUP_TILE;
			for (int i = 0; i < RS_GROUP_TILE; ++i) {
				const long long idx = base + i;
				if (idx < n) {
					tileCounts[t * RS_BUCKETS + RS_DIGIT(src[idx], shift, mask, xorv)] += 1;
				}
			}
		}
		for (int t = 0; t < RS_GROUP_THREADS; ++t; @inner) {
			if (t < RS_BUCKETS) {
				unsigned long long sum = 0;
				for (int tt = 0; tt < RS_GROUP_THREADS; ++tt) {
					sum += tileCounts[tt * RS_BUCKETS + t];
				}
				unsigned long long *table = tableBuf + tableOff;
				table[(long long)t * numGroups + g] = sum;
			}
		}
	}
}
`

// scanSource turns the digit-major count table into exclusive global offsets,
// in place: three phases over one execution group (per-thread chunk sums,
// serial exclusive scan of the partials, per-thread chunk rescan). Scanning
// the table in memory order realizes the stability rule: smaller digit first,
// then earlier group.
const scanSource = `
@kernel void radixScanOffsets(const long long total,
                              @restrict unsigned long long *tableBuf,
                              const long long tableOff) {
	for (int blk = 0; blk < 1; ++blk; @outer) {
		@shared unsigned long long partials[RS_SCAN_THREADS];
		for (int t = 0; t < RS_SCAN_THREADS; ++t; @inner) {
			unsigned long long *table = tableBuf + tableOff;
			const long long chunk = (total + RS_SCAN_THREADS - 1) / RS_SCAN_THREADS;
			const long long lo = (long long)t * chunk;
			long long hi = lo + chunk;
			if (hi > total) {
				hi = total;
			}
			unsigned long long sum = 0;
			for (long long i = lo; i < hi; ++i) {
				sum += table[i];
			}
			partials[t] = sum;
		}
		for (int t = 0; t < RS_SCAN_THREADS; ++t; @inner) {
			if (t == 0) {
				unsigned long long running = 0;
				for (int i = 0; i < RS_SCAN_THREADS; ++i) {
					const unsigned long long c = partials[i];
					partials[i] = running;
					running += c;
				}
			}
		}
		for (int t = 0; t < RS_SCAN_THREADS; ++t; @inner) {
			unsigned long long *table = tableBuf + tableOff;
			const long long chunk = (total + RS_SCAN_THREADS - 1) / RS_SCAN_THREADS;
			const long long lo = (long long)t * chunk;
			long long hi = lo + chunk;
			if (hi > total) {
				hi = total;
			}
			unsigned long long running = partials[t];
			for (long long i = lo; i < hi; ++i) {
				const unsigned long long c = table[i];
				table[i] = running;
				running += c;
			}
		}
	}
}
`

// Scatter kernels: recount tile digits into shared memory (same RS_DIGIT as
// the histogram), convert counts to absolute write cursors (global offset of
// the (group, digit) run plus the exclusive sum over earlier threads' tiles),
// then walk each tile in order writing elements through the cursors. Each
// (group, digit) output run is partitioned exactly among the group's threads
// in tile order, so the stage is a conflict-free stable permutation.

const scatterKeysSource = `
@kernel void radixScatterKeys(const long long n,
                              const int numGroups,
                              @restrict const rs_key_t *srcBuf,
                              const long long srcOff,
                              @restrict rs_key_t *dstBuf,
                              const long long dstOff,
                              @restrict const unsigned long long *tableBuf,
                              const long long tableOff,
                              const int shift,
                              const int mask,
                              const int xorv) {
	for (int g = 0; g < numGroups; ++g; @outer) {
		@shared unsigned long long cursors[RS_GROUP_THREADS * RS_BUCKETS];
		for (int t = 0; t < RS_GROUP_THREADS; ++t; @inner) {
			const rs_key_t *src = srcBuf + srcOff;
			for (int d = 0; d < RS_BUCKETS; ++d) {
				cursors[t * RS_BUCKETS + d] = 0;
			}
			const long long base = (long long)g * RS_GROUP_ELEMS + (long long)t * RS_GROUP_TILE;
			for (int i = 0; i < RS_GROUP_TILE; ++i) {
				const long long idx = base + i;
				if (idx < n) {
					cursors[t * RS_BUCKETS + RS_DIGIT(src[idx], shift, mask, xorv)] += 1;
				}
			}
		}
		for (int t = 0; t < RS_GROUP_THREADS; ++t; @inner) {
			if (t < RS_BUCKETS) {
				const unsigned long long *table = tableBuf + tableOff;
				unsigned long long running = table[(long long)t * numGroups + g];
				for (int tt = 0; tt < RS_GROUP_THREADS; ++tt) {
					const unsigned long long c = cursors[tt * RS_BUCKETS + t];
					cursors[tt * RS_BUCKETS + t] = running;
					running += c;
				}
			}
		}
		for (int t = 0; t < RS_GROUP_THREADS; ++t; @inner) {
			const rs_key_t *src = srcBuf + srcOff;
			rs_key_t *dst = dstBuf + dstOff;
			const long long base = (long long)g * RS_GROUP_ELEMS + (long long)t * RS_GROUP_TILE;
			for (int i = 0; i < RS_GROUP_TILE; ++i) {
				const long long idx = base + i;
				if (idx < n) {
					const rs_key_t k = src[idx];
					const int d = (int)RS_DIGIT(k, shift, mask, xorv);
					const unsigned long long pos = cursors[t * RS_BUCKETS + d];
					dst[pos] = k;
					cursors[t * RS_BUCKETS + d] = pos + 1;
				}
			}
		}
	}
}
`

const scatterPairsSource = `
@kernel void radixScatterPairs(const long long n,
                               const int numGroups,
                               @restrict const rs_key_t *srcBuf,
                               const long long srcOff,
                               @restrict rs_key_t *dstBuf,
                               const long long dstOff,
                               @restrict const rs_val_t *valSrcBuf,
                               const long long valSrcOff,
                               @restrict rs_val_t *valDstBuf,
                               const long long valDstOff,
                               @restrict const unsigned long long *tableBuf,
                               const long long tableOff,
                               const int shift,
                               const int mask,
                               const int xorv) {
	for (int g = 0; g < numGroups; ++g; @outer) {
		@shared unsigned long long cursors[RS_GROUP_THREADS * RS_BUCKETS];
		for (int t = 0; t < RS_GROUP_THREADS; ++t; @inner) {
			const rs_key_t *src = srcBuf + srcOff;
			for (int d = 0; d < RS_BUCKETS; ++d) {
				cursors[t * RS_BUCKETS + d] = 0;
			}
			const long long base = (long long)g * RS_GROUP_ELEMS + (long long)t * RS_GROUP_TILE;
			for (int i = 0; i < RS_GROUP_TILE; ++i) {
				const long long idx = base + i;
				if (idx < n) {
					cursors[t * RS_BUCKETS + RS_DIGIT(src[idx], shift, mask, xorv)] += 1;
				}
			}
		}
		for (int t = 0; t < RS_GROUP_THREADS; ++t; @inner) {
			if (t < RS_BUCKETS) {
				const unsigned long long *table = tableBuf + tableOff;
				unsigned long long running = table[(long long)t * numGroups + g];
				for (int tt = 0; tt < RS_GROUP_THREADS; ++tt) {
					const unsigned long long c = cursors[tt * RS_BUCKETS + t];
					cursors[tt * RS_BUCKETS + t] = running;
					running += c;
				}
			}
		}
		for (int t = 0; t < RS_GROUP_THREADS; ++t; @inner) {
			const rs_key_t *src = srcBuf + srcOff;
			rs_key_t *dst = dstBuf + dstOff;
			const rs_val_t *valSrc = valSrcBuf + valSrcOff;
			rs_val_t *valDst = valDstBuf + valDstOff;
			const long long base = (long long)g * RS_GROUP_ELEMS + (long long)t * RS_GROUP_TILE;
			for (int i = 0; i < RS_GROUP_TILE; ++i) {
				const long long idx = base + i;
				if (idx < n) {
					const rs_key_t k = src[idx];
					const int d = (int)RS_DIGIT(k, shift, mask, xorv);
					const unsigned long long pos = cursors[t * RS_BUCKETS + d];
					dst[pos] = k;
					valDst[pos] = valSrc[idx];
					cursors[t * RS_BUCKETS + d] = pos + 1;
				}
			}
		}
	}
}
`

// kernelSource assembles the full generated source for a key/value config
func kernelSource(keys, values device.DataType, pairs bool) string {
	src := kernelPreamble(keys, values, pairs)
	src += histogramSource
	src += scanSource
	if pairs {
		src += scatterPairsSource
	} else {
		src += scatterKeysSource
	}
	return src
}
