package kernel

// AssignFunc scans a work panel holding -2*C*A^T for a block of b samples
// (column-major, one column per sample, leading dimension ldwork >= k) and
// writes the index of the nearest centre for each sample. centreNorms holds
// the squared centre norms and must extend to the padded dimension with +Inf
// entries so full-lane scans never select padding. Ties resolve to the
// lowest centre index. When updateCounts is set, counts is incremented per
// winning centre.
type AssignFunc[T Float] func(updateCounts bool, b int, centreNorms []T, counts, labels []int, work []T, ldwork, k int)

// BoundUpdateFunc applies the post-update bound adjustment for b samples:
// the upper bound grows by the shift of the sample's assigned centre, every
// lower bound shrinks by the matching centre shift and clamps at zero.
// shift must extend to the padded dimension with zero entries; lower rows
// have leading dimension ldl >= k.
type BoundUpdateFunc[T Float] func(b int, upper, lower []T, ldl int, shift []T, labels []int, k int)

// ReduceFunc returns the squared euclidean distance between two strided
// m-element vectors.
type ReduceFunc[T Float] func(m int, x []T, incx int, y []T, incy int) T

// Assign returns the assignment kernel for the given width tier.
func Assign[T Float](w Width) AssignFunc[T] {
	lanes := Padding(w, PrecisionOf[T]())
	if lanes == 0 {
		return assignScalar[T]
	}
	return assignLanes[T](lanes)
}

// BoundUpdate returns the bound update kernel for the given width tier.
func BoundUpdate[T Float](w Width) BoundUpdateFunc[T] {
	lanes := Padding(w, PrecisionOf[T]())
	if lanes == 0 {
		return boundUpdateScalar[T]
	}
	return boundUpdateLanes[T](lanes)
}

// Reduce returns the reduction kernel for the given width tier.
func Reduce[T Float](w Width) ReduceFunc[T] {
	lanes := Padding(w, PrecisionOf[T]())
	if lanes == 0 {
		return reduceScalar[T]
	}
	return reduceLanes[T](lanes)
}

func assignScalar[T Float](updateCounts bool, b int, centreNorms []T, counts, labels []int, work []T, ldwork, k int) {
	for i := 0; i < b; i++ {
		row := work[i*ldwork : i*ldwork+k]
		best := row[0] + centreNorms[0]
		bestIdx := 0
		for j := 1; j < k; j++ {
			if v := row[j] + centreNorms[j]; v < best {
				best = v
				bestIdx = j
			}
		}
		labels[i] = bestIdx
		if updateCounts {
			counts[bestIdx]++
		}
	}
}

// assignLanes keeps one running minimum per lane and reduces at the end.
// Strict less-than inside a lane plus an index tie-break across lanes keeps
// the lowest winning index, matching the scalar kernel exactly.
func assignLanes[T Float](lanes int) AssignFunc[T] {
	return func(updateCounts bool, b int, centreNorms []T, counts, labels []int, work []T, ldwork, k int) {
		kp := ((k + lanes - 1) / lanes) * lanes
		var vals [16]T
		var idxs [16]int
		for i := 0; i < b; i++ {
			row := work[i*ldwork : i*ldwork+kp]
			for l := 0; l < lanes; l++ {
				vals[l] = row[l] + centreNorms[l]
				idxs[l] = l
			}
			for j := lanes; j < kp; j += lanes {
				for l := 0; l < lanes; l++ {
					if v := row[j+l] + centreNorms[j+l]; v < vals[l] {
						vals[l] = v
						idxs[l] = j + l
					}
				}
			}
			best, bestIdx := vals[0], idxs[0]
			for l := 1; l < lanes; l++ {
				if vals[l] < best || (vals[l] == best && idxs[l] < bestIdx) {
					best = vals[l]
					bestIdx = idxs[l]
				}
			}
			labels[i] = bestIdx
			if updateCounts {
				counts[bestIdx]++
			}
		}
	}
}

func boundUpdateScalar[T Float](b int, upper, lower []T, ldl int, shift []T, labels []int, k int) {
	for i := 0; i < b; i++ {
		upper[i] += shift[labels[i]]
		row := lower[i*ldl : i*ldl+k]
		for j := 0; j < k; j++ {
			v := row[j] - shift[j]
			if v < 0 {
				v = 0
			}
			row[j] = v
		}
	}
}

func boundUpdateLanes[T Float](lanes int) BoundUpdateFunc[T] {
	return func(b int, upper, lower []T, ldl int, shift []T, labels []int, k int) {
		kp := ((k + lanes - 1) / lanes) * lanes
		for i := 0; i < b; i++ {
			upper[i] += shift[labels[i]]
			row := lower[i*ldl : i*ldl+kp]
			for j := 0; j < kp; j += lanes {
				for l := 0; l < lanes; l++ {
					v := row[j+l] - shift[j+l]
					if v < 0 {
						v = 0
					}
					row[j+l] = v
				}
			}
		}
	}
}

func reduceScalar[T Float](m int, x []T, incx int, y []T, incy int) T {
	var sum T
	for i := 0; i < m; i++ {
		d := x[i*incx] - y[i*incy]
		sum += d * d
	}
	return sum
}

// reduceLanes accumulates into per-lane partial sums with a scalar tail; no
// padding of the inputs is required.
func reduceLanes[T Float](lanes int) ReduceFunc[T] {
	return func(m int, x []T, incx int, y []T, incy int) T {
		var acc [16]T
		i := 0
		for ; i+lanes <= m; i += lanes {
			for l := 0; l < lanes; l++ {
				d := x[(i+l)*incx] - y[(i+l)*incy]
				acc[l] += d * d
			}
		}
		var sum T
		for ; i < m; i++ {
			d := x[i*incx] - y[i*incy]
			sum += d * d
		}
		for l := 0; l < lanes; l++ {
			sum += acc[l]
		}
		return sum
	}
}

// PanelNeg2CAt fills a work panel with -2*C*A^T for a block of b samples.
// C is the k x d centre matrix (column-major, leading dimension ldc) and a
// points at the first sample of the block inside a column-major sample
// matrix with leading dimension lda. Only the first k rows of each panel
// column are written; padded rows keep their prior contents.
func PanelNeg2CAt[T Float](k, d, b int, c []T, ldc int, a []T, lda int, work []T, ldwork int) {
	for s := 0; s < b; s++ {
		col := work[s*ldwork : s*ldwork+k]
		for i := range col {
			col[i] = 0
		}
		for j := 0; j < d; j++ {
			av := -2 * a[s+j*lda]
			cj := c[j*ldc : j*ldc+k]
			for i := range col {
				col[i] += av * cj[i]
			}
		}
	}
}
