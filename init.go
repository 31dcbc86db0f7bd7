package clustergo

// initCentres fills cur (k x d column-major) with the starting centroids:
// supplied centres win over the configured policy.
func (e *KMeans[T]) initCentres(cur []T) {
	if e.initC != nil {
		copy(cur, e.initC)
		return
	}
	switch e.opts.Init {
	case InitKMeansPlusPlus:
		e.initPlusPlus(cur)
	default:
		e.initRandom(cur)
	}
}

// initRandom picks k distinct samples uniformly at random.
func (e *KMeans[T]) initRandom(cur []T) {
	perm := e.rng.Perm(e.n)
	for j := 0; j < e.k; j++ {
		e.copySampleToCentre(perm[j], j, cur)
	}
}

// initPlusPlus spreads the starting centres with the k-means++ weighting:
// after a uniform first pick, each further centre is drawn with probability
// proportional to the squared distance to the nearest centre chosen so far.
func (e *KMeans[T]) initPlusPlus(cur []T) {
	distSq := make([]float64, e.n)

	first := e.rng.Intn(e.n)
	e.copySampleToCentre(first, 0, cur)
	for i := 0; i < e.n; i++ {
		distSq[i] = e.sampleDistSq(i, first)
	}

	for j := 1; j < e.k; j++ {
		var total float64
		for _, v := range distSq {
			total += v
		}

		var pick int
		if total <= 0 {
			// All remaining mass sits on already chosen points.
			pick = e.rng.Intn(e.n)
		} else {
			r := e.rng.Float64() * total
			for pick = 0; pick < e.n-1; pick++ {
				r -= distSq[pick]
				if r <= 0 {
					break
				}
			}
		}

		e.copySampleToCentre(pick, j, cur)
		for i := 0; i < e.n; i++ {
			if d := e.sampleDistSq(i, pick); d < distSq[i] {
				distSq[i] = d
			}
		}
	}
}

func (e *KMeans[T]) copySampleToCentre(sample, centre int, cur []T) {
	for t := 0; t < e.d; t++ {
		cur[centre+t*e.k] = e.data[sample+t*e.n]
	}
}

func (e *KMeans[T]) sampleDistSq(i, j int) float64 {
	var sum float64
	for t := 0; t < e.d; t++ {
		d := float64(e.data[i+t*e.n] - e.data[j+t*e.n])
		sum += d * d
	}
	return sum
}
