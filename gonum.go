package clustergo

import "gonum.org/v1/gonum/mat"

// FromDense flattens a gonum matrix into a row-major buffer suitable for
// SetData, Predict or Transform.
func FromDense(m mat.Matrix) (data []float64, rows, cols int) {
	rows, cols = m.Dims()
	data = make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			data[i*cols+j] = m.At(i, j)
		}
	}
	return data, rows, cols
}

// CentroidsDense returns the fitted centroids as a k x d gonum matrix.
func CentroidsDense[T Float](km *KMeans[T]) (*mat.Dense, error) {
	c, err := km.Centroids(RowMajor)
	if err != nil {
		return nil, err
	}
	k, d := km.Clusters(), km.Features()
	out := mat.NewDense(k, d, nil)
	for i := 0; i < k; i++ {
		for j := 0; j < d; j++ {
			out.Set(i, j, float64(c[i*d+j]))
		}
	}
	return out, nil
}
