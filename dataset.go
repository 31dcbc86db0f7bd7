package clustergo

// Order names the storage order of a strided matrix.
type Order uint8

const (
	// RowMajor stores samples as rows with leading dimension >= the column
	// count.
	RowMajor Order = iota
	// ColMajor stores samples as columns with leading dimension >= the row
	// count.
	ColMajor
)

// String returns the string representation of an Order.
func (o Order) String() string {
	if o == ColMajor {
		return "col-major"
	}
	return "row-major"
}

// validateMatrix checks the shape of a strided rows x cols matrix against
// its buffer. ld is the stride between consecutive rows (RowMajor) or
// columns (ColMajor).
func validateMatrix[T Float](param string, data []T, rows, cols, ld int, order Order) error {
	if rows <= 0 {
		return &ErrInvalidDimensions{Param: param + " rows", Value: rows, Constraint: "> 0"}
	}
	if cols <= 0 {
		return &ErrInvalidDimensions{Param: param + " cols", Value: cols, Constraint: "> 0"}
	}
	var minLD, need int
	if order == RowMajor {
		minLD = cols
		need = (rows-1)*ld + cols
	} else {
		minLD = rows
		need = (cols-1)*ld + rows
	}
	if ld < minLD {
		return &ErrInvalidDimensions{Param: param + " leading dimension", Value: ld, Constraint: ">= logical extent"}
	}
	if len(data) < need {
		return &ErrInvalidDimensions{Param: param + " buffer length", Value: len(data), Constraint: ">= stride extent"}
	}
	return nil
}

// toColMajor copies a strided rows x cols matrix into a dense column-major
// buffer with leading dimension rows. The input is never mutated.
func toColMajor[T Float](data []T, rows, cols, ld int, order Order) []T {
	out := make([]T, rows*cols)
	if order == RowMajor {
		for i := 0; i < rows; i++ {
			src := data[i*ld : i*ld+cols]
			for j, v := range src {
				out[i+j*rows] = v
			}
		}
	} else {
		for j := 0; j < cols; j++ {
			copy(out[j*rows:(j+1)*rows], data[j*ld:j*ld+rows])
		}
	}
	return out
}
