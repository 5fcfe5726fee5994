package cluster

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// projectPCA maps the standardized feature matrix onto its first two
// principal components. The projection exists only for display; cluster
// assignment never reads it. With a single feature column the second
// coordinate is zero.
func projectPCA(x [][]float64) ([][2]float64, error) {
	rows := len(x)
	if rows == 0 {
		return nil, fmt.Errorf("no rows to project")
	}
	cols := len(x[0])

	flat := make([]float64, 0, rows*cols)
	for _, row := range x {
		flat = append(flat, row...)
	}
	m := mat.NewDense(rows, cols, flat)

	var pc stat.PC
	if ok := pc.PrincipalComponents(m, nil); !ok {
		return nil, fmt.Errorf("principal component decomposition failed")
	}

	var vecs mat.Dense
	pc.VectorsTo(&vecs)

	components := 2
	if cols < components {
		components = cols
	}

	var proj mat.Dense
	proj.Mul(m, vecs.Slice(0, cols, 0, components))

	coords := make([][2]float64, rows)
	for i := 0; i < rows; i++ {
		coords[i][0] = proj.At(i, 0)
		if components > 1 {
			coords[i][1] = proj.At(i, 1)
		}
	}
	return coords, nil
}
