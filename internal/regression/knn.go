package regression

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// featurePoint is a training row placed in the k-d tree.
type featurePoint struct {
	vec []float64
	row int
}

// Compare implements kdtree.Comparable.
func (p featurePoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(featurePoint)
	return p.vec[d] - q.vec[d]
}

func (p featurePoint) Dims() int { return len(p.vec) }

// Distance returns the squared Euclidean distance.
func (p featurePoint) Distance(c kdtree.Comparable) float64 {
	q := c.(featurePoint)
	var sum float64
	for i := range p.vec {
		d := p.vec[i] - q.vec[i]
		sum += d * d
	}
	return sum
}

type featurePoints []featurePoint

func (p featurePoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p featurePoints) Len() int                              { return len(p) }
func (p featurePoints) Slice(start, end int) kdtree.Interface { return p[start:end] }
func (p featurePoints) Pivot(d kdtree.Dim) int {
	return plane{featurePoints: p, Dim: d}.Pivot()
}

// plane sorts featurePoints along one dimension for tree construction.
type plane struct {
	featurePoints
	kdtree.Dim
}

func (p plane) Less(i, j int) bool {
	return p.featurePoints[i].vec[p.Dim] < p.featurePoints[j].vec[p.Dim]
}
func (p plane) Swap(i, j int) {
	p.featurePoints[i], p.featurePoints[j] = p.featurePoints[j], p.featurePoints[i]
}
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	return plane{featurePoints: p.featurePoints[start:end], Dim: p.Dim}
}
func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

// KNN is a k-nearest-neighbors regressor with uniform weights: a prediction is
// the mean target of the k closest training rows.
type KNN struct {
	K int

	tree    *kdtree.Tree
	targets *mat.Dense
	dims    int
}

// NewKNN returns an unfitted regressor using k neighbors.
func NewKNN(k int) *KNN { return &KNN{K: k} }

// Fit indexes the rows of X with the matching rows of Y as targets.
func (m *KNN) Fit(X, Y mat.Matrix) error {
	xr, xc := X.Dims()
	yr, yc := Y.Dims()
	if xr == 0 || xc == 0 {
		return errors.New("knn: empty feature matrix")
	}
	if xr != yr {
		return fmt.Errorf("knn: %d feature rows but %d target rows", xr, yr)
	}
	if m.K <= 0 || m.K > xr {
		return fmt.Errorf("knn: neighbors must be in [1, %d], got %d", xr, m.K)
	}
	pts := make(featurePoints, xr)
	for i := 0; i < xr; i++ {
		vec := make([]float64, xc)
		mat.Row(vec, i, X)
		pts[i] = featurePoint{vec: vec, row: i}
	}
	m.targets = mat.NewDense(yr, yc, nil)
	m.targets.Copy(Y)
	m.tree = kdtree.New(pts, false)
	m.dims = xc
	return nil
}

// Predict returns one row of averaged targets per row of X.
func (m *KNN) Predict(X mat.Matrix) (*mat.Dense, error) {
	if m.tree == nil {
		return nil, errors.New("knn: model is not fitted")
	}
	r, c := X.Dims()
	if c != m.dims {
		return nil, fmt.Errorf("knn: fitted on %d features, got %d", m.dims, c)
	}
	_, tc := m.targets.Dims()
	out := mat.NewDense(r, tc, nil)
	for i := 0; i < r; i++ {
		q := featurePoint{vec: make([]float64, c), row: -1}
		mat.Row(q.vec, i, X)

		keeper := kdtree.NewNKeeper(m.K)
		m.tree.NearestSet(keeper, q)
		var n float64
		sums := make([]float64, tc)
		for _, item := range keeper.Heap {
			nb, ok := item.Comparable.(featurePoint)
			if !ok {
				continue
			}
			for j := 0; j < tc; j++ {
				sums[j] += m.targets.At(nb.row, j)
			}
			n++
		}
		if n == 0 {
			return nil, fmt.Errorf("knn: no neighbors found for row %d", i)
		}
		for j := range sums {
			out.Set(i, j, sums[j]/n)
		}
	}
	return out, nil
}
