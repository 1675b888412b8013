package regression

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/unde-cli/internal/dataset"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Verdict is the qualitative reading of the combined RMSE.
type Verdict string

const (
	VerdictExcellent    Verdict = "excellent"
	VerdictAcceptable   Verdict = "acceptable"
	VerdictInsufficient Verdict = "insufficient coverage"
)

// Classify maps an RMSE to a verdict: <5 excellent, <15 acceptable.
func Classify(rmse float64) Verdict {
	switch {
	case rmse < 5.0:
		return VerdictExcellent
	case rmse < 15.0:
		return VerdictAcceptable
	default:
		return VerdictInsufficient
	}
}

// Options controls the positioning model evaluation.
type Options struct {
	Neighbors       int
	TestRatio       float64
	Seed            uint64
	MinSplitSamples int
	MinTrainingRows int
}

// DefaultOptions mirrors the classic 70/30 split with seed 42 and k=5.
func DefaultOptions() Options {
	return Options{
		Neighbors:       5,
		TestRatio:       0.3,
		Seed:            42,
		MinSplitSamples: 20,
		MinTrainingRows: 10,
	}
}

// Result summarizes one fit and evaluation.
type Result struct {
	Samples   int      `json:"samples" yaml:"samples"`
	Features  []string `json:"features" yaml:"features"`
	Split     bool     `json:"split" yaml:"split"`
	TrainSize int      `json:"train_size" yaml:"train_size"`
	TestSize  int      `json:"test_size" yaml:"test_size"`
	Neighbors int      `json:"neighbors" yaml:"neighbors"`
	MSEX      float64  `json:"mse_x" yaml:"mse_x"`
	MSEY      float64  `json:"mse_y" yaml:"mse_y"`
	RMSE      float64  `json:"rmse" yaml:"rmse"`
	R2X       *float64 `json:"r2_x,omitempty" yaml:"r2_x,omitempty"`
	R2Y       *float64 `json:"r2_y,omitempty" yaml:"r2_y,omitempty"`
	Verdict   Verdict  `json:"verdict" yaml:"verdict"`
}

// Evaluate fits a KNN model from magnetic features to (x, y) and scores it.
// Rows lacking a coordinate or field component are dropped; when withMagnitude
// is set the magnitude becomes a fourth feature and rows without it are dropped
// as well. Too few usable rows yields *dataset.InsufficientDataError.
func Evaluate(samples []dataset.Sample, withMagnitude bool, opt Options) (*Result, error) {
	features := []string{dataset.ColBx, dataset.ColBy, dataset.ColBz}
	if withMagnitude {
		features = append(features, dataset.ColMagnitude)
	}
	var rows []dataset.Sample
	for _, s := range samples {
		if !s.HasCoords() || !s.HasField() {
			continue
		}
		if withMagnitude && !dataset.Present(s.Magnitude) {
			continue
		}
		rows = append(rows, s)
	}
	minRows := opt.MinTrainingRows
	if minRows <= 0 {
		minRows = 1
	}
	if len(rows) < minRows {
		return nil, &dataset.InsufficientDataError{Stage: "regression", What: "complete rows", Need: minRows, Have: len(rows)}
	}

	X, Y := design(rows, withMagnitude)
	res := &Result{Samples: len(rows), Features: features}

	var Xtr, Ytr, Xte, Yte mat.Matrix = X, Y, X, Y
	res.TrainSize, res.TestSize = len(rows), len(rows)
	if opt.MinSplitSamples > 0 && len(rows) >= opt.MinSplitSamples && opt.TestRatio > 0 {
		train, test := SplitIndices(len(rows), opt.TestRatio, opt.Seed)
		Xtr, Ytr = pick(X, train), pick(Y, train)
		Xte, Yte = pick(X, test), pick(Y, test)
		res.Split = true
		res.TrainSize, res.TestSize = len(train), len(test)
	}

	k := opt.Neighbors
	if k <= 0 {
		k = DefaultOptions().Neighbors
	}
	k = min(k, res.TrainSize)
	res.Neighbors = k

	model := NewKNN(k)
	if err := model.Fit(Xtr, Ytr); err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	pred, err := model.Predict(Xte)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}

	trueX := mat.Col(nil, 0, Yte)
	trueY := mat.Col(nil, 1, Yte)
	predX := mat.Col(nil, 0, pred)
	predY := mat.Col(nil, 1, pred)
	res.MSEX = MeanSquaredError(trueX, predX)
	res.MSEY = MeanSquaredError(trueY, predY)
	res.RMSE = CombinedRMSE(res.MSEX, res.MSEY)
	res.R2X = rSquared(trueX, predX)
	res.R2Y = rSquared(trueY, predY)
	res.Verdict = Classify(res.RMSE)
	return res, nil
}

// MeanSquaredError returns mean((truth-pred)^2).
func MeanSquaredError(truth, pred []float64) float64 {
	sq := make([]float64, len(truth))
	for i := range truth {
		d := truth[i] - pred[i]
		sq[i] = d * d
	}
	return stat.Mean(sq, nil)
}

// CombinedRMSE averages the per-axis MSEs before taking the root.
func CombinedRMSE(mseX, mseY float64) float64 {
	return math.Sqrt((mseX + mseY) / 2)
}

// rSquared is the coefficient of determination, nil when the truth has no
// variance and the score is undefined.
func rSquared(truth, pred []float64) *float64 {
	if len(truth) < 2 {
		return nil
	}
	if v := stat.Variance(truth, nil); v == 0 || math.IsNaN(v) {
		return nil
	}
	r2 := stat.RSquaredFrom(pred, truth, nil)
	return &r2
}

func design(rows []dataset.Sample, withMagnitude bool) (*mat.Dense, *mat.Dense) {
	nf := 3
	if withMagnitude {
		nf = 4
	}
	X := mat.NewDense(len(rows), nf, nil)
	Y := mat.NewDense(len(rows), 2, nil)
	for i, s := range rows {
		X.Set(i, 0, s.Bx)
		X.Set(i, 1, s.By)
		X.Set(i, 2, s.Bz)
		if withMagnitude {
			X.Set(i, 3, s.Magnitude)
		}
		Y.Set(i, 0, s.X)
		Y.Set(i, 1, s.Y)
	}
	return X, Y
}

func pick(m *mat.Dense, idx []int) *mat.Dense {
	_, c := m.Dims()
	out := mat.NewDense(len(idx), c, nil)
	for i, r := range idx {
		out.SetRow(i, m.RawRowView(r))
	}
	return out
}

// Evaluator binds Options to Evaluate for use as a pipeline stage.
type Evaluator struct {
	Options Options
}

// Evaluate runs Evaluate with the bound options.
func (e Evaluator) Evaluate(samples []dataset.Sample, withMagnitude bool) (*Result, error) {
	return Evaluate(samples, withMagnitude, e.Options)
}
