package mixer

import (
	"github.com/vbrnv/lightwood/lightwood-golib/errors"
	"gonum.org/v1/gonum/mat"
)

// ridge keeps the normal equations solvable when features are collinear or constant.
const ridge = 1e-8

// RegressionMixer fits ordinary least squares with an intercept, independently per output.
type RegressionMixer struct {
	features int
	// coefs is (features+1) x outputs; row 0 holds the intercepts
	coefs *mat.Dense
}

// NewRegression returns an unfitted linear regression.
func NewRegression() *RegressionMixer {
	return &RegressionMixer{}
}

// Name implements Mixer
func (r *RegressionMixer) Name() Name { return Regression }

// Fit implements Mixer
func (r *RegressionMixer) Fit(x, y *mat.Dense) error {
	rows, features, _, err := checkFit(x, y)
	if err != nil {
		return err
	}
	design := withIntercept(x, rows, features)

	var gram mat.Dense
	gram.Mul(design.T(), design)
	for i := 0; i <= features; i++ {
		gram.Set(i, i, gram.At(i, i)+ridge)
	}
	var rhs mat.Dense
	rhs.Mul(design.T(), y)

	var coefs mat.Dense
	if err := coefs.Solve(&gram, &rhs); err != nil {
		if _, ok := err.(mat.Condition); !ok {
			return errors.Wrapf(err, "error solving least squares")
		}
	}
	r.features, r.coefs = features, &coefs
	return nil
}

// Predict implements Mixer
func (r *RegressionMixer) Predict(x *mat.Dense) (*mat.Dense, error) {
	rows, err := checkPredict(r.coefs != nil, x, r.features)
	if err != nil {
		return nil, err
	}
	var out mat.Dense
	out.Mul(withIntercept(x, rows, r.features), r.coefs)
	return &out, nil
}

// Coefficients returns the fitted intercept (first) and weights for output j.
func (r *RegressionMixer) Coefficients(j int) []float64 {
	if r.coefs == nil {
		return nil
	}
	return mat.Col(nil, j, r.coefs)
}

func withIntercept(x *mat.Dense, rows, features int) *mat.Dense {
	design := mat.NewDense(rows, features+1, nil)
	for i := 0; i < rows; i++ {
		design.Set(i, 0, 1)
		for j := 0; j < features; j++ {
			design.Set(i, j+1, x.At(i, j))
		}
	}
	return design
}
