package mixer

import (
	"gonum.org/v1/gonum/mat"
)

// Smoothing holds the Holt smoothing factors for level and trend.
type Smoothing struct {
	Alpha float64
	Beta  float64
}

// DefaultSmoothing is used by the registry.
var DefaultSmoothing = Smoothing{Alpha: 0.5, Beta: 0.3}

// SkTimeMixer forecasts with Holt's linear trend exponential smoothing. Training rows are the
// series in time order, taken from the first target column; every predicted row holds the
// forecast for horizon steps 1..outputs past the end of the series.
type SkTimeMixer struct {
	smoothing    Smoothing
	features     int
	horizon      int
	level, trend float64
	fitted       bool
}

// NewSkTime returns an unfitted forecaster.
func NewSkTime(s Smoothing) *SkTimeMixer {
	return &SkTimeMixer{smoothing: s}
}

// Name implements Mixer
func (s *SkTimeMixer) Name() Name { return SkTime }

// Fit implements Mixer
func (s *SkTimeMixer) Fit(x, y *mat.Dense) error {
	rows, features, outputs, err := checkFit(x, y)
	if err != nil {
		return err
	}
	series := mat.Col(nil, 0, y)

	level, trend := series[0], 0.0
	if rows > 1 {
		trend = series[1] - series[0]
	}
	a, b := s.smoothing.Alpha, s.smoothing.Beta
	for t := 1; t < rows; t++ {
		prev := level
		level = a*series[t] + (1-a)*(level+trend)
		trend = b*(level-prev) + (1-b)*trend
	}

	s.features, s.horizon = features, outputs
	s.level, s.trend = level, trend
	s.fitted = true
	return nil
}

// Predict implements Mixer
func (s *SkTimeMixer) Predict(x *mat.Dense) (*mat.Dense, error) {
	rows, err := checkPredict(s.fitted, x, s.features)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(rows, s.horizon, nil)
	for i := 0; i < rows; i++ {
		for k := 0; k < s.horizon; k++ {
			out.Set(i, k, s.level+s.trend*float64(k+1))
		}
	}
	return out, nil
}
