// Package mixer contains the prediction strategies that consume encoded columns,
// and the registry resolving them by name.
//
// Variants that depend on an optional runtime carry an availability probe: asking whether
// a variant is available never fails, and New reports ErrUnavailable for absent ones.
package mixer

import (
	"sort"

	"github.com/vbrnv/lightwood/lightwood-golib/errors"
	"github.com/vbrnv/lightwood/lightwood-golib/lwlog"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrUnavailable is returned by New for a registered variant whose dependency is missing.
	ErrUnavailable = errors.New("mixer: unavailable")
	// ErrUnknownMixer is returned for names outside the registry vocabulary.
	ErrUnknownMixer = errors.New("mixer: unknown mixer")
	// ErrShapeMismatch is returned when features and targets do not line up.
	ErrShapeMismatch = errors.New("mixer: shape mismatch")
	// ErrNotFitted is returned by Predict before Fit.
	ErrNotFitted = errors.New("mixer: not fitted")
)

// Mixer is a prediction strategy over encoded features x (rows x features) and encoded targets
// y (rows x outputs).
type Mixer interface {
	Name() Name
	Fit(x, y *mat.Dense) error
	Predict(x *mat.Dense) (*mat.Dense, error)
}

// Name identifies a mixer variant.
type Name string

// Registry vocabulary
const (
	Unit          Name = "unit"
	Neural        Name = "neural"
	LightGBM      Name = "lightgbm"
	LightGBMArray Name = "lightgbm_array"
	SkTime        Name = "sktime"
	Regression    Name = "regression"
	QClassic      Name = "qclassic"
)

type entry struct {
	build func() Mixer
	// probe returns nil if the variant can be built
	probe func() error
}

func always() error { return nil }

var registry = map[Name]entry{
	Unit:          {build: func() Mixer { return NewUnit() }, probe: always},
	Neural:        {build: func() Mixer { return NewNeural(DefaultNeuralOptions) }, probe: always},
	LightGBM:      {build: func() Mixer { return NewLightGBM(DefaultBoostOptions) }, probe: always},
	LightGBMArray: {build: func() Mixer { return NewLightGBMArray(DefaultBoostOptions) }, probe: always},
	SkTime:        {build: func() Mixer { return NewSkTime(DefaultSmoothing) }, probe: always},
	Regression:    {build: func() Mixer { return NewRegression() }, probe: always},
	QClassic:      {probe: quantumRuntime},
}

// quantumRuntime reports whether a quantum circuit simulator is linked in. None is.
func quantumRuntime() error {
	return errors.New("no quantum circuit runtime linked")
}

// Names returns the registry vocabulary, sorted.
func Names() []Name {
	var names []Name
	for name := range registry {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// ParseName validates a mixer name.
func ParseName(s string) (Name, error) {
	if _, ok := registry[Name(s)]; !ok {
		return "", errors.Wrapf(ErrUnknownMixer, "%q", s)
	}
	return Name(s), nil
}

// Available reports whether New(name) would succeed.
func Available(name Name) bool {
	e, ok := registry[name]
	return ok && e.build != nil && e.probe() == nil
}

// Availability maps every registered name to nil if it is available, or to the reason it is not.
func Availability() map[Name]error {
	out := make(map[Name]error, len(registry))
	for name, e := range registry {
		err := e.probe()
		if err == nil && e.build == nil {
			err = errors.New("no implementation")
		}
		out[name] = err
	}
	return out
}

// New returns an unfitted mixer.
func New(name Name) (Mixer, error) {
	e, ok := registry[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownMixer, "%q", name)
	}
	if err := e.probe(); err != nil {
		lwlog.S().Debugw("mixer unavailable", "mixer", name, "reason", err)
		return nil, errors.Wrapf(ErrUnavailable, "%s: %v", name, err)
	}
	if e.build == nil {
		return nil, errors.Wrapf(ErrUnavailable, "%s has no implementation", name)
	}
	return e.build(), nil
}

// checkFit validates training data and returns its dimensions.
func checkFit(x, y *mat.Dense) (rows, features, outputs int, err error) {
	if x == nil || y == nil {
		return 0, 0, 0, errors.Wrapf(ErrShapeMismatch, "empty training data")
	}
	rows, features = x.Dims()
	r, outputs := y.Dims()
	if r != rows {
		return 0, 0, 0, errors.Wrapf(ErrShapeMismatch, "%d feature rows, %d target rows", rows, r)
	}
	return rows, features, outputs, nil
}

// checkPredict validates x against the number of features seen in Fit.
func checkPredict(fitted bool, x *mat.Dense, features int) (rows int, err error) {
	if !fitted {
		return 0, ErrNotFitted
	}
	if x == nil {
		return 0, errors.Wrapf(ErrShapeMismatch, "no rows to predict")
	}
	rows, c := x.Dims()
	if c != features {
		return 0, errors.Wrapf(ErrShapeMismatch, "got %d features, fitted on %d", c, features)
	}
	return rows, nil
}
