package dtype

import "sort"

// Dtype is the semantic type of a column. Encoder selection and accuracy
// scoring both dispatch on it.
type Dtype int

// The semantic types identified by Dtype.
const (
	Invalid Dtype = iota
	Integer
	Float
	Binary
	Categorical
	Tags
	Array
	Audio
	ShortText
	RichText
	Date
	Datetime
)

var names = map[Dtype]string{
	Invalid:     "invalid",
	Integer:     "integer",
	Float:       "float",
	Binary:      "binary",
	Categorical: "categorical",
	Tags:        "tags",
	Array:       "array",
	Audio:       "audio",
	ShortText:   "short_text",
	RichText:    "rich_text",
	Date:        "date",
	Datetime:    "datetime",
}

var (
	byName = make(map[string]Dtype)
	sorted []Dtype
)

func init() {
	for d, name := range names {
		byName[name] = d
		if d != Invalid {
			sorted = append(sorted, d)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})
}

// All returns every valid Dtype in declaration order.
func All() []Dtype {
	return append([]Dtype(nil), sorted...)
}

// Name returns the name of this type ("integer", "short_text", etc)
func (d Dtype) Name() string {
	if name, ok := names[d]; ok {
		return name
	}
	return names[Invalid]
}

// String implements fmt.Stringer
func (d Dtype) String() string {
	return d.Name()
}

// IsNumeric is true for Integer and Float.
func (d Dtype) IsNumeric() bool {
	return d == Integer || d == Float
}

// FromName returns the Dtype with the given name.
func FromName(name string) (Dtype, bool) {
	d, ok := byName[name]
	if !ok || d == Invalid {
		return Invalid, false
	}
	return d, true
}

// MarshalText implements encoding.TextMarshaler
func (d Dtype) MarshalText() ([]byte, error) {
	return []byte(d.Name()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler; unknown names decode to Invalid.
func (d *Dtype) UnmarshalText(text []byte) error {
	*d, _ = FromName(string(text))
	return nil
}
