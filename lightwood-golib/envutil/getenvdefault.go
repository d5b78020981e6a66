package envutil

import (
	"os"
	"strconv"

	"github.com/vbrnv/lightwood/lightwood-golib/errors"
)

// GetenvDefault gets the value of an environment variable, or returns the
// specified default value if that variable is not set.
func GetenvDefault(name, defaultValue string) string {
	val, found := os.LookupEnv(name)
	if !found {
		return defaultValue
	}
	return val
}

// GetenvDefaultInt gets an environment variable as an int, or else returns the default.
// A set but malformed variable is an error.
func GetenvDefaultInt(name string, defaultVal int) (int, error) {
	val, found := os.LookupEnv(name)
	if !found || val == "" {
		return defaultVal, nil
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal, errors.Wrapf(err, "environment variable %s should be an integer", name)
	}
	return intVal, nil
}
