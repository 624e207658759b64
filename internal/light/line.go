package light

import (
	"errors"
	"io"
)

// Line is one binary output of the light.
type Line interface {
	Write(level bool) error
	// Read returns the level the line is currently driven at.
	Read() (bool, error)
}

// Outputs are the two lines of a bicolor light.
type Outputs struct {
	Green  Line
	Orange Line

	closers []io.Closer
}

// Close releases the resources held by the backend, if any.
func (o Outputs) Close() error {
	var errs []error
	for _, c := range o.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (o Outputs) valid() bool {
	return o.Green != nil && o.Orange != nil
}
