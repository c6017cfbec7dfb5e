package toolchain

import (
	"errors"
	"fmt"
	"os/exec"
)

// Requirement is an executable that must be on PATH before watching starts.
type Requirement struct {
	Name string
	Hint string
}

// Require reports every requirement that can't be found, joined into one error.
func Require(requirements ...Requirement) error {
	var errs []error
	for _, req := range requirements {
		if _, err := exec.LookPath(req.Name); err != nil {
			errs = append(errs, fmt.Errorf("%s not found. Please install it: %s: %w", req.Name, req.Hint, err))
		}
	}
	return errors.Join(errs...)
}
