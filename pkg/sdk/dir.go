package sdk

import (
	"fmt"
	"os"
)

// InDir runs fn with the working directory changed to dir and restores it
// afterwards. The working directory is process wide, so InDir must not be
// used from concurrent tasks.
func InDir(dir string, fn func() error) (err error) {
	prev, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("failed to enter %s: %w", dir, err)
	}
	defer func() {
		if cerr := os.Chdir(prev); cerr != nil && err == nil {
			err = fmt.Errorf("failed to return to %s: %w", prev, cerr)
		}
	}()
	return fn()
}
