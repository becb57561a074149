package common

import (
	"path"
	"path/filepath"
	"runtime"
)

// CurrentDir returns current directory of the caller.
func CurrentDir() string {
	_, current, _, _ := runtime.Caller(1)
	return filepath.Join(path.Dir(current))
}

// ErrorToString returns error as string and an empty string if the error is nil
func ErrorToString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
