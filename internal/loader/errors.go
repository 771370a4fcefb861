package loader

import "fmt"

// FileError reports a data file that could not be opened or read.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// FormatError reports a file that is not usable tabular CSV. Line is 1-based;
// zero means the problem is not tied to a line.
type FormatError struct {
	Path string
	Line int
	Err  error
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed CSV in %s at line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("malformed CSV in %s: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }
