package cmd

import (
	"errors"
	"fmt"

	"github.com/kipr/kipr-scratch/internal/build"
	"github.com/kipr/kipr-scratch/internal/codegen/scanner"
	"github.com/kipr/kipr-scratch/internal/patch"
)

// Hint returns a short suggestion for the error classes the user can act on.
func Hint(err error) string {
	var (
		shapeErr  *scanner.ShapeError
		markerErr *patch.MarkerError
		stageErr  *build.StageError
	)
	switch {
	case errors.As(err, &shapeErr):
		return "the binding XML does not have the expected SWIG layout; rebuild libwallaby with -Dwith_xml_binding=ON"
	case errors.As(err, &markerErr):
		return fmt.Sprintf("%s no longer matches the patch rules; check the scratch-blocks revision or run 'kipr-scratch patch --restore'", markerErr.File)
	case errors.As(err, &stageErr) && stageErr.ExitCode > 0:
		return fmt.Sprintf("the %s stage exited with status %d; its output is in the log above", stageErr.Stage, stageErr.ExitCode)
	default:
		return ""
	}
}
