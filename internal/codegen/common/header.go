package common

import "fmt"

// FileHeader returns the "do not edit" banner placed at the top of every generated file.
// commentPrefix is the line comment token of the target language.
func FileHeader(commentPrefix, artifact string) string {
	return fmt.Sprintf(`%[1]s Auto-generated by kipr-scratch blockify - DO NOT EDIT
%[1]s Artifact: %[2]s
%[1]s Source: libwallaby SWIG XML binding
`, commentPrefix, artifact)
}
