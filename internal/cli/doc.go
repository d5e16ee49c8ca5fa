// Package cli implements the gpumon command tree.
//
// The root command runs the interactive dashboard. The remaining commands
// fetch one endpoint through the same cached query client and print the result
// either as a table or, with --json, inside the {success, data, error}
// envelope defined in json.go.
package cli
