// Package files exposes the generated CSV reports as a browsable
// catalog. The pipeline drops timestamped result files into the export
// directory and this package is how the HTTP layer finds and serves
// them without trusting client-supplied paths.
package files
