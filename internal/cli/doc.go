// Package cli defines the Cobra command tree for the extkit CLI. The root
// command runs the pipeline for the selected mode flags; each other file
// registers one subcommand. Commands only parse flags, build the stage
// environment and format output; the work happens in internal/pipeline.
package cli
