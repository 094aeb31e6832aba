// Package pipeline composes stages into macro-operations and runs them.
//
// A run is strictly sequential: stage N+1 starts only after stage N has
// returned. The first failing stage aborts the run with a *StageError,
// except for best-effort stages whose failures are logged and recorded as
// warnings.
//
// Mode flags from the command line map to macro-operations. Several modes
// can be combined; Resolve merges them into one ordered plan.
package pipeline
