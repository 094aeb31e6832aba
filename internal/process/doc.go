// Package process runs external commands for the pipeline stages. A
// Command carries its working directory and whether its output should be
// streamed to the operator or suppressed; the Runner blocks until the child
// exits and turns a non-zero exit status into a *ProcessError. There is no
// retry logic here and no forced termination: once a child is started the
// runner waits for it.
package process
