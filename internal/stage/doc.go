// Package stage implements the pipeline stages: Fetch, Install,
// InstallExtensions, MergeExtension, ResolveDependencies, Rebuild,
// PostInstallHook, SetOwnership and Package.
//
// Every stage is a function of an *Env (the immutable configuration, the
// project layout and the collaborators used for side effects) plus the
// state of the filesystem. Stages only talk to each other through the
// filesystem. Each stage is re-runnable: directories it creates are
// deleted first and files it writes replace stale copies, so running a
// stage twice leaves the same end state as running it once.
package stage
