// Package platform is the filesystem utility layer used by every pipeline
// stage: recursive delete, move and union copy of directory trees,
// existence checks and the few operations whose behaviour depends on the
// operating system (permission bits, file ownership). It knows nothing
// about the pipeline itself.
package platform
