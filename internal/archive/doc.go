// Package archive moves zip archives in and out of the pipeline. A Transport
// downloads the archive of a given ref from a GitHub-style repository,
// Extract expands it into a directory and flattens the single wrapper
// directory GitHub adds, and Build packs a directory tree into a zip whose
// root is the contents of that directory. Partial downloads and partial
// output archives are never left behind.
package archive
