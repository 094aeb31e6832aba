// Package manifest handles the two manifest documents of an extension: the
// source manifest (extension.json, plus the version carried by
// package.json) that identifies the module, and the package manifest
// (manifest.json) generated into every package archive. Package manifests
// are checked against an embedded JSON schema before they are written.
package manifest
