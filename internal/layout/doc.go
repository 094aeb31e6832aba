// Package layout resolves the conventional directory structure of an
// extension project: the working tree holding the installed host
// application, the extension source and test trees, the build output
// directory, the drop directory for prebuilt extension packages and the
// helper PHP scripts. Every stage asks this package for paths instead of
// joining them itself.
package layout
