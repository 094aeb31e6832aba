// Package config loads the pipeline configuration once at startup: the
// settings file (config.json by default; any format viper reads), EXTKIT_*
// environment overrides, the extension manifest source and the extension
// version. The result is an immutable Config value handed to every stage.
package config
