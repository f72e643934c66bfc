// Package file provides a file-based configuration store using TOML.
//
// Configuration lives at ~/.amaranth/config.toml by default. A missing
// file yields the built-in defaults; keys absent from the file keep
// their default values, so a config file only needs to name the
// settings it overrides.
package file
