// Package hcl provides the concrete HCL implementation of the config.Loader
// interface. It parses a pipeline file, translates it into the
// format-agnostic config.Model and keeps command templates as unevaluated
// expressions so they can be rendered per source file later.
//
// A default pipeline file is embedded in the binary and used when no path is
// given.
package hcl
