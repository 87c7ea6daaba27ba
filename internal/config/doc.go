// Package config defines the format-agnostic configuration model of a
// pipeline run, along with the Loader interface implemented by concrete
// configuration formats.
//
// The `config.Model` is the single source of truth for the `pipeline` and
// `similarity` packages. External programs are never described as shell
// strings: each one is a command template that renders to an argument
// vector once its variables are bound.
package config
