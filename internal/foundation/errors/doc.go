// Package errors provides the classified error primitives used across corpusgen.
//
// Every failure the pipeline reports is a ClassifiedError carrying a category
// (parse, transform, config, filesystem, ...), a severity and structured
// context such as the example id it belongs to. Per-example failures use
// SeverityError and are collected by the pipeline; filesystem and config
// failures are fatal and abort a run.
//
// Example usage:
//
//	err := errors.ParseError("style block is not supported").
//		ForExample(id).
//		Build()
package errors
