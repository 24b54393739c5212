// Package logger is a standardized event logging framework for the shell.
//
// Events are written as newline delimited JSON, one protobuf Struct per
// line, so logs can be read back with ReadJSONLinesLog and summarized with a
// Report.
package logger
