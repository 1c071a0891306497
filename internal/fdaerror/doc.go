// Package fdaerror provides error inspection capabilities for openFDA API errors.
// It centralizes the logic for identifying different types of errors returned by
// the openFDA device endpoints, eliminating the need for string-based error
// checking throughout the codebase.
package fdaerror
