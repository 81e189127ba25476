// Package util holds small helpers shared by the service packages: size
// parsing for configuration, header redaction and truncation for log
// records, and request ID validation.
package util
