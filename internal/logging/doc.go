// Package logging provides structured, rotating file logging for the
// search core. When debug logging is enabled, JSON log lines are
// written to ~/.hybridsearch/logs/ for troubleshooting; by default,
// logging stays minimal and goes to stderr only.
package logging
