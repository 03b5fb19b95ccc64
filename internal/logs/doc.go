// Package logs reads back the qualfill log file: the last lines of a run, lines
// appended after a known offset, and optionally only the lines that mention a
// given item.
package logs
