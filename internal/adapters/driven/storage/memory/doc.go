// Package memory provides in-memory implementations of the driven ports.
// They back the service tests and the CLI's --ephemeral mode; nothing
// survives the process.
package memory
