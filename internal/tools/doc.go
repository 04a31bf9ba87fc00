// Package tools provides host process helpers shared by the launch pipeline.
//
// Ownership boundary:
// - synchronous command execution with captured output
//
// - detached, fire-and-forget process start
package tools
