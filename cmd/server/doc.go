// Package main is the entry point for the execbox MCP server.
//
// The execbox server runs untrusted user code (Python, Node.js, Go,
// C++ and any further configured language) as time- and
// resource-bounded subprocesses, each in its own throwaway workspace,
// behind a bounded-concurrency coordinator. The server exposes the
// engine over MCP on stdio or HTTP transports.
//
// The application uses Uber's fx framework for dependency injection and
// lifecycle management, with zap for structured logging and viper for
// configuration.
package main
