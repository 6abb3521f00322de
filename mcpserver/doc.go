// Package mcpserver provides the Model Context Protocol (MCP) server implementation.
//
// The mcpserver package implements an MCP-compliant server that exposes
// the execution engine to the surrounding chat/agent layer. It uses the
// mark3labs/mcp-go library to handle the protocol details and provides
// the execute_code tool as the single entry point into the engine.
//
// The server supports both stdio and HTTP transports as configured by
// the application configuration.
//
// Usage:
//
//	server, err := mcpserver.New(config, logger, registry, coordinator)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = server.ServeStdio() // or server.ServeHTTP()
package mcpserver
