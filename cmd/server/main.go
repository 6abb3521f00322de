package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/execbox/execbox/config"
	"github.com/execbox/execbox/logger"
	"github.com/execbox/execbox/mcpserver"
	"github.com/execbox/execbox/sandbox"
	"github.com/execbox/execbox/sandbox/launcher"
	"github.com/execbox/execbox/sandbox/registry"
	"github.com/execbox/execbox/sandbox/workspace"
)

func newRegistry(cfg *config.Config, log *zap.Logger) (*registry.Registry, error) {
	toolchains, err := registry.LoadCatalog(cfg.Engine.LanguagesFile)
	if err != nil {
		return nil, err
	}
	return registry.New(log, toolchains)
}

func newWorkspaceManager(log *zap.Logger) *workspace.Manager {
	return workspace.NewManager(log)
}

func newCoordinator(cfg *config.Config, log *zap.Logger, reg *registry.Registry, workspaces *workspace.Manager, launch *launcher.Launcher) *sandbox.Coordinator {
	return sandbox.NewCoordinator(log, cfg.Engine, reg, workspaces, launch)
}

func newServer(cfg *config.Config, log *zap.Logger, reg *registry.Registry, coord *sandbox.Coordinator) (*mcpserver.MCPServer, error) {
	return mcpserver.New(cfg, log, reg, coord)
}

func main() {
	app := fx.New(
		// Provide dependencies
		fx.Provide(
			// Config
			config.New,

			// Logger with configuration
			logger.NewFromConfig,

			// Engine components
			newRegistry,
			newWorkspaceManager,
			launcher.New,
			newCoordinator,

			// MCP Server
			newServer,
		),

		// Start the appropriate transport based on config
		fx.Invoke(
			func(cfg *config.Config, server *mcpserver.MCPServer) {
				switch cfg.Server.Transport {
				case "stdio":
					// Use fx to run this as a background task
					go func() {
						if err := server.ServeStdio(); err != nil {
							panic(err)
						}
					}()
				case "http":
					go func() {
						if err := server.ServeHTTP(); err != nil {
							panic(err)
						}
					}()
				default:
					panic("unsupported transport: " + cfg.Server.Transport)
				}
			},
		),

		// Use the application logger for fx logs
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)

	// Start the application
	app.Run()
}
