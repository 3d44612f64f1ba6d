package main

import (
	"github.com/urfave/cli/v2"

	"github.com/gitnexus/gitnexus/internal/mcpadapter"
)

// mcpCommand implements the `mcp` subcommand: the Query Surface exposed
// over the agent tool protocol on stdin/stdout.
func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "serve the Query Surface over MCP stdio",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			surface, _, err := buildSurface(c.Context, cfg)
			if err != nil {
				return err
			}
			adapter := mcpadapter.New(surface, cfg.Project.Root)
			return adapter.Run(c.Context)
		},
	}
}
