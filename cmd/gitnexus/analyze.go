package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/gitnexus/gitnexus/internal/ingest"
)

// analyzeCommand implements `analyze [path] [--force] [--skip-embeddings]`.
func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "build or refresh the .gitnexus artifact for a repository",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Usage: "rebuild even if the commit hash is unchanged"},
			&cli.BoolFlag{Name: "skip-embeddings", Usage: "skip the optional vector embedding phase"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			result, err := runPipeline(c.Context, cfg, ingest.Options{
				Force:          c.Bool("force"),
				SkipEmbeddings: c.Bool("skip-embeddings"),
			})
			if err != nil {
				return err
			}
			if result.Skipped {
				fmt.Println("gitnexus: up to date (use --force to rebuild)")
				return nil
			}
			fmt.Printf("gitnexus: indexed %d files, %d nodes, %d edges, %d communities, %d processes\n",
				result.Meta.Stats.Files, result.Meta.Stats.Nodes, result.Meta.Stats.Edges,
				result.Meta.Stats.Communities, result.Meta.Stats.Processes)
			if result.Warnings != nil {
				if summary := result.Warnings.Summary(); summary != "" {
					fmt.Println(summary)
				}
			}
			return nil
		},
	}
}
