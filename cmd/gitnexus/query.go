package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/gitnexus/gitnexus/internal/query"
)

// queryCommand implements the one-off `query` subcommand: a direct CLI
// wrapper over internal/query.Surface for scripting and debugging,
// distinct from the long-running `serve`/`mcp` surfaces.
func queryCommand() *cli.Command {
	return &cli.Command{
		Name:  "query",
		Usage: "run a single Query Surface operation and print JSON",
		Subcommands: []*cli.Command{
			{
				Name:  "search",
				Usage: "hybrid BM25+vector search",
				Flags: []cli.Flag{&cli.IntFlag{Name: "k", Value: 10}},
				Action: func(c *cli.Context) error {
					return withSurface(c, func(s *query.Surface) (interface{}, error) {
						if c.NArg() < 1 {
							return nil, errors.New("usage: gitnexus query search <q>")
						}
						return s.HybridSearch(c.Context, c.Args().First(), c.Int("k")), nil
					})
				},
			},
			{
				Name:  "cypher",
				Usage: "single-hop MATCH/RETURN pass-through",
				Action: func(c *cli.Context) error {
					return withSurface(c, func(s *query.Surface) (interface{}, error) {
						if c.NArg() < 1 {
							return nil, errors.New("usage: gitnexus query cypher <query>")
						}
						return s.Cypher(c.Args().First())
					})
				},
			},
			{
				Name:  "impact",
				Usage: "upstream/downstream impact analysis",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "direction", Value: query.DirectionDownstream},
					&cli.IntFlag{Name: "max-depth", Value: 0},
				},
				Action: func(c *cli.Context) error {
					return withSurface(c, func(s *query.Surface) (interface{}, error) {
						if c.NArg() < 1 {
							return nil, errors.New("usage: gitnexus query impact <target>")
						}
						return s.Impact(c.Args().First(), c.String("direction"), c.Int("max-depth"), nil, 0)
					})
				},
			},
			{
				Name:  "explore",
				Usage: "canonical symbol/cluster/process report",
				Flags: []cli.Flag{&cli.StringFlag{Name: "type", Value: query.KindSymbol}},
				Action: func(c *cli.Context) error {
					return withSurface(c, func(s *query.Surface) (interface{}, error) {
						if c.NArg() < 1 {
							return nil, errors.New("usage: gitnexus query explore <name>")
						}
						return s.Explore(c.Args().First(), c.String("type"))
					})
				},
			},
			{
				Name:  "overview",
				Usage: "aggregate cluster/process listing",
				Action: func(c *cli.Context) error {
					return withSurface(c, func(s *query.Surface) (interface{}, error) {
						return s.Overview(), nil
					})
				},
			},
		},
	}
}

// withSurface loads config, builds a Surface, runs fn, and prints its
// result as indented JSON, the shared shape every query subcommand needs.
func withSurface(c *cli.Context, fn func(*query.Surface) (interface{}, error)) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	surface, _, err := buildSurface(c.Context, cfg)
	if err != nil {
		return err
	}
	result, err := fn(surface)
	if err != nil {
		return &userError{msg: err.Error()}
	}
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
