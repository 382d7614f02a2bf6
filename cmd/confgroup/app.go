package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/urfave/cli/v3"

	"github.com/Azhovan/confgroup"
	"github.com/Azhovan/confgroup/cachefile"
	"github.com/Azhovan/confgroup/sourceenv"
	"github.com/Azhovan/confgroup/sourcefile"
)

var errUsage = errors.New("missing group name")

func newApp(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "confgroup",
		Usage: "Inspect merged configuration groups",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "path",
				Aliases: []string{"p"},
				Usage:   "search directory, lowest precedence first (repeatable)",
				Sources: cli.EnvVars("CONFGROUP_PATH"),
			},
			&cli.StringFlag{
				Name:    "env-prefix",
				Usage:   "also read <prefix><GROUP>__<KEY> environment variables",
				Sources: cli.EnvVars("CONFGROUP_ENV_PREFIX"),
			},
			&cli.StringFlag{
				Name:    "cache-dir",
				Usage:   "directory for cached groups",
				Sources: cli.EnvVars("CONFGROUP_CACHE_DIR"),
			},
			&cli.BoolFlag{
				Name:    "cache",
				Usage:   "read and fill the cache (requires --cache-dir)",
				Sources: cli.EnvVars("CONFGROUP_CACHE"),
			},
			&cli.DurationFlag{
				Name:  "lifetime",
				Value: cachefile.DefaultLifetime,
				Usage: "cache entry lifetime",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "debug logging on stderr",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Print one value of a group",
				ArgsUsage: "<group> <key>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "default",
						Usage: "value printed when the key is absent",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() < 2 {
						return fmt.Errorf("%w and key", errUsage)
					}
					group, err := openGroup(ctx, cmd, cmd.Args().Get(0))
					if err != nil {
						return err
					}

					value, ok := group.Lookup(cmd.Args().Get(1))
					if !ok {
						if !cmd.IsSet("default") {
							return fmt.Errorf("key %q not found in group %q", cmd.Args().Get(1), group.Name())
						}
						value = cmd.String("default")
					}
					_, err = fmt.Fprintln(stdout, value)
					return err
				},
			},
			{
				Name:      "dump",
				Usage:     "Print all values of a group",
				ArgsUsage: "<group>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "output as JSON",
					},
					&cli.StringSliceFlag{
						Name:  "redact",
						Usage: "key whose value is hidden (repeatable)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() < 1 {
						return errUsage
					}
					group, err := openGroup(ctx, cmd, cmd.Args().Get(0))
					if err != nil {
						return err
					}

					opts := []confgroup.DumpOption{confgroup.WithRedactKeys(cmd.StringSlice("redact")...)}
					if cmd.Bool("json") {
						opts = append(opts, confgroup.AsJSON())
					}
					return confgroup.DumpGroup(stdout, group, opts...)
				},
			},
			{
				Name:      "key",
				Usage:     "Print the cache key of a group",
				ArgsUsage: "<group>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() < 1 {
						return errUsage
					}
					_, err := fmt.Fprintln(stdout, confgroup.CacheKey(cmd.Args().Get(0)))
					return err
				},
			},
			{
				Name:  "watch",
				Usage: "Print the name of every group changed on disk and evict its cache entry",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					loader := newLoader(cmd)
					var mu sync.Mutex

					return sourcefile.Watch(ctx, sourcefile.Options{Paths: cmd.StringSlice("path")}, func(group string) {
						if err := loader.Forget(ctx, group); err != nil {
							fmt.Fprintf(os.Stderr, "Error: %v\n", err)
						}
						mu.Lock()
						defer mu.Unlock()
						fmt.Fprintln(stdout, group)
					})
				},
			},
		},
	}
}

// openGroup opens group through a loader built from the global flags.
func openGroup(ctx context.Context, cmd *cli.Command, group string) (*confgroup.Group, error) {
	return newLoader(cmd).Open(ctx, group, confgroup.InheritCaching)
}

// newLoader builds a loader from the global flags.
func newLoader(cmd *cli.Command) *confgroup.Loader {
	level := slog.LevelInfo
	if cmd.Bool("verbose") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	resolvers := []confgroup.Resolver{
		sourcefile.New(sourcefile.Options{Paths: cmd.StringSlice("path")}),
	}
	if prefix := cmd.String("env-prefix"); prefix != "" {
		resolvers = append(resolvers, sourceenv.New(sourceenv.Options{Prefix: prefix}))
	}

	loader := confgroup.NewLoader(confgroup.Chain(resolvers...)).WithLogger(logger)
	if dir := cmd.String("cache-dir"); dir != "" {
		loader.WithCache(cachefile.New(dir, cachefile.Options{Lifetime: cmd.Duration("lifetime")})).
			Caching(cmd.Bool("cache"))
	}

	return loader
}
