package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/ironsheep/vegetation-tools-mcp/internal/config"
	"github.com/ironsheep/vegetation-tools-mcp/internal/imaging"
	"github.com/ironsheep/vegetation-tools-mcp/internal/server"
	"github.com/ironsheep/vegetation-tools-mcp/internal/vegetation"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const (
	flagInput      = "input"
	flagMaskOut    = "mask-out"
	flagOverlayOut = "overlay-out"
)

// boundFlags maps each range flag to the bound it overrides.
var boundFlags = []string{"h-min", "h-max", "s-min", "s-max", "v-min", "v-max"}

func main() {
	var (
		cfg    config.Config
		logger zerolog.Logger
	)

	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Printf("vegetation-tools-mcp %s\n", c.App.Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
	}

	app := &cli.App{
		Name:    "vegetation-tools-mcp",
		Usage:   "MCP server for HSV vegetation detection",
		Version: Version,
		Description: "Communicates via MCP protocol over stdin/stdout. Logs go to stderr.\n" +
			"Environment: IMAGE_MCP_LOG_LEVEL, VEGETATION_{H,S,V}_{MIN,MAX}, VEGETATION_BACKEND.",
		Before: func(c *cli.Context) error {
			var err error
			if cfg, err = config.Load(); err != nil {
				return err
			}

			// stdout carries the MCP protocol
			zerolog.TimeFieldFormat = time.RFC3339
			logger = zerolog.New(os.Stderr).Level(cfg.LogLevel).With().Timestamp().Logger()
			logger.Debug().
				Str("version", Version).
				Str("build_time", BuildTime).
				Str("commit", GitCommit).
				Msg("starting")
			return nil
		},
		Action: func(c *cli.Context) error {
			return serve(cfg, logger)
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the MCP server on stdio",
				Action: func(c *cli.Context) error {
					return serve(cfg, logger)
				},
			},
			{
				Name:      "detect",
				Usage:     "segment one image and print its metrics as JSON",
				UsageText: "vegetation-tools-mcp detect --input field.png [--h-min 30] [--mask-out mask.png]",
				Flags:     detectFlags(),
				Action: func(c *cli.Context) error {
					return detect(c, cfg, logger)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func detectFlags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:     flagInput,
			Aliases:  []string{"i"},
			Usage:    "image `FILE` to analyze",
			Required: true,
		},
		&cli.StringFlag{
			Name:  flagMaskOut,
			Usage: "write the binary mask PNG to `FILE`",
		},
		&cli.StringFlag{
			Name:  flagOverlayOut,
			Usage: "write the masked image PNG to `FILE`",
		},
	}
	for _, name := range boundFlags {
		flags = append(flags, &cli.IntFlag{
			Name:  name,
			Usage: "override the configured " + name + " bound",
		})
	}
	return flags
}

func serve(cfg config.Config, logger zerolog.Logger) error {
	srv, err := server.New(cfg, logger)
	if err != nil {
		return err
	}
	return srv.Run()
}

// rangeFromFlags applies any bound flags that were set on top of def.
func rangeFromFlags(c *cli.Context, def vegetation.ColorRange) vegetation.ColorRange {
	r := def
	targets := []*int{&r.Lower.H, &r.Upper.H, &r.Lower.S, &r.Upper.S, &r.Lower.V, &r.Upper.V}
	for i, name := range boundFlags {
		if c.IsSet(name) {
			*targets[i] = c.Int(name)
		}
	}
	return r
}

func detect(c *cli.Context, cfg config.Config, logger zerolog.Logger) error {
	backend, err := vegetation.LookupBackend(cfg.Backend)
	if err != nil {
		return err
	}

	path := c.String(flagInput)
	img, err := imaging.NewImageCache().Load(path)
	if err != nil {
		return err
	}

	r := rangeFromFlags(c, cfg.DefaultRange)
	src, order := vegetation.FromImage(img)
	mask, metrics, err := backend.Detect(src, order, r)
	if err != nil {
		return errors.Wrapf(err, "detect %s", path)
	}
	logger.Info().Str("path", path).Stringer("range", r).Stringer("metrics", metrics).Msg("detected")

	if out := c.String(flagMaskOut); out != "" {
		if err := imaging.SavePNG(out, mask.Gray()); err != nil {
			return err
		}
	}
	if out := c.String(flagOverlayOut); out != "" {
		overlay, err := imaging.ApplyMask(img, mask)
		if err != nil {
			return err
		}
		if err := imaging.SavePNG(out, overlay); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		vegetation.Metrics
		Range   vegetation.ColorRange `json:"range"`
		Backend string                `json:"backend"`
	}{metrics, r, backend.Name()})
}
