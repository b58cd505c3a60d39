package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"github.com/woozymasta/squeeze"
	"github.com/woozymasta/squeeze/internal/config"
	"go.uber.org/zap"
)

// env is the state shared by commands after the global flags are parsed.
type env struct {
	cfg        *config.Config
	logger     *zap.SugaredLogger
	compressor *squeeze.Compressor
}

func newApp() *cli.App {
	e := &env{}

	return &cli.App{
		Name:  "squeeze",
		Usage: "Shrink raster images by quality, dimension, sample rate or optimized entropy coding",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML file with default settings",
				EnvVars: []string{"SQUEEZE_CONFIG"},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log every compressed image",
			},
		},
		Before: e.setup,
		After:  e.teardown,
		Commands: []*cli.Command{
			{
				Name:      "quality",
				Usage:     "Re-encode an image at a lower JPEG quality",
				ArgsUsage: "SOURCE DESTINATION",
				Flags:     []cli.Flag{qualityFlag()},
				Action:    e.single(squeeze.StrategyQuality),
			},
			{
				Name:      "dimension",
				Usage:     "Downscale an image by an integer ratio",
				ArgsUsage: "SOURCE DESTINATION",
				Flags:     []cli.Flag{ratioFlag()},
				Action:    e.single(squeeze.StrategyDimension),
			},
			{
				Name:      "sample",
				Usage:     "Decode an image keeping one pixel per block",
				ArgsUsage: "SOURCE DESTINATION",
				Flags:     []cli.Flag{factorFlag()},
				Action:    e.single(squeeze.StrategySampleRate),
			},
			{
				Name:      "optimize",
				Usage:     "Re-encode an image with image-specific Huffman tables",
				ArgsUsage: "SOURCE DESTINATION",
				Flags:     []cli.Flag{qualityFlag()},
				Action:    e.single(squeeze.StrategyOptimized),
			},
			{
				Name:      "batch",
				Usage:     "Compress many images concurrently",
				ArgsUsage: "SOURCE...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "strategy",
						Aliases: []string{"s"},
						Usage:   "quality, dimension, sample or optimized",
						Value:   squeeze.StrategyOptimized.String(),
					},
					&cli.StringFlag{
						Name:     "out",
						Aliases:  []string{"o"},
						Usage:    "destination directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "jobs",
						Aliases: []string{"j"},
						Usage:   "concurrent workers (default from config)",
					},
					&cli.StringFlag{
						Name:  "report",
						Usage: "write a CSV report to this file",
					},
					qualityFlag(),
					ratioFlag(),
					factorFlag(),
				},
				Action: e.batch,
			},
			{
				Name:      "info",
				Usage:     "Print format and dimensions of images",
				ArgsUsage: "SOURCE...",
				Action:    e.info,
			},
		},
	}
}

func qualityFlag() cli.Flag {
	return &cli.IntFlag{Name: "quality", Aliases: []string{"q"}, Usage: "JPEG quality 0-100 (default from config)"}
}

func ratioFlag() cli.Flag {
	return &cli.IntFlag{Name: "ratio", Aliases: []string{"r"}, Usage: "dimension divisor (default from config)"}
}

func factorFlag() cli.Flag {
	return &cli.IntFlag{Name: "factor", Aliases: []string{"f"}, Usage: "sample factor (default from config)"}
}

// setup loads configuration and builds the logger and compressor.
func (e *env) setup(c *cli.Context) error {
	e.cfg = config.Default()
	if path := c.String("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		e.cfg = cfg
	}

	logger, err := newLogger("squeeze", c.Bool("verbose"))
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	e.logger = logger.Sugar()

	opts, err := e.cfg.Options(logger)
	if err != nil {
		return err
	}
	e.compressor = squeeze.New(opts)

	return nil
}

func (e *env) teardown(*cli.Context) error {
	if e.logger != nil {
		_ = e.logger.Sync()
	}
	return nil
}

// request builds a path-based request, filling unset flags from config.
func (e *env) request(c *cli.Context, s squeeze.Strategy, source, destination string) (*squeeze.Request, error) {
	mode, err := e.cfg.Mode()
	if err != nil {
		return nil, err
	}

	req := &squeeze.Request{
		Strategy:     s,
		SourcePath:   source,
		Sink:         &squeeze.FileSink{Path: destination, Mode: mode},
		Quality:      e.cfg.Quality,
		Ratio:        e.cfg.Ratio,
		SampleFactor: e.cfg.SampleFactor,
	}
	if s == squeeze.StrategyOptimized {
		req.Quality = e.cfg.OptimizedQuality
	}
	if c.IsSet("quality") {
		req.Quality = c.Int("quality")
	}
	if c.IsSet("ratio") {
		req.Ratio = c.Int("ratio")
	}
	if c.IsSet("factor") {
		req.SampleFactor = c.Int("factor")
	}

	return req, nil
}

func (e *env) single(s squeeze.Strategy) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.NArg() != 2 {
			return cli.Exit(fmt.Sprintf("usage: %s %s", c.Command.FullName(), c.Command.ArgsUsage), 2)
		}

		req, err := e.request(c, s, c.Args().Get(0), c.Args().Get(1))
		if err != nil {
			return err
		}

		res, err := e.compress(req)
		if err != nil {
			e.logger.Warnw("compress error", "source", req.SourcePath, "strategy", s.String(), "error", err)
			return err
		}

		e.logger.Infow("image compressed",
			"source", req.SourcePath,
			"destination", c.Args().Get(1),
			"strategy", s.String(),
			"width", res.Width,
			"height", res.Height,
			"bytes", res.Size,
		)

		return nil
	}
}

// compress runs req with its quality taken literally. Compress treats a zero
// Request.Quality as "use the default", so the quality strategies decode the
// source and call the strategy methods directly.
func (e *env) compress(req *squeeze.Request) (squeeze.Result, error) {
	switch req.Strategy {
	case squeeze.StrategyQuality, squeeze.StrategyOptimized:
		if err := req.Validate(); err != nil {
			return squeeze.Result{}, err
		}
		buf, err := squeeze.ReadWithCodec(req.SourcePath, e.compressor.Codec())
		if err != nil {
			return squeeze.Result{}, err
		}
		if req.Strategy == squeeze.StrategyQuality {
			return e.compressor.Quality(buf, req.Sink, req.Quality)
		}
		return e.compressor.Optimized(buf, req.Sink, req.Quality)
	default:
		return e.compressor.Compress(req)
	}
}
