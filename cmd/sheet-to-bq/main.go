package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dvloznov/sheet-to-bq/internal/config"
	infra "github.com/dvloznov/sheet-to-bq/internal/infra/bigquery"
	"github.com/dvloznov/sheet-to-bq/internal/ingest"
	"github.com/dvloznov/sheet-to-bq/internal/logger"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Command failed")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "sheet-to-bq",
		Usage: "Append the first row of a published Google Sheet to a BigQuery table",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "dotenv file loaded before reading the environment",
				Value: ".env",
			},
		},
		Action: runCommand,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Invoke the handler once and print its response (default)",
				Action: runCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "snapshot",
						Usage: "gs:// URI of an archived CSV snapshot to load instead of the live sheet",
					},
				},
			},
			{
				Name:   "provision",
				Usage:  "Create the destination table if it does not exist",
				Action: provisionCommand,
			},
			{
				Name:   "count",
				Usage:  "Print the number of rows in the destination table",
				Action: countCommand,
			},
		},
	}
}

func setup(c *cli.Context) (context.Context, config.Config, error) {
	if err := config.LoadDotEnv(c.String("env-file")); err != nil {
		return nil, config.Config{}, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, config.Config{}, err
	}

	log := logger.NewWithOptions(cfg.LogLevel, cfg.LogFormat)
	return logger.WithContext(c.Context, log), cfg, nil
}

func runCommand(c *cli.Context) error {
	out := c.App.Writer
	fmt.Fprintln(out, "--- Starting local run of hello_http ---")

	ctx, cfg, err := setup(c)
	if err != nil {
		// The handler contract is to report, not fail.
		fmt.Fprintf(out, "--- Function finished. Response: %s%s ---\n", ingest.ErrorPrefix, err)
		return nil
	}

	var result ingest.Result
	if uri := c.String("snapshot"); uri != "" {
		result = ingest.RunFromSnapshot(ctx, cfg, uri)
	} else {
		result = ingest.Run(ctx, cfg)
	}

	fmt.Fprintf(out, "--- Function finished. Response: %s ---\n", result.Message())
	return nil
}

func provisionCommand(c *cli.Context) error {
	ctx, cfg, err := setup(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w, err := infra.NewTableWriter(ctx, cfg)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.EnsureTable(ctx); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Table %s is ready.\n", w.Table())
	return nil
}

func countCommand(c *cli.Context) error {
	ctx, cfg, err := setup(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w, err := infra.NewTableWriter(ctx, cfg)
	if err != nil {
		return err
	}
	defer w.Close()

	n, err := w.CountRows(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "%s: %d row(s)\n", w.Table(), n)
	return nil
}
