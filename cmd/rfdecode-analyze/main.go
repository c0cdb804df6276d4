package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/d21d3q/gorfdecode/internal/config"
	"github.com/d21d3q/gorfdecode/internal/options"
	"github.com/d21d3q/gorfdecode/internal/output"
	"github.com/d21d3q/gorfdecode/pkg/rfdecode"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rfdecode-analyze [rows]",
		Short: "Decode demodulated OOK bit rows",
		Long: `rfdecode-analyze decodes demodulated bit rows into device readings.

Rows are separated by '/'. Each row is either a run of binary digits
("110101011") or rtl_433 {N}hex notation ("{9}d58").`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd, os.Stdout)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			filePath, _ := cmd.Flags().GetString("file")
			switch {
			case filePath != "":
				return app.runFile(ctx, filePath)
			case len(args) == 0:
				return app.runInteractive(ctx, os.Stdin)
			default:
				return app.runAnalyze(ctx, args[0])
			}
		},
	}

	flags := cmd.Flags()
	flags.String("config", "", "YAML configuration file")
	flags.String("format", "json", "output format: json, kv or cbor")
	flags.CountP("verbose", "v", "increase verbosity (-v debug trace, -vv trace)")
	flags.StringSlice("protocol", nil, "restrict decoding to the named decoders (repeatable)")
	flags.Bool("switches", false, "report physical DIP switch positions")
	flags.String("file", "", "decode one input per line from a file ('-' for stdin)")
	flags.Int("workers", 4, "worker count for --file")

	cmd.AddCommand(&cobra.Command{
		Use:   "protocols",
		Short: "List the built-in decoders and their modulation parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listProtocols(cmd.OutOrStdout())
		},
	})
	return cmd
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	ctx := context.Background()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logrus.Fatal(err)
	}
}

type app struct {
	cfg    config.Config
	opts   rfdecode.AnalyzeOptions
	enc    *output.Encoder
	log    *logrus.Logger
	prompt io.Writer
}

// newApp merges the config file with explicitly set flags. Records go to w;
// the interactive prompt goes to stderr.
func newApp(cmd *cobra.Command, w io.Writer) (*app, error) {
	flags := cmd.Flags()
	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if flags.Changed("format") {
		cfg.Format, _ = flags.GetString("format")
	}
	if flags.Changed("verbose") {
		cfg.Verbosity, _ = flags.GetCount("verbose")
	}
	if flags.Changed("protocol") {
		cfg.Protocols, _ = flags.GetStringSlice("protocol")
	}
	if flags.Changed("switches") {
		cfg.ShowSwitches, _ = flags.GetBool("switches")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	format, err := output.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}

	level := options.LevelForVerbosity(cfg.Verbosity)
	if cfg.LogLevel != "" && !flags.Changed("verbose") {
		if level, err = options.ParseLevel(cfg.LogLevel); err != nil {
			return nil, err
		}
	}
	log := logrus.StandardLogger()
	log.SetLevel(level)
	opts := rfdecode.AnalyzeOptions{
		Protocols:    cfg.Protocols,
		ShowSwitches: cfg.ShowSwitches,
	}
	if log.IsLevelEnabled(logrus.DebugLevel) {
		opts.Tracer = log
	}
	return &app{
		cfg:    cfg,
		opts:   opts,
		enc:    output.NewEncoder(w, format),
		log:    log,
		prompt: os.Stderr,
	}, nil
}

func (a *app) runInteractive(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	a.log.Info("rfdecode analyze mode. Paste bit rows and press Enter (Ctrl+D to exit).")
	for {
		fmt.Fprint(a.prompt, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := a.runAnalyze(ctx, line); err != nil {
			a.log.WithError(err).Error("failed to decode rows")
		}
	}
	return scanner.Err()
}

func (a *app) runAnalyze(ctx context.Context, raw string) error {
	result, err := rfdecode.AnalyzeWithOptions(ctx, raw, a.opts)
	if err != nil {
		return err
	}
	return a.emit(result)
}

func (a *app) runFile(ctx context.Context, path string) error {
	lines, err := readLines(path)
	if err != nil {
		return err
	}
	items, err := rfdecode.AnalyzeBatch(ctx, lines, a.opts, a.cfg.Workers)
	if err != nil {
		return err
	}
	matched, failed := 0, 0
	for _, item := range items {
		if item.Err != nil {
			failed++
			a.log.WithError(item.Err).WithField("input", item.Input).Error("failed to decode rows")
			continue
		}
		if item.Result.Matched() {
			matched++
		}
		if err := a.emit(item.Result); err != nil {
			return err
		}
	}
	a.log.WithFields(logrus.Fields{
		"inputs":  len(items),
		"matched": matched,
		"failed":  failed,
	}).Info("batch complete")
	return nil
}

func (a *app) emit(result rfdecode.Result) error {
	if !result.Matched() {
		entry := a.log.WithField("input", result.Input)
		for _, rj := range result.Rejections {
			entry.WithField("decoder", rj.Decoder).Debug(rj.Reason)
		}
		entry.Info("no decoder matched")
		return nil
	}
	return a.enc.Encode(result.Record)
}

func readLines(path string) ([]string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return lines, nil
}

func listProtocols(w io.Writer) error {
	for _, d := range rfdecode.DefaultRegistry().Decoders() {
		desc := d.Descriptor()
		tm := desc.Timing
		_, err := fmt.Fprintf(w, "%-20s %s\n    %s short=%d long=%d sync=%d gap=%d reset=%d tolerance=%d rows=%d bits=%d fields=%s\n",
			desc.Name, desc.Description, desc.Modulation,
			tm.Short, tm.Long, tm.Sync, tm.Gap, tm.Reset, tm.Tolerance,
			desc.Rows, desc.Bits, strings.Join(desc.Fields, ","))
		if err != nil {
			return err
		}
	}
	return nil
}
