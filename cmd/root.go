package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"wordfreq/internal/app"
	"wordfreq/internal/config"
	"wordfreq/internal/metrics"
	"wordfreq/internal/output"
)

type commonFlags struct {
	Config      string
	Format      string
	Extensions  []string
	Jobs        int
	Top         int
	Bottom      int
	Ignore      []string
	RespectIgnores bool
	MaxFileSize string
	MetricsFile string
	LogLevel    string
	ShowVersion bool
}

func Execute() int {
	return ExecuteArgs(os.Args[1:], os.Stdout, os.Stderr)
}

// ExecuteArgs runs the root command on args and returns the process exit code.
func ExecuteArgs(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		var ee *ExitError
		if errors.As(err, &ee) {
			if ee.Msg != "" {
				fmt.Fprintln(stderr, ee.Msg)
			}
			if ee.Event != "" {
				if format := detectFormatFromArgs(args); format != "text" {
					writeCLIError(stdout, format, args, ee.Event, categoryForExit(ee.Code), "", ee.Msg, ee.Code)
				}
			}
			return ee.Code
		}
		fmt.Fprintln(stderr, err.Error())
		return ExitInternal
	}
	return ExitOK
}

func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	flags := &commonFlags{}
	root := &cobra.Command{
		Use:           "wordfreq [paths...]",
		Short:         "Report the most and least frequent words across directory trees",
		Long:          rootLongHelp(),
		Example:       rootExampleHelp(),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.ShowVersion {
				printVersion(stdout)
				return nil
			}
			return runWordfreq(cmd.Flags(), stdout, stderr, flags, args)
		},
	}
	root.CompletionOptions.HiddenDefaultCmd = true
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: ExitArg, Msg: err.Error(), Event: "invalid_flag"}
	})
	bindFlags(root, flags)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(stdout)
		},
	}
	root.AddCommand(versionCmd)
	return root
}

func bindFlags(cmd *cobra.Command, flags *commonFlags) {
	f := cmd.Flags()
	f.StringVar(&flags.Config, "config", "", "YAML config file (optional)")
	f.StringVar(&flags.Format, "format", "text", "output format: text/ndjson/json")
	f.StringSliceVarP(&flags.Extensions, "ext", "e", []string{config.DefaultExtension}, "file extensions to count, repeatable or comma separated")
	f.IntVarP(&flags.Jobs, "jobs", "j", app.DefaultJobs(), "file processor workers (default: CPU count)")
	f.IntVarP(&flags.Top, "top", "n", config.DefaultTop, "number of most frequent words to report")
	f.IntVarP(&flags.Bottom, "bottom", "b", config.DefaultBottom, "number of least frequent words to report")
	f.StringSliceVar(&flags.Ignore, "ignore", nil, "extra ignore patterns (doublestar glob, e.g. **/testdata/**)")
	f.BoolVar(&flags.RespectIgnores, "respect-ignores", false, "skip .git/node_modules/vendor-style directories and .gitignore entries")
	f.StringVar(&flags.MaxFileSize, "max-file-size", config.DefaultMaxFileSize, "skip files larger than this (e.g. 10MB, 0 = no limit)")
	f.StringVar(&flags.MetricsFile, "metrics-file", "", "write run metrics in Prometheus textfile format")
	f.StringVar(&flags.LogLevel, "log-level", "warn", "stderr log level: debug/info/warn/error")
	f.BoolVarP(&flags.ShowVersion, "version", "v", false, "print version information")
}

// overridesFromFlags keeps only flags the user actually set so that env and
// config file values are not masked by flag defaults.
func overridesFromFlags(fs *pflag.FlagSet, flags *commonFlags) config.Settings {
	var s config.Settings
	if fs.Changed("ext") {
		s.Extensions = flags.Extensions
	}
	if fs.Changed("jobs") {
		n := flags.Jobs
		s.Jobs = &n
	}
	if fs.Changed("top") {
		n := flags.Top
		s.Top = &n
	}
	if fs.Changed("bottom") {
		n := flags.Bottom
		s.Bottom = &n
	}
	if fs.Changed("ignore") {
		s.IgnorePatterns = flags.Ignore
	}
	if fs.Changed("respect-ignores") {
		b := flags.RespectIgnores
		s.RespectIgnores = &b
	}
	if fs.Changed("max-file-size") {
		s.MaxFileSize = flags.MaxFileSize
	}
	return s
}

func runWordfreq(fs *pflag.FlagSet, stdout, stderr io.Writer, flags *commonFlags, args []string) error {
	if err := output.ValidateFormat(flags.Format); err != nil {
		return &ExitError{Code: ExitArg, Msg: err.Error(), Event: "invalid_output_format"}
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(flags.LogLevel)); err != nil {
		return &ExitError{Code: ExitArg, Msg: fmt.Sprintf("invalid --log-level: %s", flags.LogLevel), Event: "invalid_log_level"}
	}
	if _, err := config.ParseSizeToBytes(flags.MaxFileSize); err != nil {
		return &ExitError{Code: ExitArg, Msg: fmt.Sprintf("invalid --max-file-size: %s", flags.MaxFileSize), Event: "invalid_max_file_size"}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return &ExitError{Code: ExitInternal, Msg: "cannot read working directory", Event: "cwd_failed"}
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	m := metrics.NewRun()
	res, err := app.Run(app.Options{
		Paths:      args,
		CWD:        cwd,
		ConfigPath: flags.Config,
		Overrides:  overridesFromFlags(fs, flags),
		Format:     flags.Format,
		Version:    Version,
		Args:       os.Args[1:],
		Logger:     logger,
		Metrics:    m,
	})
	if err != nil {
		var argErr *app.ArgErr
		var cfgErr *app.ConfigErr
		switch {
		case errors.As(err, &argErr):
			return &ExitError{Code: ExitArg, Msg: err.Error(), Event: "invalid_option"}
		case errors.As(err, &cfgErr):
			return &ExitError{Code: ExitConfig, Msg: err.Error(), Event: "config_invalid"}
		default:
			return &ExitError{Code: ExitInternal, Msg: err.Error()}
		}
	}

	if werr := output.Write(stdout, flags.Format, res.Events); werr != nil {
		return &ExitError{Code: ExitInternal, Msg: fmt.Sprintf("write output: %v", werr), Event: "output_write_failed"}
	}
	if flags.MetricsFile != "" {
		if err := m.WriteTextfile(flags.MetricsFile); err != nil {
			return &ExitError{Code: ExitInternal, Msg: err.Error(), Event: "metrics_write_failed"}
		}
	}

	code := ExitOK
	if res.HasInternalErr {
		code = ExitInternal
	} else if res.HasInputErr {
		code = ExitInput
	}
	if code != ExitOK {
		return &ExitError{Code: code}
	}
	return nil
}
