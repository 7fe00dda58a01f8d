package cmd

import (
	"io"
	"strings"

	"wordfreq/internal/output"
)

type cliErrorHint struct {
	NextAction  string
	FixExample  string
	DocKey      string
	Recoverable bool
}

// writeCLIError emits meta/error/summary events for failures that happen
// before a run produces its own events.
func writeCLIError(w io.Writer, format string, args []string, code, category, path, detail string, exitCode int) {
	h := cliHintByCode(code)
	events := []map[string]any{
		{
			"type":          "meta",
			"tool":          "wordfreq",
			"version":       Version,
			"args":          args,
			"output_format": format,
		},
		{
			"type":        "error",
			"code":        code,
			"category":    category,
			"path":        path,
			"detail":      detail,
			"next_action": h.NextAction,
			"fix_example": h.FixExample,
			"doc_key":     h.DocKey,
			"recoverable": h.Recoverable,
		},
		{
			"type":            "summary",
			"roots":           0,
			"total_files":     0,
			"processed_files": 0,
			"skipped_files":   0,
			"error_count":     1,
			"token_count":     0,
			"unique_words":    0,
			"exit_code":       exitCode,
		},
	}
	_ = output.Write(w, normalizeFormat(format), events)
}

func normalizeFormat(format string) string {
	switch format {
	case "json", "ndjson":
		return format
	}
	return "text"
}

func detectFormatFromArgs(args []string) string {
	format := "text"
	for i := 0; i < len(args); i++ {
		a := strings.TrimSpace(args[i])
		if a == "--format" {
			if i+1 < len(args) {
				return normalizeFormat(args[i+1])
			}
			continue
		}
		if strings.HasPrefix(a, "--format=") {
			return normalizeFormat(strings.TrimPrefix(a, "--format="))
		}
	}
	return format
}

func cliHintByCode(code string) cliErrorHint {
	switch code {
	case "invalid_output_format":
		return cliErrorHint{
			NextAction:  "set --format to text, ndjson or json",
			FixExample:  "wordfreq /path/to/input_dir --format ndjson",
			DocKey:      "arg.invalid_output_format",
			Recoverable: true,
		}
	case "invalid_max_file_size":
		return cliErrorHint{
			NextAction:  "set --max-file-size to a valid size such as 10MB",
			FixExample:  "wordfreq /path/to/input_dir --max-file-size 20MB",
			DocKey:      "arg.invalid_max_file_size",
			Recoverable: true,
		}
	case "invalid_log_level":
		return cliErrorHint{
			NextAction:  "set --log-level to debug, info, warn or error",
			FixExample:  "wordfreq /path/to/input_dir --log-level info",
			DocKey:      "arg.invalid_log_level",
			Recoverable: true,
		}
	case "invalid_option", "invalid_flag":
		return cliErrorHint{
			NextAction:  "check flag names and values (jobs >= 1, top/bottom >= 0, non-empty --ext)",
			FixExample:  "wordfreq /path/to/input_dir --jobs 4 --ext .txt",
			DocKey:      "arg.invalid_option",
			Recoverable: true,
		}
	case "config_invalid":
		return cliErrorHint{
			NextAction:  "fix the config file or WFQ_* environment variables and retry",
			FixExample:  "wordfreq /path/to/input_dir --config /path/to/wordfreq.yaml",
			DocKey:      "config.invalid",
			Recoverable: true,
		}
	case "cwd_failed":
		return cliErrorHint{
			NextAction:  "make sure the working directory is accessible",
			FixExample:  "cd /path/to/workspace && wordfreq /path/to/input_dir",
			DocKey:      "runtime.cwd_failed",
			Recoverable: true,
		}
	case "output_write_failed", "metrics_write_failed":
		return cliErrorHint{
			NextAction:  "check that the output pipe or target file is writable",
			FixExample:  "wordfreq /path/to/input_dir --format ndjson > result.ndjson",
			DocKey:      "runtime.output_write_failed",
			Recoverable: true,
		}
	default:
		return cliErrorHint{
			NextAction:  "fix arguments or configuration according to detail",
			FixExample:  "wordfreq --help",
			DocKey:      "general.error",
			Recoverable: true,
		}
	}
}
