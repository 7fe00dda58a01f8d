package app

type errorHint struct {
	NextAction  string
	FixExample  string
	DocKey      string
	Recoverable bool
}

func buildErrorEvent(category, code, path, detail string) map[string]any {
	h := hintByCode(code)
	return map[string]any{
		"type":        "error",
		"code":        code,
		"category":    category,
		"path":        path,
		"detail":      detail,
		"next_action": h.NextAction,
		"fix_example": h.FixExample,
		"doc_key":     h.DocKey,
		"recoverable": h.Recoverable,
	}
}

func hintByCode(code string) errorHint {
	switch code {
	case "input_path_not_found":
		return errorHint{
			NextAction:  "check that the path exists and is spelled correctly",
			FixExample:  "wordfreq /path/to/input_dir",
			DocKey:      "input.path_not_found",
			Recoverable: true,
		}
	case "input_abs_failed", "input_stat_failed", "walk_error", "file_stat_failed", "file_read_failed":
		return errorHint{
			NextAction:  "check permissions and readability of the path",
			FixExample:  "chmod -R +r /path/to/input_dir && wordfreq /path/to/input_dir",
			DocKey:      "input.path_access",
			Recoverable: true,
		}
	case "symlink_skipped":
		return errorHint{
			NextAction:  "symlinks are never followed; pass the real path instead",
			FixExample:  "wordfreq /real/path/to/input_dir",
			DocKey:      "input.symlink_skipped",
			Recoverable: true,
		}
	case "skipped_large_file":
		return errorHint{
			NextAction:  "raise --max-file-size or exclude the file",
			FixExample:  "wordfreq /path/to/input_dir --max-file-size 50MB",
			DocKey:      "input.max_file_size",
			Recoverable: true,
		}
	case "skipped_binary_file":
		return errorHint{
			NextAction:  "binary file; narrow --ext to text extensions",
			FixExample:  "wordfreq /path/to/input_dir --ext .txt,.md",
			DocKey:      "input.binary_skipped",
			Recoverable: true,
		}
	case "decode_failed":
		return errorHint{
			NextAction:  "convert the file to utf-8, gbk or gb18030 first",
			FixExample:  "iconv -f latin1 -t utf-8 input.txt -o output.txt && wordfreq output.txt",
			DocKey:      "input.decode_failed",
			Recoverable: true,
		}
	case "queue_closed":
		return errorHint{
			NextAction:  "internal ordering bug: the work queue closed before a walker finished; please report it",
			FixExample:  "wordfreq --log-level debug /path/to/input_dir",
			DocKey:      "internal.queue_closed",
			Recoverable: false,
		}
	default:
		return errorHint{
			NextAction:  "fix the input or configuration according to detail",
			FixExample:  "wordfreq --help",
			DocKey:      "general.error",
			Recoverable: true,
		}
	}
}
