package cmd

import "strings"

func rootLongHelp() string {
	return strings.TrimSpace(`
Word frequency over directory trees.

Every path is walked by its own walker; matching files are tokenized by a pool
of workers and the most and least frequent tokens are reported.

Tokens:
- words are whitespace-delimited, then lowercased
- a token is a maximal run of a-z / 0-9; everything else separates tokens
- "Hello, World!" gives hello, world; "a1-b2_c3" gives a1, b2, c3

Input:
- default path: current directory
- default extension filter: .txt (--ext, repeatable or comma separated)
- symlinks are never followed
- every directory is visited; --respect-ignores skips .git/.svn/node_modules/
  vendor/dist/build and .gitignore entries
- --ignore globs always apply
- binary files and files over --max-file-size (default: no limit) are skipped

Configuration (later wins):
1. built-in defaults
2. --config wordfreq.yaml (top-level key "wordfreq", ${VAR:-default} expanded)
3. WFQ_EXTENSIONS, WFQ_JOBS, WFQ_TOP, WFQ_BOTTOM, WFQ_MAX_FILE_SIZE,
   WFQ_IGNORE_PATTERNS, WFQ_RESPECT_IGNORES
4. flags given on the command line

Output (--format):
- text: "count - word" lists plus a summary line; warnings go to stderr
- ndjson / json: meta, error, word, summary events

Exit codes:
- 0 ok
- 2 argument error
- 3 some input could not be read
- 4 config error
- 5 internal error
`)
}

func rootExampleHelp() string {
	return strings.TrimSpace(`
  # current directory, .txt files
  wordfreq

  # several trees, markdown and text, 20 most frequent
  wordfreq ~/notes ~/docs --ext .md,.txt --top 20

  # machine readable output and Prometheus textfile
  wordfreq /srv/corpus --format ndjson --metrics-file /var/lib/node_exporter/wordfreq.prom

  # settings from a file, verbose diagnostics
  wordfreq /srv/corpus --config wordfreq.yaml --log-level debug
`)
}
