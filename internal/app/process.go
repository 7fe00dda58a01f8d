package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"wordfreq/internal/counter"
	"wordfreq/internal/metrics"
	"wordfreq/internal/queue"
	"wordfreq/internal/textutil"
)

const binarySampleBytes = 8192

// processor is one consumer of the path queue.
type processor struct {
	id       int
	queue    *queue.Queue[string]
	counts   *counter.Counter[string]
	maxBytes int64
	runLog   *runLog
	metrics  *metrics.Run
	log      *slog.Logger
}

func (p *processor) run() {
	for {
		path, ok := p.queue.Pop()
		if !ok {
			p.log.Debug("processor exiting", "worker", p.id)
			return
		}
		p.process(path)
	}
}

func (p *processor) process(path string) {
	info, err := os.Stat(path)
	if err != nil {
		p.metrics.Skipped("stat_failed")
		p.runLog.inputError("file_stat_failed", path, err.Error())
		return
	}
	if p.maxBytes > 0 && info.Size() > p.maxBytes {
		p.skipLarge(path, fmt.Sprintf("file size %d exceeds limit %d", info.Size(), p.maxBytes))
		return
	}

	f, err := os.Open(path)
	if err != nil {
		p.metrics.Skipped("read_failed")
		p.runLog.inputError("file_read_failed", path, err.Error())
		return
	}
	defer f.Close()

	br := bufio.NewReaderSize(&sizeGuard{r: f, limit: p.maxBytes}, binarySampleBytes)
	sample, err := br.Peek(binarySampleBytes)
	if err != nil && !errors.Is(err, io.EOF) {
		p.readFailed(path, err)
		return
	}
	if textutil.DetectBinary(sample) {
		p.metrics.Skipped("binary")
		p.runLog.fileSkipped("skipped_binary_file", path, "detected as binary")
		return
	}
	text, encoding, err := textutil.NewTextReader(sample, br)
	if err != nil {
		p.metrics.Skipped("decode_failed")
		p.runLog.fileSkipped("decode_failed", path, err.Error())
		return
	}

	// A failure part way through discards the local tally, so the file
	// contributes nothing.
	tally, tokens, err := tokenizeText(text)
	if err != nil {
		p.readFailed(path, err)
		return
	}
	for word, n := range tally {
		p.counts.Add(word, n)
	}
	p.metrics.Tokens.Add(float64(tokens))
	p.metrics.FilesProcessed.Inc()
	p.runLog.fileDone()
	p.log.Debug("file processed", "worker", p.id, "path", path, "encoding", encoding, "tokens", tokens)
}

func (p *processor) skipLarge(path, detail string) {
	p.metrics.Skipped("too_large")
	p.runLog.fileSkipped("skipped_large_file", path, detail)
}

func (p *processor) readFailed(path string, err error) {
	if errors.Is(err, errGrewPastLimit) {
		p.skipLarge(path, fmt.Sprintf("file grew past limit %d while reading", p.maxBytes))
		return
	}
	p.metrics.Skipped("read_failed")
	p.runLog.inputError("file_read_failed", path, err.Error())
}

var errGrewPastLimit = errors.New("file grew past size limit")

// sizeGuard fails reads once more than limit bytes came through. A zero limit
// disables the check.
type sizeGuard struct {
	r     io.Reader
	n     int64
	limit int64
}

func (g *sizeGuard) Read(b []byte) (int, error) {
	n, err := g.r.Read(b)
	g.n += int64(n)
	if g.limit > 0 && g.n > g.limit {
		return n, errGrewPastLimit
	}
	return n, err
}

// tokenizeText tallies tokens per file so the shared counter is locked once
// per distinct word instead of once per occurrence.
func tokenizeText(r io.Reader) (map[string]int, int, error) {
	tally := make(map[string]int)
	tokens := 0
	err := textutil.EachWord(r, func(word string) {
		for _, tok := range textutil.Tokenize(word) {
			tally[tok]++
			tokens++
		}
	})
	if err != nil {
		return nil, 0, err
	}
	return tally, tokens, nil
}
