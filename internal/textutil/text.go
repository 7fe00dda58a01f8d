package textutil

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/encoding/simplifiedchinese"
	textunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	TabWidth = 4

	// wordChunkBytes caps one word handed to an EachWord callback.
	wordChunkBytes = 64 * 1024
)

func DetectBinary(sample []byte) bool {
	if len(sample) == 0 {
		return false
	}
	ctl := 0
	for _, b := range sample {
		if b == 0 {
			return true
		}
		if b == 9 || b == 10 || b == 13 {
			continue
		}
		if b < 32 || b == 127 {
			ctl++
		}
	}
	ratio := float64(ctl) / float64(len(sample))
	return ratio > 0.30
}

// NewTextReader picks the encoding of r from sample, the first bytes of the
// same stream, and returns a reader producing UTF-8. sample may end in the
// middle of a rune.
func NewTextReader(sample []byte, r io.Reader) (io.Reader, string, error) {
	if bytes.HasPrefix(sample, utf8BOM) {
		return transform.NewReader(r, textunicode.UTF8BOM.NewDecoder()), "utf-8-bom", nil
	}
	if utf8.Valid(trimPartialRune(sample)) {
		return r, "utf-8", nil
	}
	if out, err := simplifiedchinese.GB18030.NewDecoder().Bytes(sample); err == nil && utf8.Valid(out) {
		return transform.NewReader(r, simplifiedchinese.GB18030.NewDecoder()), "gb18030", nil
	}
	return nil, "", fmt.Errorf("unrecognized text encoding (supported: utf-8/gbk/gb18030)")
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func trimPartialRune(b []byte) []byte {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if !utf8.FullRune(b[i:]) {
				return b[:i]
			}
			break
		}
	}
	return b
}

// IsLegal reports whether c may appear in a token. Callers fold case first.
func IsLegal(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// Tokenize lowercases word and returns its maximal runs of [a-z0-9] in order.
// Everything else, including any non-ASCII byte, separates tokens.
func Tokenize(word string) []string {
	var out []string
	buf := make([]byte, 0, len(word))
	for i := 0; i < len(word); i++ {
		c := lower(word[i])
		if IsLegal(c) {
			buf = append(buf, c)
			continue
		}
		if len(buf) > 0 {
			out = append(out, string(buf))
			buf = buf[:0]
		}
	}
	if len(buf) > 0 {
		out = append(out, string(buf))
	}
	return out
}

// EachWord calls fn for every whitespace-delimited word read from r. A word
// longer than wordChunkBytes arrives in pieces, cut after a separator byte
// when the piece contains one, so no token is lost.
func EachWord(r io.Reader, fn func(word string)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 2*wordChunkBytes)
	sc.Split(scanBoundedWords(wordChunkBytes))
	for sc.Scan() {
		fn(sc.Text())
	}
	return sc.Err()
}

// scanBoundedWords splits on white space like bufio.ScanWords but never
// returns a word longer than limit.
func scanBoundedWords(limit int) bufio.SplitFunc {
	return func(data []byte, atEOF bool) (int, []byte, error) {
		start := bytes.IndexFunc(data, func(r rune) bool { return !unicode.IsSpace(r) })
		if start < 0 {
			return len(data), nil, nil
		}
		word := data[start:]
		end := bytes.IndexFunc(word, unicode.IsSpace)
		if end >= 0 {
			word = word[:end]
		}
		unfinished := end < 0 && !atEOF
		if len(word) > limit || (unfinished && len(word) >= limit) {
			cut := limit
			for i := limit - 1; i > 0; i-- {
				if !IsLegal(lower(word[i])) {
					cut = i + 1
					break
				}
			}
			return start + cut, word[:cut], nil
		}
		if unfinished {
			return start, nil, nil
		}
		return start + len(word), word, nil
	}
}

func DisplayWidth(s string) int {
	col := 0
	for _, r := range s {
		if r == '\t' {
			col += TabWidth - (col % TabWidth)
			continue
		}
		w := runewidth.RuneWidth(r)
		if w <= 0 {
			w = 1
		}
		col += w
	}
	return col
}

// PadRight pads s with spaces to the given display width.
func PadRight(s string, width int) string {
	w := DisplayWidth(s)
	if w >= width {
		return s
	}
	return s + spaces(width-w)
}

// PadLeft right-aligns s within the given display width.
func PadLeft(s string, width int) string {
	w := DisplayWidth(s)
	if w >= width {
		return s
	}
	return spaces(width-w) + s
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
