package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"wordfreq/internal/textutil"
)

var Formats = []string{"text", "ndjson", "json"}

func ValidateFormat(v string) error {
	for _, f := range Formats {
		if v == f {
			return nil
		}
	}
	return fmt.Errorf("unsupported output format: %s (use text/ndjson/json)", v)
}

func Write(w io.Writer, format string, events []map[string]any) error {
	switch format {
	case "ndjson":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		for _, e := range events {
			if err := enc.Encode(e); err != nil {
				return err
			}
		}
		return nil
	case "json":
		obj := map[string]any{"events": events}
		b, err := json.MarshalIndent(obj, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "text":
		return writeText(w, events)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

var listTitles = map[string]string{
	"top":    "Most frequent",
	"bottom": "Least frequent",
}

// writeText renders word lists as "count - word" lines. Error events are left
// to the stderr log.
func writeText(w io.Writer, events []map[string]any) error {
	order := []string{}
	lists := map[string][]map[string]any{}
	var summary map[string]any
	for _, e := range events {
		switch e["type"] {
		case "word":
			l, _ := e["list"].(string)
			if _, ok := lists[l]; !ok {
				order = append(order, l)
			}
			lists[l] = append(lists[l], e)
		case "summary":
			summary = e
		}
	}

	for i, l := range order {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		title := listTitles[l]
		if title == "" {
			title = l
		}
		if _, err := fmt.Fprintf(w, "%s:\n", title); err != nil {
			return err
		}
		width := 0
		for _, e := range lists[l] {
			if n := textutil.DisplayWidth(fmt.Sprint(e["count"])); n > width {
				width = n
			}
		}
		for _, e := range lists[l] {
			count := textutil.PadLeft(fmt.Sprint(e["count"]), width)
			if _, err := fmt.Fprintf(w, "%s - %v\n", count, e["word"]); err != nil {
				return err
			}
		}
	}

	if summary != nil {
		if len(order) > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "%s files, %s tokens, %s unique words (%s skipped, %s errors)\n",
			num(summary["processed_files"]), num(summary["token_count"]), num(summary["unique_words"]),
			num(summary["skipped_files"]), num(summary["error_count"]))
		return err
	}
	return nil
}

func num(v any) string {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case nil:
		return "0"
	default:
		return fmt.Sprint(n)
	}
}
