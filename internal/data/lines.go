package data

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-kratos/kratos/v2/encoding"
	"github.com/go-kratos/kratos/v2/encoding/json"

	"tagcurator/internal/biz"
)

// maxLineSize bounds a single input line; tag strings of heavily tagged
// posts run to tens of kilobytes.
const maxLineSize = 16 << 20

var jsonCodec = encoding.GetCodec(json.Name)

// eachLine calls fn for every non-blank line of path with its 1-based line
// number. Lines are trimmed.
func eachLine(path string, fn func(line int, text string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineSize)
	n := 0
	for sc.Scan() {
		n++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if err := fn(n, text); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

// eachJSONLine decodes every non-blank line of path into a fresh T.
func eachJSONLine[T any](path string, fn func(line int, row *T) error) error {
	return eachLine(path, func(line int, text string) error {
		row := new(T)
		if err := jsonCodec.Unmarshal([]byte(text), row); err != nil {
			return malformed(path, line, "%v", err)
		}
		return fn(line, row)
	})
}

// readList reads a newline-delimited list. A missing file is an error unless
// optional is set, in which case it reads as empty.
func readList(path string, optional bool) ([]string, error) {
	var out []string
	err := eachLine(path, func(_ int, text string) error {
		out = append(out, text)
		return nil
	})
	if optional && errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return out, err
}

func malformed(path string, line int, format string, args ...any) error {
	return biz.ErrorMalformedInput("%s:%d: %s", path, line, fmt.Sprintf(format, args...))
}
