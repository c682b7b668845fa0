// Package tabular scans the tab-separated text files NCBI distributes.
package tabular

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/errors"
)

const (
	// MaxLineBytes bounds a single line.
	MaxLineBytes = 16 * 1024 * 1024

	ctxCheckInterval = 4096
)

// LineFunc receives the one-based line number and the tab-separated fields
// of a line.
type LineFunc func(line int, fields []string) error

// Scan calls fn for every line of r that is neither empty nor a "#" comment.
// The context is polled every few thousand lines.  name identifies the source
// in read errors.
func Scan(ctx context.Context, r io.Reader, name string, fn LineFunc) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), MaxLineBytes)
	line := 0
	for sc.Scan() {
		line++
		if line%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if err := fn(line, strings.Split(text, "\t")); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeDataSourceUnavailable, "reading "+name)
	}
	return ctx.Err()
}

//Personal.AI order the ending
