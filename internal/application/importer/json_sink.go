package importer

import (
	"bufio"
	"context"
	"encoding/json"
	"io"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/config"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/domain/concept"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/infrastructure/monitoring/logging"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/errors"
)

// JSONSink writes one JSON concept per line.
type JSONSink struct {
	w       io.WriteCloser
	buf     *bufio.Writer
	enc     *json.Encoder
	written int
	logger  logging.Logger
}

func NewJSONSink(w io.WriteCloser, log logging.Logger) *JSONSink {
	if log == nil {
		log = logging.NewNopLogger()
	}
	buf := bufio.NewWriter(w)
	return &JSONSink{w: w, buf: buf, enc: json.NewEncoder(buf), logger: log}
}

func (s *JSONSink) Name() string { return config.SinkJSON }

func (s *JSONSink) Write(ctx context.Context, concepts []*concept.Concept) error {
	for _, c := range concepts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.enc.Encode(c); err != nil {
			return errors.Wrap(err, errors.ErrCodeSinkWriteFailed, "failed to write concept").WithDetail(c.Key().String())
		}
		s.written++
	}
	return nil
}

// Close flushes buffered lines and closes the underlying writer.
func (s *JSONSink) Close(ctx context.Context) error {
	if err := s.buf.Flush(); err != nil {
		_ = s.w.Close()
		return errors.Wrap(err, errors.ErrCodeSinkWriteFailed, "failed to flush concepts")
	}
	if err := s.w.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeSinkWriteFailed, "failed to close concept output")
	}
	s.logger.Info("JSON sink closed", logging.Int("concepts", s.written))
	return nil
}

//Personal.AI order the ending
