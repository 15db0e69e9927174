package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"booksweep/sim_config"
	"booksweep/sim_report"

	log "github.com/sirupsen/logrus"
)

// CSVSink appends one row per result to a CSV file. Rows already present in
// the file are loaded on open and count as saved.
type CSVSink struct {
	mu            sync.Mutex
	path          string
	file          *os.File
	w             *csv.Writer
	headerWritten bool
	nextID        int64
	registered    map[string]ConfigHandle
	saved         map[string]struct{}
}

func NewCSVSink(path string) (*CSVSink, error) {
	s := &CSVSink{
		path:       path,
		registered: make(map[string]ConfigHandle),
		saved:      make(map[string]struct{}),
	}
	if err := s.loadExisting(); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open result file %s: %w", path, err)
	}
	s.file = f
	s.w = csv.NewWriter(f)
	return s, nil
}

func (s *CSVSink) loadExisting() error {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open result file %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(Headers())
	header, err := r.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read header of %s: %w", s.path, err)
	}
	for i, col := range Headers() {
		if header[i] != col {
			return fmt.Errorf("result file %s has column %q at %d, expected %q", s.path, header[i], i, col)
		}
	}
	s.headerWritten = true

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", s.path, err)
		}
		cfg, err := configFromFields(row)
		if err != nil {
			log.Warningf("csv sink: unreadable row in %s skipped, err=%v", s.path, err)
			continue
		}
		s.saved[cfg.CanonicalName()] = struct{}{}
	}
	log.Infof("csv sink: %d results already in %s", len(s.saved), s.path)
	return nil
}

func (s *CSVSink) Register(_ context.Context, cfg sim_config.Config) (ConfigHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := cfg.CanonicalName()
	if h, ok := s.registered[name]; ok {
		return h, nil
	}
	s.nextID++
	h := ConfigHandle{ID: s.nextID, Config: cfg}
	s.registered[name] = h
	return h, nil
}

func (s *CSVSink) Save(_ context.Context, h ConfigHandle, res sim_report.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := h.Name()
	if _, ok := s.saved[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateResult, name)
	}

	if !s.headerWritten {
		if err := s.w.Write(Headers()); err != nil {
			return fmt.Errorf("failed to write csv header: %w", err)
		}
		s.headerWritten = true
	}

	row := configFields(h.Config)
	for _, v := range res.Values() {
		row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
	}
	if err := s.w.Write(row); err != nil {
		return fmt.Errorf("failed to write csv row for %s: %w", name, err)
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv row for %s: %w", name, err)
	}
	s.saved[name] = struct{}{}
	return nil
}

func (s *CSVSink) HasResult(_ context.Context, h ConfigHandle) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.saved[h.Name()]
	return ok, nil
}

func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}
