package loki

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"github.com/go-playground/validator/v10"
	"io"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// ErrorLogger receives delivery failures. It must not feed back into the shipper.
type ErrorLogger interface {
	Error(msg string, args ...any)
}

type Config struct {
	// Url of the push endpoint, e.g. https://logs.example.org/loki/api/v1/push
	Url string `validate:"required,url"`

	// Labels are attached to every stream the shipper sends.
	Labels map[string]string

	// BatchMaxSize is the number of lines after which a batch is flushed early.
	BatchMaxSize int `validate:"gte=1"`

	// BatchMaxWait is the longest a line waits in memory before it is sent.
	BatchMaxWait time.Duration `validate:"gte=1"`

	// BufferSize bounds the queue between Push and the sender. Lines are dropped when it is full.
	BufferSize int `validate:"gte=1"`

	// Optional basic auth and tenant header.
	Username    string
	Password    string
	TenantKey   string
	TenantValue string
}

func (cfg *Config) setDefaults() {
	if cfg.BatchMaxSize == 0 {
		cfg.BatchMaxSize = 500
	}
	if cfg.BatchMaxWait == 0 {
		cfg.BatchMaxWait = 5 * time.Second
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = 4096
	}
	if cfg.Labels == nil {
		cfg.Labels = map[string]string{}
	}
}

type Entry struct {
	Time    time.Time         `json:"-"`
	Level   string            `json:"level"`
	Message string            `json:"msg"`
	Caller  string            `json:"caller,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type pushRequest struct {
	Streams []stream `json:"streams"`
}

type stream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

// Shipper batches log lines in the background and posts them as gzipped push requests.
type Shipper struct {
	config  Config
	client  *http.Client
	entries chan Entry
	quit    chan struct{}
	done    sync.WaitGroup
	once    sync.Once
	dropped atomic.Int64
	errors  ErrorLogger
}

func New(cfg Config, errors ErrorLogger) (*Shipper, error) {
	cfg.setDefaults()
	if err := validator.New().Struct(cfg); err != nil {
		return nil, err
	}

	s := &Shipper{
		config:  cfg,
		client:  &http.Client{Timeout: 10 * time.Second},
		entries: make(chan Entry, cfg.BufferSize),
		quit:    make(chan struct{}),
		errors:  errors,
	}
	s.done.Add(1)
	go s.run()
	return s, nil
}

// Push queues a line without blocking the caller.
func (s *Shipper) Push(e Entry) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	select {
	case s.entries <- e:
	default:
		s.dropped.Add(1)
	}
}

func (s *Shipper) Dropped() int64 {
	return s.dropped.Load()
}

// Stop flushes whatever is queued and waits for the last request to finish.
func (s *Shipper) Stop() {
	s.once.Do(func() {
		close(s.quit)
		s.done.Wait()
	})
}

func (s *Shipper) run() {
	defer s.done.Done()

	ticker := time.NewTicker(s.config.BatchMaxWait)
	defer ticker.Stop()

	batch := make([][2]string, 0, s.config.BatchMaxSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := s.send(batch); err != nil {
			s.errors.Error("failed to ship logs", "error", err, "lines", len(batch))
		}
		batch = batch[:0]
	}

	for {
		select {
		case e := <-s.entries:
			if line, ok := encode(e); ok {
				batch = append(batch, line)
			}
			if len(batch) >= s.config.BatchMaxSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.quit:
			for {
				select {
				case e := <-s.entries:
					if line, ok := encode(e); ok {
						batch = append(batch, line)
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

func encode(e Entry) ([2]string, bool) {
	body, err := json.Marshal(e)
	if err != nil {
		return [2]string{}, false
	}
	return [2]string{strconv.FormatInt(e.Time.UnixNano(), 10), string(body)}, true
}

func (s *Shipper) send(values [][2]string) error {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	request := pushRequest{Streams: []stream{{Stream: s.config.Labels, Values: values}}}
	if err := json.NewEncoder(gz).Encode(request); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.client.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.Url, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")
	if s.config.TenantKey != "" {
		req.Header.Set(s.config.TenantKey, s.config.TenantValue)
	}
	if s.config.Username != "" && s.config.Password != "" {
		req.SetBasicAuth(s.config.Username, s.config.Password)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected response from log sink: %s, body: %s", resp.Status, string(body))
	}
	return nil
}
