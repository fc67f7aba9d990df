package staff

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	namePoolLow   = 16
	nameBatchSize = 50
)

// HTTPNameSource serves names from a local pool and refills it in the
// background from a randomuser.me style endpoint. Name never blocks.
type HTTPNameSource struct {
	url    string
	client *http.Client
	logger *log.Logger

	mu        sync.Mutex
	pool      []string
	refilling bool
}

func NewHTTPNameSource(url string, logger *log.Logger) *HTTPNameSource {
	if url == "" {
		return nil
	}
	return &HTTPNameSource{
		url:    url,
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

func (s *HTTPNameSource) Name() (string, bool) {
	if s == nil {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pool) < namePoolLow && !s.refilling {
		s.refilling = true
		go s.refill()
	}
	if len(s.pool) == 0 {
		return "", false
	}
	name := s.pool[0]
	s.pool = s.pool[1:]
	return name, true
}

// Prefetch starts a refill without taking a name.
func (s *HTTPNameSource) Prefetch() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.refilling {
		s.refilling = true
		go s.refill()
	}
}

func (s *HTTPNameSource) refill() {
	names, err := s.fetch()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refilling = false
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("name source: %v", err)
		}
		return
	}
	s.pool = append(s.pool, names...)
}

func (s *HTTPNameSource) fetch() ([]string, error) {
	url := s.url
	if !strings.Contains(url, "?") {
		url = fmt.Sprintf("%s?results=%d&inc=name", url, nameBatchSize)
	}
	resp, err := s.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	var result struct {
		Results []struct {
			Name struct {
				First string `json:"first"`
				Last  string `json:"last"`
			} `json:"name"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	out := make([]string, 0, len(result.Results))
	for _, r := range result.Results {
		name := strings.TrimSpace(r.Name.First + " " + r.Name.Last)
		if name != "" {
			out = append(out, name)
		}
	}
	return out, nil
}
