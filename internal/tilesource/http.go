package tilesource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/paulmach/orb/maptile"
)

// HTTPSource downloads tiles from a URL template of the form
// "https://{s}.tiles.example.com/{z}/{x}/{y}.png". The {s} placeholder is
// filled from Subdomains in rotation.
type HTTPSource struct {
	Template   string
	Subdomains []string

	client *http.Client

	mu    sync.Mutex
	subIx int
}

// NewHTTPSource builds a source with the given request timeout.
func NewHTTPSource(template string, subdomains []string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPSource{
		Template:   template,
		Subdomains: subdomains,
		client:     &http.Client{Timeout: timeout},
	}
}

// FetchTile implements Source.
func (s *HTTPSource) FetchTile(ctx context.Context, t maptile.Tile) ([]byte, error) {
	url := s.expandURL(t)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}

func (s *HTTPSource) expandURL(t maptile.Tile) string {
	sub := ""
	if len(s.Subdomains) > 0 {
		s.mu.Lock()
		s.subIx = (s.subIx + 1) % len(s.Subdomains)
		sub = s.Subdomains[s.subIx]
		s.mu.Unlock()
	}
	u := s.Template
	u = strings.ReplaceAll(u, "{s}", sub)
	u = strings.ReplaceAll(u, "{z}", strconv.Itoa(int(t.Z)))
	u = strings.ReplaceAll(u, "{x}", strconv.FormatUint(uint64(t.X), 10))
	u = strings.ReplaceAll(u, "{y}", strconv.FormatUint(uint64(t.Y), 10))
	return u
}
