package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"warehouse-backend/models"
)

// LayoutSource supplies the warehouse layout.
type LayoutSource interface {
	Load(ctx context.Context) (*models.WarehouseData, error)
	Name() string
}

// DecodeWarehouseData parses and validates a JSON payload.
func DecodeWarehouseData(r io.Reader) (*models.WarehouseData, error) {
	var data models.WarehouseData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding warehouse data: %w", err)
	}
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("invalid warehouse data: %w", err)
	}
	return &data, nil
}

// FileSource reads the layout from a JSON file.
type FileSource struct {
	Path string
}

func (s *FileSource) Name() string { return "file:" + s.Path }

func (s *FileSource) Load(ctx context.Context) (*models.WarehouseData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return DecodeWarehouseData(f)
}

// HTTPSource fetches the layout from a URL.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// NewHTTPSource - 10초 타임아웃 클라이언트 사용
func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPSource) Name() string { return "http:" + s.URL }

func (s *HTTPSource) Load(ctx context.Context) (*models.WarehouseData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s", http.StatusText(resp.StatusCode))
	}

	return DecodeWarehouseData(resp.Body)
}

// GeneratedSource builds a demo layout with LayoutGenerator.
type GeneratedSource struct {
	Seed    int64
	Rows    int
	Columns int
}

func (s *GeneratedSource) Name() string { return fmt.Sprintf("generated:%d", s.Seed) }

func (s *GeneratedSource) Load(ctx context.Context) (*models.WarehouseData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, cols := s.Rows, s.Columns
	if rows <= 0 {
		rows = 2
	}
	if cols <= 0 {
		cols = 4
	}
	data := NewLayoutGenerator(s.Seed).GenerateLayout(rows, cols)
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generated layout: %w", err)
	}
	return data, nil
}
