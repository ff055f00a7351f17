package data

import (
	"context"
	"fmt"
	"os"

	"github.com/tunogya/crescendo/pkg/model"
)

// RecordProvider defines the interface for loading historical
// streaming chart rows.
type RecordProvider interface {
	// FetchRecords returns all available rows. Global order is
	// irrelevant; the pipeline sorts per track before deriving
	// features.
	FetchRecords(ctx context.Context) ([]model.Record, error)
}

// CSVProvider implements RecordProvider for CSV files.
type CSVProvider struct {
	filePath string
	records  []model.Record
	loaded   bool
}

// NewCSVProvider creates a new CSV-based record provider.
func NewCSVProvider(filePath string) *CSVProvider {
	return &CSVProvider{filePath: filePath}
}

func (p *CSVProvider) loadIfNeeded() error {
	if p.loaded {
		return nil
	}

	raw, err := os.ReadFile(p.filePath)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrParse, err)
	}

	records, err := Parse(string(raw))
	if err != nil {
		return err
	}

	p.records = records
	p.loaded = true
	return nil
}

// FetchRecords returns the parsed rows, loading the file on first use.
func (p *CSVProvider) FetchRecords(ctx context.Context) ([]model.Record, error) {
	if err := p.loadIfNeeded(); err != nil {
		return nil, err
	}
	return p.records, nil
}

// MemoryProvider implements RecordProvider with in-memory rows.
type MemoryProvider struct {
	records []model.Record
}

// NewMemoryProvider creates a new in-memory record provider.
func NewMemoryProvider(records []model.Record) *MemoryProvider {
	return &MemoryProvider{records: records}
}

// AddRecords appends rows to the provider.
func (p *MemoryProvider) AddRecords(records []model.Record) {
	p.records = append(p.records, records...)
}

// FetchRecords returns all rows.
func (p *MemoryProvider) FetchRecords(ctx context.Context) ([]model.Record, error) {
	return p.records, nil
}
