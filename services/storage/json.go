package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"sjsage522/rankscout/internal/crawler"
	"sjsage522/rankscout/internal/crossref"
	scrapeerrors "sjsage522/rankscout/pkg/errors"
)

// Default artifact names inside the output directory
const (
	ProductsFile       = "products_translated.json"
	CrossReferenceFile = "alibaba_results.json"
	ProductsCSV        = "products.csv"
	SuppliersCSV       = "alibaba_suppliers.csv"
	CrossReferenceCSV  = "alibaba_results.csv"
)

// Store reads and writes pipeline artifacts under one directory
type Store struct {
	Dir string
}

// NewStore creates a store rooted at dir
func NewStore(dir string) *Store {
	if dir == "" {
		dir = "."
	}
	return &Store{Dir: dir}
}

// Path returns the location of name inside the store; absolute names and
// names with a directory part are used as given.
func (s *Store) Path(name string) string {
	if filepath.IsAbs(name) || filepath.Base(name) != name {
		return name
	}
	return filepath.Join(s.Dir, name)
}

// SaveCatalog writes records as a JSON array
func (s *Store) SaveCatalog(name string, records []crawler.CatalogRecord) (string, error) {
	if records == nil {
		records = []crawler.CatalogRecord{}
	}
	return s.writeJSON(name, records)
}

// LoadCatalog reads a JSON array of catalog records
func (s *Store) LoadCatalog(name string) ([]crawler.CatalogRecord, error) {
	path := s.Path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, scrapeerrors.NewStorage(fmt.Sprintf("failed to read %s", path), err)
	}

	var records []crawler.CatalogRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, scrapeerrors.NewStorage(fmt.Sprintf("failed to decode %s", path), err)
	}
	return records, nil
}

// SaveCrossReference writes the cross-reference map as a JSON object
func (s *Store) SaveCrossReference(name string, results *crossref.Map) (string, error) {
	if results == nil {
		results = crossref.NewMap()
	}
	return s.writeJSON(name, results)
}

// LoadCrossReference reads a cross-reference map keeping its key order
func (s *Store) LoadCrossReference(name string) (*crossref.Map, error) {
	path := s.Path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, scrapeerrors.NewStorage(fmt.Sprintf("failed to read %s", path), err)
	}

	results := crossref.NewMap()
	if err := json.Unmarshal(data, results); err != nil {
		return nil, scrapeerrors.NewStorage(fmt.Sprintf("failed to decode %s", path), err)
	}
	return results, nil
}

func (s *Store) writeJSON(name string, v any) (string, error) {
	return s.create(name, func(out io.Writer) error {
		encoder := json.NewEncoder(out)
		encoder.SetEscapeHTML(false)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	})
}

// create writes name in the store directory. The file counts as saved only
// when both the write and the close succeed.
func (s *Store) create(name string, write func(io.Writer) error) (string, error) {
	path := s.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", scrapeerrors.NewStorage(fmt.Sprintf("failed to create %s", filepath.Dir(path)), err)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", scrapeerrors.NewStorage(fmt.Sprintf("failed to create %s", path), err)
	}

	if err := writeAndClose(file, write); err != nil {
		return "", scrapeerrors.NewStorage(fmt.Sprintf("failed to write %s", path), err)
	}
	return path, nil
}

func writeAndClose(wc io.WriteCloser, write func(io.Writer) error) (err error) {
	defer func() {
		if closeErr := wc.Close(); err == nil {
			err = closeErr
		}
	}()
	return write(wc)
}
