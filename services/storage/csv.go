package storage

import (
	"encoding/csv"
	"io"
	"strconv"

	"sjsage522/rankscout/internal/crawler"
	"sjsage522/rankscout/internal/crossref"
)

// utf8BOM marks CSV exports as UTF-8
const utf8BOM = "\ufeff"

var (
	catalogHeader  = []string{"Rank", "Product Title (JP)", "Product Title (EN)", "Cleaned Title", "Product URL", "Image URL", "Price", "Reviews", "Company"}
	supplierHeader = []string{"Company Name", "Company URL", "Min Price", "Max Price", "Image URL"}
)

// WriteCatalogCSV exports catalog records
func (s *Store) WriteCatalogCSV(name string, records []crawler.CatalogRecord) (string, error) {
	return s.writeCSV(name, func(w *csv.Writer) error {
		if err := w.Write(catalogHeader); err != nil {
			return err
		}
		for _, r := range records {
			if err := w.Write(CatalogRow(r)); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteSuppliersCSV exports the suppliers of a single search
func (s *Store) WriteSuppliersCSV(name string, suppliers []crawler.SupplierRecord) (string, error) {
	return s.writeCSV(name, func(w *csv.Writer) error {
		if err := w.Write(supplierHeader); err != nil {
			return err
		}
		for _, r := range suppliers {
			if err := w.Write(SupplierRow(r)); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteCrossReferenceCSV flattens the map to one row per supplier, keyed by
// the search key. Keys without suppliers get a row with empty columns.
func (s *Store) WriteCrossReferenceCSV(name string, results *crossref.Map) (string, error) {
	return s.writeCSV(name, func(w *csv.Writer) error {
		if err := w.Write(append([]string{"Search Key"}, supplierHeader...)); err != nil {
			return err
		}
		if results == nil {
			return nil
		}
		for _, key := range results.Keys() {
			suppliers, _ := results.Get(key)
			if len(suppliers) == 0 {
				if err := w.Write(append([]string{key}, make([]string, len(supplierHeader))...)); err != nil {
					return err
				}
				continue
			}
			for _, r := range suppliers {
				if err := w.Write(append([]string{key}, SupplierRow(r)...)); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// CatalogRow renders a record in catalogHeader order; absent fields are empty
func CatalogRow(r crawler.CatalogRecord) []string {
	return []string{
		str(r.Rank),
		str(r.TitleSource),
		str(r.TitleTranslated),
		r.TitleNormalized,
		str(r.DetailURL),
		str(r.ImageURL),
		num(r.Price),
		str(r.ReviewCountText),
		str(r.SellerName),
	}
}

// SupplierRow renders a record in supplierHeader order
func SupplierRow(r crawler.SupplierRecord) []string {
	return []string{
		r.CompanyName,
		str(r.CompanyURL),
		num(r.PriceMin),
		num(r.PriceMax),
		str(r.ImageURL),
	}
}

func (s *Store) writeCSV(name string, write func(*csv.Writer) error) (string, error) {
	return s.create(name, func(out io.Writer) error {
		return writeBOMCSV(out, write)
	})
}

func writeBOMCSV(out io.Writer, write func(*csv.Writer) error) error {
	if _, err := io.WriteString(out, utf8BOM); err != nil {
		return err
	}

	writer := csv.NewWriter(out)
	if err := write(writer); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func num(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
