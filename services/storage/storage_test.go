package storage

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sjsage522/rankscout/internal/crawler"
	"sjsage522/rankscout/internal/crossref"
	scrapeerrors "sjsage522/rankscout/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func sampleCatalog() []crawler.CatalogRecord {
	return []crawler.CatalogRecord{
		{
			Rank:            strPtr("1位"),
			TitleSource:     strPtr("配色ニット"),
			TitleTranslated: strPtr("Color Block Knit (50% OFF!!)"),
			TitleNormalized: "color block knit",
			DetailURL:       strPtr("https://item.rakuten.co.jp/knit/1/?a=1&b=2"),
			ImageURL:        strPtr("https://thumbnail.image.rakuten.co.jp/1.jpg"),
			Price:           intPtr(2980),
			ReviewCountText: strPtr("(121件)"),
			SellerName:      strPtr("Shop, Inc."),
		},
		{
			TitleTranslated: strPtr("Wool Scarf"),
			TitleNormalized: "wool scarf",
		},
	}
}

func TestCatalogJSONRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	path, err := store.SaveCatalog(ProductsFile, sampleCatalog())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.Dir, ProductsFile), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, `"Product Title (JP)": "配色ニット"`)
	assert.Contains(t, content, `"Product URL": "https://item.rakuten.co.jp/knit/1/?a=1&b=2"`)
	assert.Contains(t, content, `"Price": null`)

	records, err := store.LoadCatalog(ProductsFile)
	require.NoError(t, err)
	assert.Equal(t, sampleCatalog(), records)
}

func TestLoadCatalogFromForeignFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.json")
	// shape written by other tools: missing keys and extra keys
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"Cleaned Title": "long skirt", "Product URL": "https://item.rakuten.co.jp/s/", "Extra": 1},
		{"Rank": "2位", "Price": 1980}
	]`), 0o644))

	records, err := NewStore("unused").LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "long skirt", records[0].SearchKey())
	assert.Nil(t, records[0].Price)
	assert.Equal(t, 1980, *records[1].Price)
	assert.Equal(t, "", records[1].SearchKey())
}

func TestLoadCatalogErrors(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.LoadCatalog("missing.json")
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(store.Path("bad.json"), []byte(`{"not":"an array"}`), 0o644))
	_, err = store.LoadCatalog("bad.json")
	assert.Error(t, err)
}

func TestCrossReferenceJSONRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nested", "out"))

	results := crossref.NewMap()
	results.Set("wool scarf", []crawler.SupplierRecord{})
	results.Set("color block knit", []crawler.SupplierRecord{{
		CompanyName: "Hangzhou Knitwear",
		CompanyURL:  strPtr("https://hzknit.en.alibaba.com/company_profile.html"),
		PriceMin:    intPtr(550),
		PriceMax:    intPtr(1140),
	}})

	path, err := store.SaveCrossReference(CrossReferenceFile, results)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Less(t, strings.Index(string(data), "wool scarf"), strings.Index(string(data), "color block knit"))

	loaded, err := store.LoadCrossReference(CrossReferenceFile)
	require.NoError(t, err)
	assert.Equal(t, results.Keys(), loaded.Keys())
	knit, ok := loaded.Get("color block knit")
	require.True(t, ok)
	assert.Equal(t, 1140, *knit[0].PriceMax)
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "\ufeff"), "CSV must start with a UTF-8 BOM")

	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(data), "\ufeff"))).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteCatalogCSV(t *testing.T) {
	store := NewStore(t.TempDir())

	path, err := store.WriteCatalogCSV(ProductsCSV, sampleCatalog())
	require.NoError(t, err)

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, catalogHeader, rows[0])
	assert.Equal(t, []string{
		"1位", "配色ニット", "Color Block Knit (50% OFF!!)", "color block knit",
		"https://item.rakuten.co.jp/knit/1/?a=1&b=2", "https://thumbnail.image.rakuten.co.jp/1.jpg",
		"2980", "(121件)", "Shop, Inc.",
	}, rows[1])
	assert.Equal(t, []string{"", "", "Wool Scarf", "wool scarf", "", "", "", "", ""}, rows[2])
}

func TestWriteSuppliersCSV(t *testing.T) {
	store := NewStore(t.TempDir())

	path, err := store.WriteSuppliersCSV(SuppliersCSV, []crawler.SupplierRecord{
		{CompanyName: "Ningbo Textiles", PriceMin: intPtr(3), PriceMax: intPtr(9)},
	})
	require.NoError(t, err)

	rows := readCSV(t, path)
	assert.Equal(t, [][]string{
		supplierHeader,
		{"Ningbo Textiles", "", "3", "9", ""},
	}, rows)
}

func TestWriteCrossReferenceCSV(t *testing.T) {
	store := NewStore(t.TempDir())

	results := crossref.NewMap()
	results.Set("knit", []crawler.SupplierRecord{{CompanyName: "A"}, {CompanyName: "B"}})
	results.Set("scarf", []crawler.SupplierRecord{})

	path, err := store.WriteCrossReferenceCSV(CrossReferenceCSV, results)
	require.NoError(t, err)

	rows := readCSV(t, path)
	require.Len(t, rows, 4)
	assert.Equal(t, "Search Key", rows[0][0])
	assert.Equal(t, []string{"knit", "A", "", "", "", ""}, rows[1])
	assert.Equal(t, []string{"knit", "B", "", "", "", ""}, rows[2])
	assert.Equal(t, []string{"scarf", "", "", "", "", ""}, rows[3])
}

func TestStorePath(t *testing.T) {
	store := NewStore("/data/out")
	assert.Equal(t, "/data/out/products.csv", store.Path("products.csv"))
	assert.Equal(t, "/tmp/x.json", store.Path("/tmp/x.json"))
	assert.Equal(t, "inputs/x.json", store.Path("inputs/x.json"))
	assert.Equal(t, ".", NewStore("").Dir)
}

// failingFile accepts writes but fails when closed, like a full disk
// reporting a deferred write-back error.
type failingFile struct {
	strings.Builder
	closeErr error
	closed   bool
}

func (f *failingFile) Close() error {
	f.closed = true
	return f.closeErr
}

func TestWriteAndCloseReportsCloseError(t *testing.T) {
	f := &failingFile{closeErr: errors.New("no space left on device")}

	err := writeAndClose(f, func(w io.Writer) error {
		_, err := io.WriteString(w, "[]")
		return err
	})
	assert.EqualError(t, err, "no space left on device")
	assert.True(t, f.closed)
}

func TestWriteAndCloseKeepsWriteError(t *testing.T) {
	f := &failingFile{closeErr: errors.New("close failed")}

	err := writeAndClose(f, func(w io.Writer) error {
		return errors.New("encode failed")
	})
	assert.EqualError(t, err, "encode failed")
	assert.True(t, f.closed)
}

func TestSaveCatalogIntoFileFails(t *testing.T) {
	dir := t.TempDir()
	// a regular file where the output directory should be
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := NewStore(filepath.Join(blocker, "out")).SaveCatalog(ProductsFile, sampleCatalog())
	require.Error(t, err)

	var scrapeErr *scrapeerrors.ScrapeError
	require.True(t, errors.As(err, &scrapeErr))
	assert.Equal(t, scrapeerrors.ErrorTypeStorage, scrapeErr.Type)
}
