package arxiv

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:opensearch="http://a9.com/-/spec/opensearch/1.1/" xmlns:arxiv="http://arxiv.org/schemas/atom">
  <opensearch:totalResults>2</opensearch:totalResults>
  <entry>
    <id>http://arxiv.org/abs/2401.01234v2</id>
    <title>Attention Is
  Still All You Need</title>
    <summary>  We revisit attention
  mechanisms.  </summary>
    <published>2024-01-03T18:00:00Z</published>
    <author><name>Ada Lovelace</name></author>
    <author><name>Alan Turing</name></author>
    <link href="http://arxiv.org/abs/2401.01234v2" rel="alternate" type="text/html"/>
    <link href="http://arxiv.org/pdf/2401.01234v2" rel="related" type="application/pdf" title="pdf"/>
    <arxiv:primary_category term="cs.LG"/>
    <category term="cs.LG"/>
    <category term="cs.AI"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2401.05678v1</id>
    <title>Second Paper</title>
    <summary>Another abstract.</summary>
    <published>2024-01-05T09:30:00Z</published>
    <author><name>Grace Hopper</name></author>
    <category term="stat.ML"/>
  </entry>
</feed>`

const emptyFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:opensearch="http://a9.com/-/spec/opensearch/1.1/">
  <opensearch:totalResults>0</opensearch:totalResults>
</feed>`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
}

func TestSearch(t *testing.T) {
	var gotQuery url.Values
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(sampleFeed))
	})

	papers, err := c.Search(context.Background(), "(quantum computing)", 10, SortSubmittedDesc)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("papers = %d, want 2", len(papers))
	}

	if got := gotQuery.Get("search_query"); got != "(quantum computing)" {
		t.Errorf("search_query = %q", got)
	}
	if gotQuery.Get("sortBy") != "submittedDate" || gotQuery.Get("sortOrder") != "descending" {
		t.Errorf("sort params = %q %q", gotQuery.Get("sortBy"), gotQuery.Get("sortOrder"))
	}
	if got := gotQuery.Get("max_results"); got != "10" {
		t.Errorf("max_results = %q", got)
	}

	p := papers[0]
	if p.ID != "2401.01234" {
		t.Errorf("id = %q, want 2401.01234", p.ID)
	}
	if p.Title != "Attention Is Still All You Need" {
		t.Errorf("title = %q, want whitespace collapsed", p.Title)
	}
	if p.Abstract != "We revisit attention mechanisms." {
		t.Errorf("abstract = %q", p.Abstract)
	}
	if len(p.Authors) != 2 || p.Authors[0] != "Ada Lovelace" {
		t.Errorf("authors = %v", p.Authors)
	}
	if p.PrimaryCategory != "cs.LG" {
		t.Errorf("primary category = %q", p.PrimaryCategory)
	}
	if p.PDFURL != "http://arxiv.org/pdf/2401.01234v2" {
		t.Errorf("pdf url = %q", p.PDFURL)
	}
	if want := time.Date(2024, 1, 3, 18, 0, 0, 0, time.UTC); !p.Published.Equal(want) {
		t.Errorf("published = %v", p.Published)
	}

	// Second entry has no pdf link or primary category; both fall back.
	q := papers[1]
	if q.PDFURL != "https://export.arxiv.org/pdf/2401.05678" {
		t.Errorf("fallback pdf url = %q", q.PDFURL)
	}
	if q.PrimaryCategory != "stat.ML" {
		t.Errorf("fallback primary category = %q", q.PrimaryCategory)
	}
}

func TestSearchNoResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(emptyFeed))
	})
	_, err := c.Search(context.Background(), "all:nonexistent", 5, SortRelevance)
	if !errors.Is(err, ErrNoResults) {
		t.Fatalf("err = %v, want ErrNoResults", err)
	}
}

func TestSearchServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	if _, err := c.Search(context.Background(), "all:x", 5, SortRelevance); err == nil {
		t.Fatal("want error on 500")
	}
}

func TestFetchByID(t *testing.T) {
	var gotQuery url.Values
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(sampleFeed))
	})
	p, err := c.FetchByID(context.Background(), "2401.01234")
	if err != nil {
		t.Fatalf("FetchByID: %v", err)
	}
	if gotQuery.Get("id_list") != "2401.01234" {
		t.Errorf("id_list = %q", gotQuery.Get("id_list"))
	}
	if p.ID != "2401.01234" {
		t.Errorf("id = %q", p.ID)
	}
}

func TestFetchByIDMissing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(emptyFeed))
	})
	if _, err := c.FetchByID(context.Background(), "0000.00000"); !errors.Is(err, ErrNoResults) {
		t.Fatalf("err = %v, want ErrNoResults", err)
	}
}

func TestLatestBuildsWeekWindow(t *testing.T) {
	var gotQuery url.Values
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(sampleFeed))
	})
	c.now = func() time.Time {
		return time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)
	}

	if _, err := c.Latest(context.Background(), "cs.AI", 5); err != nil {
		t.Fatalf("Latest: %v", err)
	}
	want := "submittedDate:[202403081230 TO 202403151230] AND cat:cs.AI"
	if got := gotQuery.Get("search_query"); got != want {
		t.Errorf("search_query = %q, want %q", got, want)
	}
	if got := gotQuery.Get("sortBy"); got != "submittedDate" {
		t.Errorf("sortBy = %q", got)
	}
	if got := gotQuery.Get("sortOrder"); got != "descending" {
		t.Errorf("sortOrder = %q", got)
	}
}

func TestLatestWithoutCategory(t *testing.T) {
	var gotQuery url.Values
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(sampleFeed))
	})
	c.now = func() time.Time {
		return time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)
	}

	if _, err := c.Latest(context.Background(), "", 5); err != nil {
		t.Fatalf("Latest: %v", err)
	}
	want := "submittedDate:[202403081230 TO 202403151230]"
	if got := gotQuery.Get("search_query"); got != want {
		t.Errorf("search_query = %q, want %q", got, want)
	}
}

func TestDownloadPDF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer srv.Close()

	c := NewClient(WithHTTPClient(srv.Client()))
	var buf bytes.Buffer
	n, err := c.DownloadPDF(context.Background(), &Paper{ID: "2401.01234", PDFURL: srv.URL}, &buf)
	if err != nil {
		t.Fatalf("DownloadPDF: %v", err)
	}
	if n != int64(buf.Len()) || buf.Len() == 0 {
		t.Errorf("wrote %d bytes, buffered %d", n, buf.Len())
	}
}

func TestDownloadPDFWrongContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>not a pdf</html>"))
	}))
	defer srv.Close()

	c := NewClient(WithHTTPClient(srv.Client()))
	var buf bytes.Buffer
	if _, err := c.DownloadPDF(context.Background(), &Paper{ID: "x", PDFURL: srv.URL}, &buf); err == nil {
		t.Fatal("want error for non-pdf content type")
	}
}
