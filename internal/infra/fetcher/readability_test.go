package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articlePage = `<!DOCTYPE html>
<html>
<head><title>Nieuwe fietsenstalling</title></head>
<body>
<nav>Home | Nieuws | Contact</nav>
<article>
<h1>Nieuwe fietsenstalling aan het station</h1>
<p>De stad opent een nieuwe ondergrondse fietsenstalling aan het
Sint-Pietersstation. Er is plaats voor vijfhonderd fietsen en de stalling is
dag en nacht open voor pendelaars en bezoekers van de stad.</p>
<p>De werken zijn gestart in maart en worden eind dit jaar afgerond. Tijdens
de werken blijft de bestaande stalling aan de achterzijde bereikbaar.</p>
</article>
</body>
</html>`

// testConfig disables the private IP check so httptest's loopback server is
// reachable.
func testConfig() ContentFetchConfig {
	cfg := DefaultConfig()
	cfg.DenyPrivateIPs = false
	cfg.Timeout = 5 * time.Second
	return cfg
}

func TestReadabilityFetcher_FetchContent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(articlePage))
	}))
	t.Cleanup(srv.Close)

	f := NewReadabilityFetcher(testConfig())
	content, err := f.FetchContent(context.Background(), srv.URL+"/nieuws/fietsenstalling")
	require.NoError(t, err)
	assert.Contains(t, content, "ondergrondse fietsenstalling")
	assert.NotContains(t, content, "<p>")
}

func TestReadabilityFetcher_RejectsBadScheme(t *testing.T) {
	t.Parallel()

	f := NewReadabilityFetcher(testConfig())
	_, err := f.FetchContent(context.Background(), "ftp://stad.gent/nieuws")
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestReadabilityFetcher_RejectsPrivateIP(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.DenyPrivateIPs = true
	f := NewReadabilityFetcher(cfg)

	_, err := f.FetchContent(context.Background(), "http://127.0.0.1/nieuws")
	assert.ErrorIs(t, err, ErrPrivateIP)
}

func TestReadabilityFetcher_BodySizeLimit(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>" + strings.Repeat("x", 4096) + "</p></body></html>"))
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig()
	cfg.MaxBodySize = 1024
	f := NewReadabilityFetcher(cfg)

	_, err := f.FetchContent(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrBodyTooLarge)
}

func TestReadabilityFetcher_TooManyRedirects(t *testing.T) {
	t.Parallel()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+r.URL.Path+"x", http.StatusFound)
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig()
	cfg.MaxRedirects = 2
	f := NewReadabilityFetcher(cfg)

	_, err := f.FetchContent(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrTooManyRedirects)
}

func TestReadabilityFetcher_NonOKStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	t.Cleanup(srv.Close)

	f := NewReadabilityFetcher(testConfig())
	_, err := f.FetchContent(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 410")
}

func TestValidateURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		deny    bool
		wantErr error
	}{
		// DNS-free case: the private IP check is off.
		{"https ok", "https://stad.gent/nieuws", false, nil},
		{"bad scheme", "file:///etc/passwd", true, ErrInvalidURL},
		{"empty hostname", "https:///path", true, ErrInvalidURL},
		{"loopback", "http://127.0.0.1/x", true, ErrPrivateIP},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := validateURL(tt.url, tt.deny)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
