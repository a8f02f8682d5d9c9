package input

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traylinx/addressLocal/internal/config"
	"github.com/traylinx/addressLocal/internal/constant"
	"github.com/traylinx/addressLocal/internal/content"
	"github.com/traylinx/addressLocal/internal/discovery/fetcher"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestKind(t *testing.T) {
	file := writeFile(t, "notes.txt", []byte("hello"))

	tests := []struct {
		in   string
		want content.Kind
	}{
		{file, content.KindFile},
		{filepath.Dir(file), content.KindText},
		{"https://example.com/contact", content.KindURL},
		{"http://localhost:8080", content.KindURL},
		{"example.com/contact", content.KindText},
		{"mailto:someone@example.com", content.KindText},
		{"/definitely/not/here.txt", content.KindText},
		{"221B Baker Street, London", content.KindText},
		{"", content.KindText},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Kind(tt.in), tt.in)
	}
}

func TestProperty_Classification(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("host plus scheme is a URL", prop.ForAll(
		func(host, path string) bool {
			return Kind("https://"+host+".example/"+path) == content.KindURL
		},
		gen.Identifier(),
		gen.AlphaString(),
	))

	properties.Property("text without a scheme stays text", prop.ForAll(
		func(s string) bool {
			return Kind("no scheme "+s) == content.KindText
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestClassify_TextUnchanged(t *testing.T) {
	long := strings.Repeat("z", constant.StructuredTextLimit*2)
	got := NewClassifier(config.Default()).Classify(context.Background(), long)
	assert.Equal(t, content.KindText, got.Source)
	assert.Equal(t, long, got.Text)
	assert.False(t, got.Truncated)
}

func TestClassify_File(t *testing.T) {
	c := NewClassifier(config.Default())
	ctx := context.Background()

	html := writeFile(t, "office.html", []byte("<html><body><script>x()</script><p>1 Main St, Springfield</p></body></html>"))
	got := c.Classify(ctx, html)
	assert.Equal(t, content.KindFile, got.Source)
	assert.Equal(t, "1 Main St, Springfield", got.Text)

	md := writeFile(t, "big.md", []byte(strings.Repeat("m", constant.StructuredTextLimit+5)))
	got = c.Classify(ctx, md)
	assert.True(t, got.Truncated)
	assert.True(t, strings.HasSuffix(got.Text, constant.TruncationMarker))

	bin := writeFile(t, "blob.bin", []byte{0xff, 0xfe, 0x00, 0x41})
	got = c.Classify(ctx, bin)
	assert.Equal(t, content.KindFile, got.Source)
	assert.True(t, got.Empty())
}

func TestClassify_URL(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/page":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = io.WriteString(w, "<html><head><style>p{}</style></head><body><p>Via del Corso 12, Roma</p></body></html>")
		case "/plain":
			w.Header().Set("Content-Type", "text/plain; charset=iso-8859-1")
			_, _ = w.Write([]byte("Caf\xe9 de Flore, 172 Bd Saint-Germain, Paris"))
		case "/long":
			w.Header().Set("Content-Type", "text/plain")
			_, _ = io.WriteString(w, strings.Repeat("l", constant.StructuredTextLimit+1))
		case "/image":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClassifier(config.Default())
	ctx := context.Background()

	got := c.Classify(ctx, srv.URL+"/page")
	assert.Equal(t, content.KindURL, got.Source)
	assert.Equal(t, "Via del Corso 12, Roma", got.Text)
	assert.Equal(t, fetcher.BrowserUserAgent, gotUA)

	got = c.Classify(ctx, srv.URL+"/plain")
	assert.Equal(t, "Café de Flore, 172 Bd Saint-Germain, Paris", got.Text)

	got = c.Classify(ctx, srv.URL+"/long")
	assert.True(t, got.Truncated)
	assert.Equal(t, constant.StructuredTextLimit+utf8.RuneCountInString(constant.TruncationMarker), utf8.RuneCountInString(got.Text))

	for _, path := range []string{"/image", "/missing"} {
		got = c.Classify(ctx, srv.URL+path)
		assert.Equal(t, content.KindURL, got.Source, path)
		assert.True(t, got.Empty(), path)
	}
}

type failingFetcher struct{}

func (failingFetcher) Get(context.Context, string) (*fetcher.Response, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func TestClassify_URLNetworkFailure(t *testing.T) {
	c := NewClassifier(config.Default(), WithFetcher(failingFetcher{}))
	got := c.Classify(context.Background(), "https://unreachable.example/contact")
	assert.Equal(t, content.KindURL, got.Source)
	assert.True(t, got.Empty())
}
