package scaffold

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func npmServer(t *testing.T, latest map[string]string) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/vnd.npm.install-v1+json" {
			w.WriteHeader(http.StatusNotAcceptable)

			return
		}

		name := strings.TrimPrefix(r.URL.EscapedPath(), "/")

		v, ok := latest[name]
		if !ok {
			w.WriteHeader(http.StatusNotFound)

			return
		}

		_, _ = fmt.Fprintf(w, `{"_id": %q, "versions": {"0.0.1": {}}, "dist-tags": {"next": "9.9.9-rc", "latest": %q}}`, name, v)
	}))

	original := npmURLPrefix
	npmURLPrefix = ts.URL

	t.Cleanup(func() {
		npmURLPrefix = original

		ts.Close()
	})

	return ts
}

func TestNPMPackageLatestVersion(t *testing.T) {
	npmServer(t, map[string]string{"@types%2Freact": "16.9.19"})

	v, err := NPMPackageLatestVersion(context.Background(), "@types/react")
	require.NoError(t, err)
	assert.Equal(t, "16.9.19", v)

	_, err = NPMPackageLatestVersion(context.Background(), "left-pad")
	assert.ErrorContains(t, err, "status code 404")
}

func TestResolveLatest(t *testing.T) {
	npmServer(t, map[string]string{
		"typescript":     "5.4.2",
		"graphql":        "v16.8.1",
		"@types%2Freact": "18.2.0",
	})

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	cfg.TypeScript.DevDependencies["typescript"] = Latest
	cfg.TypeScript.Dependencies["@types/react"] = "latest"
	cfg.GraphQL.Dependencies["graphql"] = Latest

	require.NoError(t, ResolveLatest(context.Background(), cfg))

	assert.Equal(t, "^5.4.2", cfg.TypeScript.DevDependencies["typescript"])
	assert.Equal(t, "^18.2.0", cfg.TypeScript.Dependencies["@types/react"])
	assert.Equal(t, "^16.8.1", cfg.GraphQL.Dependencies["graphql"])
	assert.Equal(t, "16.9.5", cfg.TypeScript.Dependencies["@types/react-dom"])
}

func TestResolveLatestErrors(t *testing.T) {
	npmServer(t, map[string]string{"typescript": "not-a-version"})

	cfg := &Config{
		TypeScript: Bundle{DevDependencies: map[string]string{"typescript": Latest, "missing-pkg": Latest}},
	}

	err := ResolveLatest(context.Background(), cfg)
	require.ErrorIs(t, err, ErrRegistry)
	assert.ErrorContains(t, err, "not a semantic version")
	assert.ErrorContains(t, err, "missing-pkg")

	// nothing is replaced when any lookup fails
	assert.Equal(t, Latest, cfg.TypeScript.DevDependencies["typescript"])
}

func TestResolveLatestWithoutLookups(t *testing.T) {
	var (
		mux   sync.Mutex
		calls int
	)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.Lock()
		defer mux.Unlock()

		calls++
	}))

	defer ts.Close()

	original := npmURLPrefix
	npmURLPrefix = ts.URL

	defer func() { npmURLPrefix = original }()

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	require.NoError(t, ResolveLatest(context.Background(), cfg))
	assert.Equal(t, 0, calls)
}
