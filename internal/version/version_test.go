package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func releaseServer(t *testing.T, status int, body string) *Checker {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gix-cli", r.Header.Get("User-Agent"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return &Checker{Client: srv.Client(), URL: srv.URL}
}

func TestParse(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1.2.3", Parse("v1.2.3").String())
	assert.Equal(t, "1.2.0", Parse("1.2").String())
	assert.Equal(t, "0.0.0", Parse("dev").String())
}

func TestCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		current string
		tag     string
		newer   bool
	}{
		{"newer release", "0.3.0", "v0.4.0", true},
		{"same version", "v0.4.0", "v0.4.0", false},
		{"running ahead", "1.0.0", "v0.9.9", false},
		{"dev build", "dev", "v0.1.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := releaseServer(t, http.StatusOK, `{"tag_name":"`+tt.tag+`","html_url":"https://example.com/r"}`)

			res, err := c.Check(context.Background(), tt.current)
			require.NoError(t, err)
			assert.Equal(t, tt.newer, res.UpdateAvailable)
			assert.Equal(t, "https://example.com/r", res.URL)
		})
	}
}

func TestCheck_Errors(t *testing.T) {
	t.Parallel()

	tests := map[string]*Checker{
		"http error": releaseServer(t, http.StatusForbidden, `{"message":"rate limited"}`),
		"bad json":   releaseServer(t, http.StatusOK, `not json`),
		"no tag":     releaseServer(t, http.StatusOK, `{}`),
	}

	for name, c := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := c.Check(context.Background(), "0.1.0")
			assert.Error(t, err)
		})
	}
}
