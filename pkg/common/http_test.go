package common

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientUserAgent(t *testing.T) {
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer ts.Close()

	c := HTTPClient(5 * time.Second)
	resp, err := c.Get(ts.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.True(t, strings.HasPrefix(gotUA, "Tempotrack/"), "user agent should be set, got %q", gotUA)
	assert.NotEqual(t, "Tempotrack/", gotUA, "VERSION should not be empty")
}
