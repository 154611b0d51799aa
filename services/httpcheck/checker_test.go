package httpcheck

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecker_Check(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "academia-monitoring", r.Header.Get("User-Agent"))
		switch r.URL.Path {
		case "/ok":
			_, _ = io.WriteString(w, "all good")
		case "/slow":
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, "not found")
		}
	}))
	defer srv.Close()

	c := New(100 * time.Millisecond)

	res, err := c.Check(context.Background(), srv.URL+"/ok")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "all good", res.Body)

	res, err = c.Check(context.Background(), srv.URL+"/missing")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "not found", res.Body)

	_, err = c.Check(context.Background(), srv.URL+"/slow")
	assert.Error(t, err)
}

func TestNew_DefaultTimeout(t *testing.T) {
	assert.Equal(t, defaultTimeout, New(0).timeout)
}
