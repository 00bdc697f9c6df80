package published

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"placementdash/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchRowsParsesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pub", r.URL.Path)
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("Email,Name\na@x.io,\"Asha \"\"A\"\"\"\n"))
	}))
	defer srv.Close()

	rows, err := NewCSVReader(srv.Client(), time.Second, nil).FetchRows(context.Background(), ports.Dataset{
		Name:         "student master",
		PublishedURL: srv.URL + "/pub",
	})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Email", "Name"}, {"a@x.io", `Asha "A"`}}, rows)
}

func TestFetchRowsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewCSVReader(srv.Client(), time.Second, nil).FetchRows(context.Background(), ports.Dataset{PublishedURL: srv.URL})
	require.Error(t, err)
	assert.Equal(t, "failed to fetch published CSV: 404 Not Found", err.Error())
}

func TestFetchRowsHTMLBodyIsNotRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>\n<body>sign in</body>\n</html>"))
	}))
	defer srv.Close()

	rows, err := NewCSVReader(srv.Client(), time.Second, nil).FetchRows(context.Background(), ports.Dataset{PublishedURL: srv.URL})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestFetchRowsHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := NewCSVReader(srv.Client(), time.Second, nil).FetchRows(ctx, ports.Dataset{PublishedURL: srv.URL})
	assert.Error(t, err)
}
