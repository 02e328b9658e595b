package llm_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/contactscout/internal/domain"
	"github.com/jonesrussell/contactscout/internal/llm"
	"github.com/jonesrussell/contactscout/internal/logger"
)

const testPageURL = "https://springfield.gov/staff"

const staffPageHTML = `<html><body>
<h1>Our Team</h1>
<p>John Smith leads Public Works. Reach him at JSmith@City.gov.</p>
</body></html>`

// newChatServer returns a server that answers every chat completion with the
// given reply content.
func newChatServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": reply}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newOracle(srv *httptest.Server) *llm.HTTPOracle {
	return llm.NewHTTPOracle(llm.Config{
		Endpoint: srv.URL,
		APIKey:   "test-key",
	}, logger.NewNoOp())
}

func TestHTTPOracle_ExtractContacts(t *testing.T) {
	t.Parallel()

	reply := `[{"first_name":"John","last_name":"Smith","job_title":"Public Works Director",
		"department":"Public Works","email":"JSmith@City.gov","phone":"","confidence":0.8}]`
	srv := newChatServer(t, reply)

	candidates, err := newOracle(srv).ExtractContacts(t.Context(), testPageURL, staffPageHTML)
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, domain.SourceLLM, c.Source)
	assert.Equal(t, "John", c.FirstName)
	assert.Equal(t, "Public Works Director", c.JobTitle)
	assert.Equal(t, "jsmith@city.gov", c.Email, "emails are normalized")
	assert.True(t, c.EmailValid)
	assert.Equal(t, testPageURL, c.DiscoveryURL)
	assert.InDelta(t, 0.8, c.RawConfidence, 0.001)
}

func TestHTTPOracle_RepairsSloppyJSON(t *testing.T) {
	t.Parallel()

	// Single-quoted keys, a trailing comma, and a code fence around it all.
	reply := "```json\n[{'first_name': 'Jane', 'last_name': 'Doe', 'job_title': 'City Manager',},]\n```"
	srv := newChatServer(t, reply)

	candidates, err := newOracle(srv).ExtractContacts(t.Context(), testPageURL, staffPageHTML)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Jane", candidates[0].FirstName)
	assert.Equal(t, "City Manager", candidates[0].JobTitle)
}

func TestHTTPOracle_DefaultConfidence(t *testing.T) {
	t.Parallel()

	reply := `[{"first_name":"Jane","last_name":"Doe"}]`
	srv := newChatServer(t, reply)

	candidates, err := newOracle(srv).ExtractContacts(t.Context(), testPageURL, staffPageHTML)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.InDelta(t, llm.DefaultConfidence, candidates[0].RawConfidence, 0.001)
}

func TestHTTPOracle_EmptyReply(t *testing.T) {
	t.Parallel()

	srv := newChatServer(t, "[]")

	candidates, err := newOracle(srv).ExtractContacts(t.Context(), testPageURL, staffPageHTML)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestHTTPOracle_InvalidRecordsSkipped(t *testing.T) {
	t.Parallel()

	// The second record has neither a name nor an email.
	reply := `[{"first_name":"John","last_name":"Smith"},{"job_title":"Operator"}]`
	srv := newChatServer(t, reply)

	candidates, err := newOracle(srv).ExtractContacts(t.Context(), testPageURL, staffPageHTML)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "John", candidates[0].FirstName)
}

func TestHTTPOracle_TimeoutYieldsNothing(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	oracle := llm.NewHTTPOracle(llm.Config{
		Endpoint: srv.URL,
		Timeout:  20 * time.Millisecond,
	}, logger.NewNoOp())

	candidates, err := oracle.ExtractContacts(t.Context(), testPageURL, staffPageHTML)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestHTTPOracle_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	oracle := llm.NewHTTPOracle(llm.Config{Endpoint: srv.URL}, logger.NewNoOp())
	_, err := oracle.ExtractContacts(t.Context(), testPageURL, staffPageHTML)
	assert.Error(t, err)
}

func TestHTTPOracle_BlankPageSkipsRequest(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	oracle := llm.NewHTTPOracle(llm.Config{Endpoint: srv.URL}, logger.NewNoOp())
	candidates, err := oracle.ExtractContacts(t.Context(), testPageURL, "<html><body></body></html>")
	require.NoError(t, err)
	assert.Empty(t, candidates)
	assert.Zero(t, hits.Load())
}

func TestDisabled(t *testing.T) {
	t.Parallel()

	candidates, err := llm.NewDisabled().ExtractContacts(t.Context(), testPageURL, staffPageHTML)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}
