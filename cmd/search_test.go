package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/job"
	"github.com/sells-group/prospect-cli/internal/lead"
	"github.com/sells-group/prospect-cli/internal/notify"
	"github.com/sells-group/prospect-cli/internal/resilience"
	"github.com/sells-group/prospect-cli/internal/view"
)

func TestRunSearch_PrintsSummaryAndTable(t *testing.T) {
	fb := newFakeBackend(t)
	c := testConfig(fb.srv.URL)

	var out bytes.Buffer
	ctrl := newController(c, newBackend(c))
	require.NoError(t, runSearch(context.Background(), ctrl, "Plomberie", "69400", &out))

	s := out.String()
	assert.Contains(t, s, "Prospects:")
	assert.Contains(t, s, "Plomberie Martin")
	assert.Contains(t, s, "12345678900012")
	assert.Contains(t, s, "Aucun numéro")
	assert.Equal(t, int32(1), fb.processCalls.Load())
}

func TestRunSearch_EmptyKeywordNeverReachesBackend(t *testing.T) {
	fb := newFakeBackend(t)
	c := testConfig(fb.srv.URL)

	var out bytes.Buffer
	err := runSearch(context.Background(), newController(c, newBackend(c)), "", "69400", &out)
	require.Error(t, err)
	assert.True(t, resilience.IsValidation(err))
	assert.Equal(t, int32(0), fb.processCalls.Load())
}

func TestRunSearch_FailureReportsNotice(t *testing.T) {
	fb := newFakeBackend(t)
	fb.processStatus = http.StatusInternalServerError
	c := testConfig(fb.srv.URL)

	var stderr bytes.Buffer
	ctrl := newController(c, newBackend(c), notify.NewWriter(&stderr))
	err := runSearch(context.Background(), ctrl, "Plomberie", "69400", &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, resilience.IsTransport(err))
	assert.Contains(t, stderr.String(), job.FailureMessage)
}

func TestWriteResults_JSONWithFilter(t *testing.T) {
	fb := newFakeBackend(t)
	fb.processed.Store(true)
	c := testConfig(fb.srv.URL)

	var out bytes.Buffer
	err := writeResults(context.Background(), newController(c, newBackend(c)), view.FormatJSON,
		lead.Criteria{Activity: "Plombier"}, &out)
	require.NoError(t, err)

	var got []lead.Display
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Plomberie Martin", got[0].Name)
	assert.Equal(t, "Sanitaires Roux", got[1].Name)
}

func TestWriteResults_TableIncludesSummary(t *testing.T) {
	fb := newFakeBackend(t)
	fb.processed.Store(true)
	c := testConfig(fb.srv.URL)

	var out bytes.Buffer
	require.NoError(t, writeResults(context.Background(), newController(c, newBackend(c)), view.FormatTable, lead.Criteria{}, &out))
	assert.True(t, strings.HasPrefix(out.String(), "Prospects:"))
}

func TestWriteResults_LoadFailure(t *testing.T) {
	c := testConfig("http://127.0.0.1:1")
	err := writeResults(context.Background(), newController(c, newBackend(c)), view.FormatJSON, lead.Criteria{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, resilience.IsTransport(err))
}
