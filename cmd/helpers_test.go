package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/config"
)

const fixtureLeads = `[
	{"Nom": "Plomberie Martin", "SIRET": 12345678900012.0, "Dirigeants": "MARTIN Paul", "Téléphone": "0474000001", "Adresse": "1 Rue A 69400 Villefranche", "Site web": "martin.fr", "Activité": "Plombier"},
	{"Nom": "Chauffage Dupont", "Dirigeants": "DUPONT Marie", "Téléphone trouvé sur site": "0474000002", "Adresse": "2 Rue B 69400 Arnas", "Activité": "Chauffagiste"},
	{"Nom": "Sanitaires Roux", "Adresse": "3 Rue C 69400 Gleizé", "Activité": "Plombier"}
]`

// fakeBackend serves the prospecting API. Results are empty until a job has
// been processed; processStatus overrides the /process response code.
type fakeBackend struct {
	srv           *httptest.Server
	processed     atomic.Bool
	processCalls  atomic.Int32
	processStatus int

	mu      sync.Mutex
	keyword string
}

func (fb *fakeBackend) lastKeyword() string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.keyword
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{processStatus: http.StatusOK}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /process", func(w http.ResponseWriter, r *http.Request) {
		fb.processCalls.Add(1)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		fb.mu.Lock()
		fb.keyword, _ = body["keyword"].(string)
		fb.mu.Unlock()
		if fb.processStatus != http.StatusOK {
			http.Error(w, "workflow failed", fb.processStatus)
			return
		}
		fb.processed.Store(true)
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("Nom Entreprise\n"))
	})
	mux.HandleFunc("GET /results", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !fb.processed.Load() {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(fixtureLeads))
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","timestamp":"2026-10-19T10:00:00"}`))
	})
	fb.srv = httptest.NewServer(mux)
	t.Cleanup(fb.srv.Close)
	return fb
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Backend: config.BackendConfig{BaseURL: baseURL, TimeoutSecs: 5},
		Search:  config.SearchConfig{MaxRecords: 20},
		Server:  config.ServerConfig{Port: 8080, AllowedOrigins: []string{"*"}},
		Log:     config.LogConfig{Level: "info", Format: "json"},
	}
}
