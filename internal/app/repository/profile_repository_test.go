package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpatel/profilesync-backend/internal/app/model"
	"github.com/hpatel/profilesync-backend/pkg/profileapi"
)

// fakeUpstream is an httptest server speaking the upstream envelope format.
type fakeUpstream struct {
	mu        sync.Mutex
	profiles  map[string]map[string]interface{} // id -> raw fields
	listCalls int
	patches   []map[string]interface{}
	notFound  bool

	server *httptest.Server
}

func newFakeUpstream(t *testing.T) *fakeUpstream {
	f := &fakeUpstream{profiles: make(map[string]map[string]interface{})}

	mux := http.NewServeMux()
	mux.HandleFunc("/profiles", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.listCalls++

		var list []map[string]interface{}
		for _, p := range f.profiles {
			list = append(list, p)
		}
		writeEnvelope(w, map[string]interface{}{"profiles": list})
	})
	mux.HandleFunc("/profiles/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		if f.notFound {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		id := r.URL.Path[len("/profiles/"):]
		p, ok := f.profiles[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		switch r.Method {
		case http.MethodPatch:
			var patch map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
			f.patches = append(f.patches, patch)
			for k, v := range patch {
				if v == nil {
					p[k] = ""
					continue
				}
				p[k] = v
			}
			writeEnvelope(w, p)
		case http.MethodDelete:
			delete(f.profiles, id)
			writeEnvelope(w, map[string]interface{}{"deleted": true})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func writeEnvelope(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

func (f *fakeUpstream) addProfile(id, name string, createdAt time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[id] = map[string]interface{}{
		"id":           id,
		"ownerId":      "user-1",
		"businessName": name,
		"logo":         "https://cdn/logo.png",
		"createdAt":    createdAt.Format(time.RFC3339),
	}
}

func setupProfileRepoTest(t *testing.T, cacheTTL time.Duration) (*fakeUpstream, ProfileRepository) {
	upstream := newFakeUpstream(t)

	client, err := profileapi.NewClient(profileapi.Config{
		BaseURL: upstream.server.URL,
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)

	return upstream, NewProfileRepository(client, cacheTTL)
}

var repoSession = model.Session{UserID: "user-1", Token: "bearer-token"}

func TestProfileRepository_ListMapsWireFormat(t *testing.T) {
	upstream, repo := setupProfileRepoTest(t, time.Minute)
	upstream.addProfile("prof-1", "Patel Traders", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	profiles, err := repo.ListByOwner(context.Background(), repoSession)
	require.NoError(t, err)
	require.Len(t, profiles, 1)

	assert.Equal(t, "prof-1", profiles[0].ID)
	assert.Equal(t, "Patel Traders", profiles[0].Name)
	assert.Equal(t, "https://cdn/logo.png", profiles[0].LogoURL)
}

func TestProfileRepository_ListUsesCacheWithinTTL(t *testing.T) {
	upstream, repo := setupProfileRepoTest(t, time.Minute)
	upstream.addProfile("prof-1", "Patel Traders", time.Now())

	_, err := repo.ListByOwner(context.Background(), repoSession)
	require.NoError(t, err)
	_, err = repo.ListByOwner(context.Background(), repoSession)
	require.NoError(t, err)

	assert.Equal(t, 1, upstream.listCalls)
}

func TestProfileRepository_UpdateInvalidatesCache(t *testing.T) {
	upstream, repo := setupProfileRepoTest(t, time.Minute)
	upstream.addProfile("prof-1", "Patel Traders", time.Now())

	_, err := repo.ListByOwner(context.Background(), repoSession)
	require.NoError(t, err)

	name := "Renamed Traders"
	_, err = repo.Update(context.Background(), repoSession, "prof-1", model.ProfilePatch{Name: &name})
	require.NoError(t, err)

	profiles, err := repo.ListByOwner(context.Background(), repoSession)
	require.NoError(t, err)
	assert.Equal(t, 2, upstream.listCalls)
	assert.Equal(t, "Renamed Traders", profiles[0].Name)
}

func TestProfileRepository_ClearLogoSendsNull(t *testing.T) {
	upstream, repo := setupProfileRepoTest(t, time.Minute)
	upstream.addProfile("prof-1", "Patel Traders", time.Now())

	require.NoError(t, repo.ClearLogo(context.Background(), repoSession, "prof-1"))

	require.Len(t, upstream.patches, 1)
	v, present := upstream.patches[0]["logo"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestProfileRepository_Update404IsSoftSuccess(t *testing.T) {
	upstream, repo := setupProfileRepoTest(t, time.Minute)
	upstream.addProfile("prof-1", "Patel Traders", time.Now())
	upstream.notFound = true

	name := "Renamed"
	updated, err := repo.Update(context.Background(), repoSession, "prof-1", model.ProfilePatch{Name: &name})
	assert.NoError(t, err)
	assert.Nil(t, updated)
}

func TestProfileRepository_Delete404IsSoftSuccess(t *testing.T) {
	upstream, repo := setupProfileRepoTest(t, time.Minute)
	upstream.notFound = true

	assert.NoError(t, repo.Delete(context.Background(), repoSession, "prof-missing"))
}

func TestProfileRepository_EmptyPatchIsNoOp(t *testing.T) {
	upstream, repo := setupProfileRepoTest(t, time.Minute)
	upstream.addProfile("prof-1", "Patel Traders", time.Now())

	updated, err := repo.Update(context.Background(), repoSession, "prof-1", model.ProfilePatch{})
	assert.NoError(t, err)
	assert.Nil(t, updated)
	assert.Empty(t, upstream.patches)
}
