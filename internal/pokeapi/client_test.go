package pokeapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beltranomeara/guessgame/internal/game"
)

type fixedDrawer int

func (f fixedDrawer) Draw(int) int { return int(f) }

const pokemonBody = `{
  "id": 25,
  "name": "Pikachu",
  "height": 4,
  "weight": 60,
  "types": [{"slot": 1, "type": {"name": "electric", "url": ""}}],
  "moves": [
    {"move": {"name": "mega-punch"}}, {"move": {"name": "pay-day"}},
    {"move": {"name": "thunder-punch"}}, {"move": {"name": "slam"}},
    {"move": {"name": "mega-kick"}}
  ],
  "species": {"name": "pikachu", "url": "%s/pokemon-species/25/"},
  "sprites": {
    "front_default": "https://img.example/front/25.png",
    "other": {"dream_world": {"front_default": %s}}
  }
}`

// newFakeAPI serves /pokemon/25 and /pokemon-species/25/.
func newFakeAPI(t *testing.T, dreamWorld string, speciesStatus int) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		switch {
		case r.URL.Path == "/pokemon/25":
			_, _ = fmt.Fprintf(w, pokemonBody, ts.URL, dreamWorld)
		case strings.HasPrefix(r.URL.Path, "/pokemon-species/25"):
			if speciesStatus != http.StatusOK {
				w.WriteHeader(speciesStatus)
				return
			}
			_, _ = w.Write([]byte(`{"id": 25, "color": {"name": "yellow", "url": ""}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)
	return ts, &hits
}

func TestFetch_Normalizes(t *testing.T) {
	ts, hits := newFakeAPI(t, `"https://img.example/dream/25.svg"`, http.StatusOK)
	c := NewClient(ts.URL, time.Second)

	p, err := c.Fetch(context.Background(), 25)
	require.NoError(t, err)

	assert.Equal(t, 25, p.ID)
	assert.Equal(t, "pikachu", p.Name)
	assert.Equal(t, []string{"electric"}, p.Types)
	assert.InDelta(t, 0.4, p.Height, 1e-9)
	assert.InDelta(t, 6.0, p.Weight, 1e-9)
	assert.Equal(t, "yellow", p.Color)
	assert.Equal(t, []string{"mega-punch", "pay-day", "thunder-punch", "slam"}, p.Moves)
	assert.Equal(t, "https://img.example/dream/25.svg", p.ImageURL)
	assert.Equal(t, int32(2), atomic.LoadInt32(hits))
}

func TestFetch_ImageFallsBackToFrontDefault(t *testing.T) {
	ts, _ := newFakeAPI(t, `null`, http.StatusOK)
	p, err := NewClient(ts.URL, time.Second).Fetch(context.Background(), 25)
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/front/25.png", p.ImageURL)
}

func TestFetch_SpeciesFailure(t *testing.T) {
	ts, _ := newFakeAPI(t, `null`, http.StatusInternalServerError)
	_, err := NewClient(ts.URL, time.Second).Fetch(context.Background(), 25)
	require.ErrorIs(t, err, game.ErrUpstream)
}

func TestGetByID_NotFound(t *testing.T) {
	ts, _ := newFakeAPI(t, `null`, http.StatusOK)
	_, err := NewClient(ts.URL, time.Second).GetByID(context.Background(), 9999)
	require.ErrorIs(t, err, game.ErrUpstream)
	assert.Contains(t, err.Error(), "404")
}

func TestGetByID_Malformed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/pokemon/1" {
			_, _ = w.Write([]byte(`{"id": 1}`))
			return
		}
		_, _ = w.Write([]byte(`not json`))
	}))
	defer ts.Close()
	c := NewClient(ts.URL, time.Second)

	_, err := c.GetByID(context.Background(), 1)
	require.ErrorIs(t, err, game.ErrUpstream)

	_, err = c.GetByID(context.Background(), 2)
	require.ErrorIs(t, err, game.ErrUpstream)
}

func TestGetByID_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := NewClient(url, time.Second).GetByID(context.Background(), 1)
	require.ErrorIs(t, err, game.ErrUpstream)
}

func TestNormalize_MissingSpeciesColor(t *testing.T) {
	rec := &PokemonRecord{ID: 7, Name: "Squirtle", Height: 5, Weight: 90}
	p := Normalize(rec, &SpeciesRecord{ID: 7})
	assert.Equal(t, "unknown", p.Color)
	assert.Equal(t, "squirtle", p.Name)
	assert.Empty(t, p.Moves)
	assert.NotNil(t, p.Types)

	assert.Equal(t, "unknown", Normalize(rec, nil).Color)
}

func TestRandomFetcher_UsesDrawnID(t *testing.T) {
	ts, _ := newFakeAPI(t, `null`, http.StatusOK)
	f := RandomFetcher{Client: NewClient(ts.URL, time.Second), Drawer: fixedDrawer(25)}

	p, err := f.FetchRandom(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pikachu", p.Name)

	var _ game.Fetcher = f
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("", 0)
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, 10*time.Second, c.httpClient.Timeout)

	c = NewClient("http://x/api/", time.Second)
	assert.Equal(t, "http://x/api", c.baseURL)
}
