// internal/pokeapi/client.go
//
// HTTP client for the public PokéAPI (https://pokeapi.co/api/v2).
// Responsibilities:
//   - GetByID:      GET {base}/pokemon/{id}
//   - GetSpecies:   GET the species URL referenced by the pokemon record (for the color)
//   - Fetch:        combine both into a normalized game.Pokemon
//   - RandomFetcher: draw an id in [1, game.PokemonMaxID] and Fetch it (implements game.Fetcher)
//
// Every failure (transport, non-2xx, undecodable or nameless body) wraps game.ErrUpstream.
// No retries and no caching.
package pokeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/beltranomeara/guessgame/internal/draw"
	"github.com/beltranomeara/guessgame/internal/game"
)

const DefaultBaseURL = "https://pokeapi.co/api/v2"

// namedRef is PokéAPI's {name, url} pair.
type namedRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// PokemonRecord is the subset of /pokemon/{id} the game needs.
// Height is in decimeters and Weight in hectograms, as served.
type PokemonRecord struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Height int    `json:"height"`
	Weight int    `json:"weight"`
	Types  []struct {
		Slot int      `json:"slot"`
		Type namedRef `json:"type"`
	} `json:"types"`
	Moves []struct {
		Move namedRef `json:"move"`
	} `json:"moves"`
	Species namedRef `json:"species"`
	Sprites struct {
		FrontDefault string `json:"front_default"`
		Other        struct {
			DreamWorld struct {
				FrontDefault string `json:"front_default"`
			} `json:"dream_world"`
		} `json:"other"`
	} `json:"sprites"`
}

// SpeciesRecord is the subset of /pokemon-species/{id} the game needs.
type SpeciesRecord struct {
	ID    int       `json:"id"`
	Color *namedRef `json:"color"`
}

// Client talks to a PokéAPI-compatible server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client. Empty baseURL uses DefaultBaseURL; timeout <= 0 uses 10s.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetByID fetches the main pokemon record.
func (c *Client) GetByID(ctx context.Context, id int) (*PokemonRecord, error) {
	var rec PokemonRecord
	if err := c.getJSON(ctx, fmt.Sprintf("%s/pokemon/%d", c.baseURL, id), &rec); err != nil {
		return nil, err
	}
	if rec.Name == "" {
		return nil, fmt.Errorf("%w: pokemon %d: missing name", game.ErrUpstream, id)
	}
	return &rec, nil
}

// GetSpeciesByID fetches the species record by id.
func (c *Client) GetSpeciesByID(ctx context.Context, id int) (*SpeciesRecord, error) {
	return c.GetSpecies(ctx, fmt.Sprintf("%s/pokemon-species/%d", c.baseURL, id))
}

// GetSpecies fetches a species record from an absolute URL.
func (c *Client) GetSpecies(ctx context.Context, url string) (*SpeciesRecord, error) {
	var rec SpeciesRecord
	if err := c.getJSON(ctx, url, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Fetch loads pokemon id together with its species and normalizes the result.
func (c *Client) Fetch(ctx context.Context, id int) (game.Pokemon, error) {
	rec, err := c.GetByID(ctx, id)
	if err != nil {
		return game.Pokemon{}, err
	}

	var species *SpeciesRecord
	if rec.Species.URL != "" {
		species, err = c.GetSpecies(ctx, rec.Species.URL)
	} else {
		species, err = c.GetSpeciesByID(ctx, id)
	}
	if err != nil {
		return game.Pokemon{}, err
	}

	p := Normalize(rec, species)
	log.Debug().Int("id", p.ID).Msg("pokeapi: fetched pokemon")
	return p, nil
}

// Normalize converts raw records into the game's Pokemon:
// lowercase name, meters/kilograms, species color or "unknown",
// the first game.SampleMoves moves, dream_world artwork falling back to the default sprite.
func Normalize(rec *PokemonRecord, species *SpeciesRecord) game.Pokemon {
	p := game.Pokemon{
		ID:     rec.ID,
		Name:   strings.ToLower(rec.Name),
		Types:  make([]string, 0, len(rec.Types)),
		Height: float64(rec.Height) / 10,
		Weight: float64(rec.Weight) / 10,
		Color:  "unknown",
		Moves:  make([]string, 0, game.SampleMoves),
	}
	for _, t := range rec.Types {
		p.Types = append(p.Types, t.Type.Name)
	}
	for i, m := range rec.Moves {
		if i == game.SampleMoves {
			break
		}
		p.Moves = append(p.Moves, m.Move.Name)
	}
	if species != nil && species.Color != nil && species.Color.Name != "" {
		p.Color = species.Color.Name
	}
	p.ImageURL = rec.Sprites.Other.DreamWorld.FrontDefault
	if p.ImageURL == "" {
		p.ImageURL = rec.Sprites.FrontDefault
	}
	return p
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", game.ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %v", game.ErrUpstream, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: GET %s: status %d: %s", game.ErrUpstream, url, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: GET %s: decode: %v", game.ErrUpstream, url, err)
	}
	return nil
}

// RandomFetcher implements game.Fetcher by drawing a random id.
type RandomFetcher struct {
	Client *Client
	Drawer game.Drawer // defaults to draw.Random
}

// FetchRandom draws an id in [1, game.PokemonMaxID] and fetches it.
func (f RandomFetcher) FetchRandom(ctx context.Context) (game.Pokemon, error) {
	d := f.Drawer
	if d == nil {
		d = draw.Random{}
	}
	return f.Client.Fetch(ctx, d.Draw(game.PokemonMaxID))
}
