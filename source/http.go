package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"chordloop/chord"
	"chordloop/debug"
)

// HTTP talks to a chord engine server
type HTTP struct {
	base   string
	client *http.Client
}

// NewHTTP returns a client for the server at base. A nil client gets one
// with a 5 second timeout.
func NewHTTP(base string, client *http.Client) *HTTP {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTP{base: strings.TrimRight(base, "/"), client: client}
}

type progressionReply struct {
	Chords        []chord.Chord `json:"chords"`
	RegisterState uint16        `json:"register_state"`
}

type stepReply struct {
	Chord chord.Chord `json:"chord"`
}

type configureReply struct {
	Status string `json:"status"`
}

// Initial asks the server for a fresh progression.
func (h *HTTP) Initial(ctx context.Context, p chord.Params) (chord.Sequence, error) {
	q := url.Values{}
	q.Set("key", p.Key)
	q.Set("scale", p.Scale)
	q.Set("voicing", p.Voicing)
	q.Set("mode", p.Mode)
	q.Set("length", strconv.Itoa(p.Length))
	q.Set("mutation", strconv.FormatFloat(p.Mutation, 'f', -1, 64))
	q.Set("count", strconv.Itoa(p.Count))
	if p.Seed != nil {
		q.Set("seed", strconv.Itoa(int(*p.Seed)))
	}

	var reply progressionReply
	if err := h.get(ctx, "/progression", q, &reply); err != nil {
		return chord.Sequence{}, err
	}
	if len(reply.Chords) == 0 {
		return chord.Sequence{}, fmt.Errorf("/progression: no chords in reply")
	}
	return chord.Sequence{Chords: reply.Chords, RegisterState: reply.RegisterState}, nil
}

// Next steps the server's generator once.
func (h *HTTP) Next(ctx context.Context) (chord.Chord, error) {
	var reply stepReply
	if err := h.get(ctx, "/step", nil, &reply); err != nil {
		return chord.Chord{}, err
	}
	if reply.Chord.IsZero() {
		return chord.Chord{}, fmt.Errorf("/step: empty chord in reply")
	}
	return reply.Chord, nil
}

// Configure posts p to the server's /configure, which changes the running
// generator without resetting its register.
func (h *HTTP) Configure(ctx context.Context, p chord.Params) error {
	q := url.Values{}
	for k, v := range map[string]string{"key": p.Key, "scale": p.Scale, "voicing": p.Voicing, "mode": p.Mode} {
		if v != "" {
			q.Set(k, v)
		}
	}
	if p.Length > 0 {
		q.Set("length", strconv.Itoa(p.Length))
	}
	q.Set("mutation", strconv.FormatFloat(p.Mutation, 'f', -1, 64))

	var reply configureReply
	if err := h.do(ctx, http.MethodPost, "/configure", q, &reply); err != nil {
		return err
	}
	if reply.Status != "ok" {
		return fmt.Errorf("/configure: status %q", reply.Status)
	}
	return nil
}

func (h *HTTP) get(ctx context.Context, path string, q url.Values, out any) error {
	return h.do(ctx, http.MethodGet, path, q, out)
}

func (h *HTTP) do(ctx context.Context, method, path string, q url.Values, out any) error {
	u := h.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	debug.Log("source", "%s %s -> %d in %v", method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode reply: %w", path, err)
	}
	return nil
}
