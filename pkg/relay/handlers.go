package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/repoexplorer/pkg/integrations"
	"github.com/matzehuels/repoexplorer/pkg/integrations/github"
	"github.com/matzehuels/repoexplorer/pkg/search"
)

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, ErrMethodNotAllowed)
		return
	}
	if s.cfg.Token == "" {
		writeError(w, http.StatusInternalServerError, ErrNoToken)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := s.forward(r.Context(), body)
	if err != nil {
		s.logger.Error("upstream request failed", "err", err)
		writeError(w, http.StatusInternalServerError, ErrUpstream)
		return
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}

// forward sends body upstream with the server credential. Concurrent
// identical bodies share one upstream call; cacheable answers are stored.
func (s *Server) forward(ctx context.Context, body []byte) (*integrations.Response, error) {
	key := s.keyer.QueryKey(s.cfg.Upstream, body)

	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("cache read failed", "err", err)
	} else if ok {
		return &integrations.Response{StatusCode: http.StatusOK, ContentType: "application/json", Body: data}, nil
	}

	v, err, shared := s.group.Do(key, func() (any, error) {
		// Detached so one caller hanging up does not fail the others.
		upCtx := context.WithoutCancel(ctx)
		resp, err := s.upstream.Forward(upCtx, http.MethodPost, s.cfg.Upstream, body, map[string]string{
			"Authorization": "Bearer " + s.cfg.Token,
			"Content-Type":  "application/json",
		})
		if err != nil {
			return nil, err
		}
		if cacheable(resp) {
			if err := s.cache.Set(upCtx, key, resp.Body, s.cfg.CacheTTL); err != nil {
				s.logger.Warn("cache write failed", "err", err)
			}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("upstream call shared", "key", key)
	}
	return v.(*integrations.Response), nil
}

// cacheable reports whether resp is a clean GraphQL success.
func cacheable(resp *integrations.Response) bool {
	if resp.StatusCode != http.StatusOK {
		return false
	}
	var envelope struct {
		Data   json.RawMessage   `json:"data"`
		Errors []json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return false
	}
	return len(envelope.Errors) == 0 && len(envelope.Data) > 0 && string(envelope.Data) != "null"
}

func (s *Server) handleRepositories(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Token == "" {
		writeError(w, http.StatusInternalServerError, ErrNoToken)
		return
	}

	ctrl := search.New(s.fetcher(),
		search.WithPageSize(s.cfg.PageSize),
		search.WithLogger(s.logger),
	)
	v := ctrl.Search(r.Context(), chi.URLParam(r, "username"))
	if q := r.URL.Query().Get("q"); q != "" {
		v = ctrl.SetNameFilter(q)
	}
	if lang := r.URL.Query().Get("language"); lang != "" {
		v = ctrl.SetLanguageFilter(lang)
	}

	writeJSON(w, viewStatus(v), v)
}

func viewStatus(v search.View) int {
	switch v.ErrorKind {
	case search.KindNone:
		return http.StatusOK
	case search.KindValidation:
		return http.StatusBadRequest
	case search.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

// fetcher returns a GitHub client whose requests go through forward, so
// server-side searches share the relay's cache and call collapsing.
func (s *Server) fetcher() search.Fetcher {
	return github.NewClient("",
		github.WithEndpoint(s.cfg.Upstream),
		github.WithTimeout(s.cfg.Timeout),
		github.WithHTTPClient(&http.Client{Transport: relayTransport{s: s}}),
	)
}

type relayTransport struct {
	s *Server
}

func (t relayTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, err
		}
		body = b
	}

	resp, err := t.s.forward(req.Context(), body)
	if err != nil {
		return nil, err
	}
	header := make(http.Header)
	header.Set("Content-Type", resp.ContentType)
	return &http.Response{
		Status:        http.StatusText(resp.StatusCode),
		StatusCode:    resp.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(resp.Body)),
		ContentLength: int64(len(resp.Body)),
		Request:       req,
	}, nil
}
