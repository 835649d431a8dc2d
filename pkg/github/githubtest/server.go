// Package githubtest provides an in-memory GitHub Releases API for tests.
//
// The server speaks the subset of the REST API relpub uses: release lookup by
// tag, release create and edit, asset list, delete and upload, and the
// authenticated user. Every request is recorded so tests can assert ordering.
package githubtest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/google/go-github/v66/github"
)

const (
	apiPrefix    = "/api/v3"
	uploadPrefix = "/api/uploads"
)

// Release is a release held by the server
type Release struct {
	ID         int64
	Owner      string
	Repo       string
	Tag        string
	Target     string
	Name       string
	Body       string
	Draft      bool
	Prerelease bool
	Assets     []*Asset
}

// Asset is a release asset held by the server
type Asset struct {
	ID          int64
	Name        string
	ContentType string
	Data        []byte
}

// Server is a fake GitHub API
type Server struct {
	*httptest.Server

	// Login and Scopes are returned by GET /user
	Login  string
	Scopes string

	mu             sync.Mutex
	nextID         int64
	releases       []*Release
	requests       []string
	failures       map[string]int
	authorizations []string
}

// NewServer starts a fake GitHub API. Close it when done.
func NewServer() *Server {
	s := &Server{
		Login:    "octocat",
		Scopes:   "repo",
		nextID:   100,
		failures: make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// APIURL is the base URL of the REST API
func (s *Server) APIURL() string {
	return s.URL + apiPrefix + "/"
}

// UploadURL is the base URL of the upload API
func (s *Server) UploadURL() string {
	return s.URL + uploadPrefix + "/"
}

// AddRelease stores a published release
func (s *Server) AddRelease(owner, repo, tag, name, body string) *Release {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := &Release{
		ID:     s.id(),
		Owner:  owner,
		Repo:   repo,
		Tag:    tag,
		Target: "main",
		Name:   name,
		Body:   body,
	}
	s.releases = append(s.releases, r)
	return r
}

// AddAsset attaches an asset to a release
func (s *Server) AddAsset(r *Release, name string, data []byte) *Asset {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := &Asset{
		ID:          s.id(),
		Name:        name,
		ContentType: "application/octet-stream",
		Data:        data,
	}
	r.Assets = append(r.Assets, a)
	return a
}

// Release returns a copy of the release for tag, or nil
func (s *Server) Release(owner, repo, tag string) *Release {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.findByTag(owner, repo, tag)
	if r == nil {
		return nil
	}
	cp := *r
	cp.Assets = append([]*Asset(nil), r.Assets...)
	return &cp
}

// ReleaseCount returns the number of releases held by the server
func (s *Server) ReleaseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.releases)
}

// Requests returns every request received so far as "METHOD /path"
// with the API prefixes stripped
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Authorizations returns the Authorization header of every request
func (s *Server) Authorizations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.authorizations...)
}

// Fail makes every request matching "METHOD /path" answer with status.
// A status of 0 clears the failure.
func (s *Server) Fail(request string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, request)
		return
	}
	s.failures[request] = status
}

func (s *Server) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Server) findByTag(owner, repo, tag string) *Release {
	for _, r := range s.releases {
		if r.Owner == owner && r.Repo == repo && r.Tag == tag {
			return r
		}
	}
	return nil
}

func (s *Server) findByID(id int64) *Release {
	for _, r := range s.releases {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (s *Server) handle(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := req.URL.Path
	upload := false
	switch {
	case strings.HasPrefix(path, uploadPrefix):
		path = strings.TrimPrefix(path, uploadPrefix)
		upload = true
	case strings.HasPrefix(path, apiPrefix):
		path = strings.TrimPrefix(path, apiPrefix)
	}

	key := req.Method + " " + path
	s.requests = append(s.requests, key)
	s.authorizations = append(s.authorizations, req.Header.Get("Authorization"))

	if status, ok := s.failures[key]; ok {
		writeError(w, status, http.StatusText(status))
		return
	}

	if path == "/user" && req.Method == http.MethodGet {
		w.Header().Set("X-OAuth-Scopes", s.Scopes)
		writeJSON(w, http.StatusOK, &github.User{Login: github.String(s.Login)})
		return
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 4 || parts[0] != "repos" || parts[3] != "releases" {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}
	owner, repo, rest := parts[1], parts[2], parts[4:]

	switch {
	case upload && req.Method == http.MethodPost && len(rest) == 2 && rest[1] == "assets":
		s.uploadAsset(w, req, rest[0])
	case req.Method == http.MethodGet && len(rest) == 2 && rest[0] == "tags":
		r := s.findByTag(owner, repo, rest[1])
		if r == nil {
			writeError(w, http.StatusNotFound, "Not Found")
			return
		}
		writeJSON(w, http.StatusOK, toRelease(r))
	case req.Method == http.MethodPost && len(rest) == 0:
		s.createRelease(w, req, owner, repo)
	case req.Method == http.MethodPatch && len(rest) == 1:
		s.editRelease(w, req, rest[0])
	case req.Method == http.MethodGet && len(rest) == 2 && rest[1] == "assets":
		r := s.lookup(w, rest[0])
		if r == nil {
			return
		}
		assets := make([]*github.ReleaseAsset, 0, len(r.Assets))
		for _, a := range r.Assets {
			assets = append(assets, toAsset(a))
		}
		writeJSON(w, http.StatusOK, assets)
	case req.Method == http.MethodDelete && len(rest) == 2 && rest[0] == "assets":
		s.deleteAsset(w, rest[1])
	default:
		writeError(w, http.StatusNotFound, "Not Found")
	}
}

func (s *Server) lookup(w http.ResponseWriter, rawID string) *Release {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Not Found")
		return nil
	}
	r := s.findByID(id)
	if r == nil {
		writeError(w, http.StatusNotFound, "Not Found")
	}
	return r
}

func (s *Server) createRelease(w http.ResponseWriter, req *http.Request, owner, repo string) {
	var in github.RepositoryRelease
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Problems parsing JSON")
		return
	}

	if s.findByTag(owner, repo, in.GetTagName()) != nil {
		writeJSON(w, http.StatusUnprocessableEntity, &github.ErrorResponse{
			Message: "Validation Failed",
			Errors:  []github.Error{{Resource: "Release", Field: "tag_name", Code: "already_exists"}},
		})
		return
	}

	r := &Release{
		ID:         s.id(),
		Owner:      owner,
		Repo:       repo,
		Tag:        in.GetTagName(),
		Target:     in.GetTargetCommitish(),
		Name:       in.GetName(),
		Body:       in.GetBody(),
		Draft:      in.GetDraft(),
		Prerelease: in.GetPrerelease(),
	}
	s.releases = append(s.releases, r)
	writeJSON(w, http.StatusCreated, toRelease(r))
}

func (s *Server) editRelease(w http.ResponseWriter, req *http.Request, rawID string) {
	r := s.lookup(w, rawID)
	if r == nil {
		return
	}

	var in github.RepositoryRelease
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Problems parsing JSON")
		return
	}

	if in.TargetCommitish != nil {
		r.Target = in.GetTargetCommitish()
	}
	if in.Name != nil {
		r.Name = in.GetName()
	}
	if in.Body != nil {
		r.Body = in.GetBody()
	}
	if in.Draft != nil {
		r.Draft = in.GetDraft()
	}
	if in.Prerelease != nil {
		r.Prerelease = in.GetPrerelease()
	}
	writeJSON(w, http.StatusOK, toRelease(r))
}

func (s *Server) deleteAsset(w http.ResponseWriter, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}

	for _, r := range s.releases {
		for i, a := range r.Assets {
			if a.ID == id {
				r.Assets = append(r.Assets[:i], r.Assets[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
	}
	writeError(w, http.StatusNotFound, "Not Found")
}

func (s *Server) uploadAsset(w http.ResponseWriter, req *http.Request, rawID string) {
	r := s.lookup(w, rawID)
	if r == nil {
		return
	}

	name := req.URL.Query().Get("name")
	for _, a := range r.Assets {
		if a.Name == name {
			writeJSON(w, http.StatusUnprocessableEntity, &github.ErrorResponse{
				Message: "Validation Failed",
				Errors:  []github.Error{{Resource: "ReleaseAsset", Field: "name", Code: "already_exists"}},
			})
			return
		}
	}

	data, err := io.ReadAll(req.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	a := &Asset{
		ID:          s.id(),
		Name:        name,
		ContentType: req.Header.Get("Content-Type"),
		Data:        data,
	}
	r.Assets = append(r.Assets, a)
	writeJSON(w, http.StatusCreated, toAsset(a))
}

func toRelease(r *Release) *github.RepositoryRelease {
	out := &github.RepositoryRelease{
		ID:              github.Int64(r.ID),
		TagName:         github.String(r.Tag),
		TargetCommitish: github.String(r.Target),
		Name:            github.String(r.Name),
		Body:            github.String(r.Body),
		Draft:           github.Bool(r.Draft),
		Prerelease:      github.Bool(r.Prerelease),
		HTMLURL:         github.String(fmt.Sprintf("https://github.com/%s/%s/releases/tag/%s", r.Owner, r.Repo, r.Tag)),
		UploadURL:       github.String(fmt.Sprintf("https://uploads.github.com/repos/%s/%s/releases/%d/assets{?name,label}", r.Owner, r.Repo, r.ID)),
	}
	for _, a := range r.Assets {
		out.Assets = append(out.Assets, toAsset(a))
	}
	return out
}

func toAsset(a *Asset) *github.ReleaseAsset {
	return &github.ReleaseAsset{
		ID:          github.Int64(a.ID),
		Name:        github.String(a.Name),
		ContentType: github.String(a.ContentType),
		Size:        github.Int(len(a.Data)),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
