package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/Utilities-tkgieng/releasectl/internal/domain"
	"github.com/google/go-github/v74/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeGithub(t *testing.T, handler http.Handler) ReleaseRepository {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := github.NewClient(nil)
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base
	return newWithClient(client, "Utilities-tkgieng", "widgets")
}

func TestGithubReleaseRepository_CreateRelease(t *testing.T) {
	t.Run("Should create a published release bound to the tag", func(t *testing.T) {
		repo := newFakeGithub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/repos/Utilities-tkgieng/widgets/releases", r.URL.Path)
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"id": 42, "tag_name": "v1.3.0", "target_commitish": "abc123", "draft": false}`)
		}))
		rel, err := repo.CreateRelease(context.Background(), "v1.3.0", "abc123", "v1.3.0", "notes")
		require.NoError(t, err)
		assert.Equal(t, int64(42), rel.ID)
		assert.Equal(t, "v1.3.0", rel.TagName)
		assert.False(t, rel.Draft)
	})
	t.Run("Should map 422 to conflict", func(t *testing.T) {
		repo := newFakeGithub(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			fmt.Fprint(w, `{"message": "Validation Failed"}`)
		}))
		_, err := repo.CreateRelease(context.Background(), "v1.3.0", "abc123", "v1.3.0", "notes")
		assert.True(t, domain.IsKind(err, domain.KindConflict))
	})
	t.Run("Should map 401 to unauthorized", func(t *testing.T) {
		repo := newFakeGithub(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message": "Bad credentials"}`)
		}))
		_, err := repo.CreateRelease(context.Background(), "v1.3.0", "abc123", "v1.3.0", "notes")
		assert.True(t, domain.IsKind(err, domain.KindUnauthorized))
	})
	t.Run("Should map 502 to transient", func(t *testing.T) {
		repo := newFakeGithub(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, `{"message": "Bad gateway"}`)
		}))
		_, err := repo.CreateRelease(context.Background(), "v1.3.0", "abc123", "v1.3.0", "notes")
		assert.True(t, domain.IsKind(err, domain.KindTransient))
	})
}

func TestGithubReleaseRepository_GetReleaseByTag(t *testing.T) {
	t.Run("Should map 404 to not found", func(t *testing.T) {
		repo := newFakeGithub(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message": "Not Found"}`)
		}))
		_, err := repo.GetReleaseByTag(context.Background(), "v1.0.0")
		assert.True(t, domain.IsKind(err, domain.KindNotFound))
	})
}

func TestGithubReleaseRepository_DeleteRelease(t *testing.T) {
	t.Run("Should resolve the tag to an ID before deleting", func(t *testing.T) {
		var deleted bool
		repo := newFakeGithub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method == http.MethodGet && r.URL.Path == "/repos/Utilities-tkgieng/widgets/releases/tags/v1.0.0":
				fmt.Fprint(w, `{"id": 7, "tag_name": "v1.0.0"}`)
			case r.Method == http.MethodDelete && r.URL.Path == "/repos/Utilities-tkgieng/widgets/releases/7":
				deleted = true
				w.WriteHeader(http.StatusNoContent)
			default:
				t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
		}))
		err := repo.DeleteRelease(context.Background(), "v1.0.0")
		assert.NoError(t, err)
		assert.True(t, deleted)
	})
	t.Run("Should return not found for a tag with no release", func(t *testing.T) {
		repo := newFakeGithub(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message": "Not Found"}`)
		}))
		err := repo.DeleteRelease(context.Background(), "v1.0.0")
		assert.True(t, domain.IsKind(err, domain.KindNotFound))
	})
}

func TestGithubReleaseRepository_ListReleases(t *testing.T) {
	t.Run("Should return releases in API order", func(t *testing.T) {
		repo := newFakeGithub(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `[{"id": 2, "tag_name": "v1.1.0"}, {"id": 1, "tag_name": "v1.0.0"}]`)
		}))
		releases, err := repo.ListReleases(context.Background())
		require.NoError(t, err)
		require.Len(t, releases, 2)
		assert.Equal(t, "v1.1.0", releases[0].TagName)
		assert.Equal(t, "v1.0.0", releases[1].TagName)
	})
}
