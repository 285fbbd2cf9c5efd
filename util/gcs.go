// util/gcs.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	gcsBaseURL        = "https://storage.googleapis.com/storage/v1"
	gcsReadOnlyScope  = "https://www.googleapis.com/auth/devstorage.read_only"
	gcsDefaultTimeout = 30 * time.Second
)

// GCSClient is a small read-only client for the JSON API of a Google Cloud
// Storage bucket; it's used to fetch airport data files.
type GCSClient struct {
	httpClient *http.Client
	bucket     string
	baseURL    string
	ctx        context.Context
}

type GCSClientConfig struct {
	Context context.Context // defaults to context.Background()
	// Credentials is a service account JSON key; anonymous access is used
	// if it's nil.
	Credentials []byte
	Timeout     time.Duration // defaults to 30s
	BaseURL     string        // defaults to the public storage endpoint
}

func MakeGCSClient(bucket string, config GCSClientConfig) (*GCSClient, error) {
	if bucket == "" {
		return nil, errors.New("GCS bucket name must be given")
	}

	g := &GCSClient{
		httpClient: &http.Client{},
		bucket:     bucket,
		baseURL:    Select(config.BaseURL != "", config.BaseURL, gcsBaseURL),
		ctx:        config.Context,
	}
	if g.ctx == nil {
		g.ctx = context.Background()
	}

	if config.Credentials != nil {
		jwt, err := google.JWTConfigFromJSON(config.Credentials, gcsReadOnlyScope)
		if err != nil {
			return nil, fmt.Errorf("GCS credentials: %w", err)
		}
		g.httpClient = oauth2.NewClient(g.ctx, jwt.TokenSource(g.ctx))
	}
	g.httpClient.Timeout = Select(config.Timeout != 0, config.Timeout, gcsDefaultTimeout)

	return g, nil
}

// get issues a GET request for the given bucket-relative API path. A
// missing object or bucket is reported as fs.ErrNotExist.
func (g *GCSClient) get(path string, query url.Values) (io.ReadCloser, error) {
	u := g.baseURL + "/b/" + url.PathEscape(g.bucket) + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(g.ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return resp.Body, nil
	case http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("gs://%s%s: %w", g.bucket, path, fs.ErrNotExist)
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("gs://%s%s: HTTP status %d", g.bucket, path, resp.StatusCode)
	}
}

// List returns the sizes of the objects in the bucket whose names start
// with prefix, indexed by name.
func (g *GCSClient) List(prefix string) (map[string]int64, error) {
	type listResponse struct {
		Items []struct {
			Name string `json:"name"`
			Size string `json:"size"` // int64 encoded as a string
		} `json:"items"`
		NextPageToken string `json:"nextPageToken"`
	}

	sizes := make(map[string]int64)
	q := url.Values{"projection": {"noAcl"}}
	if prefix != "" {
		q.Set("prefix", prefix)
	}

	for {
		body, err := g.get("/o", q)
		if err != nil {
			return nil, err
		}

		var lr listResponse
		err = json.NewDecoder(body).Decode(&lr)
		body.Close()
		if err != nil {
			return nil, fmt.Errorf("gs://%s: %w", g.bucket, err)
		}

		for _, item := range lr.Items {
			if sizes[item.Name], err = strconv.ParseInt(item.Size, 10, 64); err != nil {
				return nil, fmt.Errorf("gs://%s/%s: size: %w", g.bucket, item.Name, err)
			}
		}

		if lr.NextPageToken == "" {
			return sizes, nil
		}
		q.Set("pageToken", lr.NextPageToken)
	}
}

// GetReader returns the contents of the object; the caller must close it.
func (g *GCSClient) GetReader(object string) (io.ReadCloser, error) {
	if object == "" {
		return nil, errors.New("GCS object name must be given")
	}
	return g.get("/o/"+url.PathEscape(object), url.Values{"alt": {"media"}})
}

// Download saves the object to the local file at path, creating its
// directory if necessary. The file is only replaced once the download has
// completed.
func (g *GCSClient) Download(object, path string) error {
	r, err := g.GetReader(object)
	if err != nil {
		return err
	}
	defer r.Close()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".*")
	if err != nil {
		return err
	}

	_, err = io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("gs://%s/%s: %w", g.bucket, object, err)
	}
	return os.Rename(f.Name(), path)
}
