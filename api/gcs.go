// Copyright 2017 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

var errMissingOrInvalidToken = errors.New("missing or invalid token")

// GCSClient is Client for accessing a Google Cloud Storage bucket.
type GCSClient struct {
	*storage.Client
	BucketName string
}

// NewObjectHandle returns a handle to a specified object in the
// bucket.
func (c GCSClient) NewObjectHandle(object string) ObjectHandle {
	return gcsObjectHandle{c.Bucket(c.BucketName).Object(object)}
}

// List returns the objects directly below prefix.
func (c GCSClient) List(ctx context.Context, prefix string) ([]string, error) {
	it := c.Bucket(c.BucketName).Objects(ctx, &storage.Query{Prefix: prefix, Delimiter: "/"})
	var names []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing %q: %w", prefix, err)
		}
		// Entries with an empty name are common prefixes (subdirectories).
		if attrs.Name != "" {
			names = append(names, attrs.Name)
		}
	}
	return names, nil
}

type gcsObjectHandle struct {
	*storage.ObjectHandle
}

func (h gcsObjectHandle) NewRangeReader(ctx context.Context, offset, length int64) (io.ReadCloser, error) {
	r, err := h.ObjectHandle.NewRangeReader(ctx, offset, length)
	if err == storage.ErrObjectNotExist {
		return nil, fmt.Errorf("opening %s: %w", h.ObjectName(), ErrObjectNotExist)
	}
	return r, err
}

var (
	defaultStorageClient           *storage.Client
	initializeDefaultStorageClient sync.Once
)

func newClientWithOptions(bucket string, opts ...option.ClientOption) (Client, error) {
	initializeDefaultStorageClient.Do(func() {
		gcs, err := storage.NewClient(context.Background(), opts...)
		if err != nil {
			log.Fatalf("Creating default storage client: %v", err)
		}
		defaultStorageClient = gcs
	})
	return GCSClient{defaultStorageClient, bucket}, nil
}

// NewDefaultClient returns a NewStorageClientFunc whose clients use the
// application default credentials.  The storage client is cached for
// efficiency.
func NewDefaultClient(bucket string) NewStorageClientFunc {
	return func(_ *http.Request) (Client, error) {
		return newClientWithOptions(bucket)
	}
}

// NewPublicClient returns a NewStorageClientFunc whose clients do not use
// any form of client authorization.  They can only be used to read
// publicly-readable objects.  The storage client is cached for efficiency.
func NewPublicClient(bucket string) NewStorageClientFunc {
	return func(_ *http.Request) (Client, error) {
		return newClientWithOptions(bucket, option.WithHTTPClient(http.DefaultClient))
	}
}

// NewClientFromBearerToken returns a NewStorageClientFunc that constructs a
// storage client using the OAuth2 bearer token found in each request.
func NewClientFromBearerToken(bucket string) NewStorageClientFunc {
	return func(req *http.Request) (Client, error) {
		authorization := req.Header.Get("Authorization")

		fields := strings.Split(authorization, " ")
		if len(fields) != 2 || fields[0] != "Bearer" {
			return nil, errMissingOrInvalidToken
		}

		token := oauth2.Token{
			TokenType:   fields[0],
			AccessToken: fields[1],
		}
		client, err := storage.NewClient(req.Context(), option.WithTokenSource(oauth2.StaticTokenSource(&token)))
		if err != nil {
			return nil, fmt.Errorf("creating client with token source: %v", err)
		}
		return GCSClient{client, bucket}, nil
	}
}
