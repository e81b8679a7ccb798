// Copyright 2019 Google Inc.
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
	"net/http"

	"github.com/gin-gonic/gin"
	"google.golang.org/api/googleapi"

	"github.com/googlegenomics/genotet/internal/genomics"
)

// apiError is used to capture errors that have a name and status code in the
// query API.
type apiError struct {
	name  string
	code  int
	cause error
}

func (err *apiError) Error() string {
	return fmt.Sprintf("%s (%d): %v", err.name, err.code, err.cause)
}

func (err *apiError) Unwrap() error {
	return err.cause
}

func newAPIError(name string, code int, context string, err error) error {
	return &apiError{name, code, fmt.Errorf("%s: %w", context, err)}
}

func newInvalidAuthenticationError(context string, err error) error {
	return newAPIError("InvalidAuthentication", http.StatusUnauthorized, context, err)
}

func newInvalidInputError(context string, err error) error {
	return newAPIError("InvalidInput", http.StatusBadRequest, context, err)
}

func newInvalidDataError(context string, err error) error {
	return newAPIError("InvalidData", http.StatusInternalServerError, context, err)
}

func newPermissionDeniedError(context string, err error) error {
	return newAPIError("PermissionDenied", http.StatusForbidden, context, err)
}

func newNotFoundError(context string, err error) error {
	return newAPIError("NotFound", http.StatusNotFound, context, err)
}

func newTooLargeError(context string, err error) error {
	return newAPIError("TooLarge", http.StatusRequestEntityTooLarge, context, err)
}

func newTimeoutError(context string, err error) error {
	return newAPIError("Timeout", http.StatusGatewayTimeout, context, err)
}

// newStorageError maps errors returned by a storage Client to API errors.
func newStorageError(context string, err error) error {
	if errors.Is(err, errMissingOrInvalidToken) {
		return newPermissionDeniedError(context, err)
	}
	if errors.Is(err, ErrObjectNotExist) {
		return newNotFoundError(context, err)
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized:
			return newInvalidAuthenticationError(context, err)
		case http.StatusForbidden:
			return newPermissionDeniedError(context, err)
		case http.StatusNotFound:
			return newNotFoundError(context, err)
		}
	}
	return err
}

// classify returns the API error describing err.  Errors that already carry
// an API name are returned unchanged; errors it cannot name are returned
// as-is and reported as internal errors by writeError.
func classify(err error) error {
	var aerr *apiError
	if errors.As(err, &aerr) {
		return aerr
	}

	var (
		formatErr   *genomics.FormatError
		indexErr    *genomics.IndexError
		notFoundErr *genomics.NotFoundError
		patternErr  *genomics.InvalidPatternError
	)
	switch {
	case errors.As(err, &patternErr):
		return newInvalidInputError("compiling pattern", err)
	case errors.Is(err, ErrInvalidObjectName):
		return newInvalidInputError("resolving file", err)
	case errors.As(err, &notFoundErr):
		return newNotFoundError("looking up gene", err)
	case errors.Is(err, ErrObjectTooLarge):
		return newTooLargeError("reading file", err)
	case errors.As(err, &formatErr), errors.As(err, &indexErr):
		return newInvalidDataError("decoding file", err)
	case errors.Is(err, context.DeadlineExceeded):
		return newTimeoutError("handling query", err)
	}
	return newStorageError("reading file", err)
}

// writeError writes either a JSON object or bare HTTP error describing err
// to c.  A JSON object is written only when the error has a name and code
// defined by the query API.
func writeError(c *gin.Context, err error) {
	var aerr *apiError
	if errors.As(classify(err), &aerr) {
		c.JSON(aerr.code, gin.H{
			"error":   aerr.name,
			"message": fmt.Sprintf("%s: %v", http.StatusText(aerr.code), aerr.cause),
		})
		return
	}
	code := http.StatusInternalServerError
	c.String(code, "%s: %v", http.StatusText(code), err)
}
