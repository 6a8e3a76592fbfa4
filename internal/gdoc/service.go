// Package gdoc implements the document patch engine: flattening a Google Doc
// into matchable plain text, locating a block of original resume content with
// tolerance for whitespace and bullet-glyph drift, translating the match back
// to native document indexes, and issuing a minimal formatting-preserving
// edit.
//
// Native indexes are only valid for the revision they were read from, so
// every patch operation reads the document fresh, computes the edit, and
// applies it in a single batch. Nothing here caches document state.
package gdoc

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	docs "google.golang.org/api/docs/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// ErrNotFound indicates the referenced document does not exist or is not
// accessible with the configured credentials.
var ErrNotFound = errors.New("document not found")

// ErrUntranslatable indicates a match was found in the flattened text but
// spans content whose native addresses cannot be derived (for example a
// skipped, unaddressed run or a table cell boundary). Callers treat this the
// same as a failed match: skip and leave the document untouched.
var ErrUntranslatable = errors.New("match spans unaddressable content")

// DocumentService is the narrow surface of the Docs API the patch engine
// needs. Production code wraps the Google Docs client; tests supply an
// in-memory implementation.
type DocumentService interface {
	// Get fetches the current revision of a document.
	Get(ctx context.Context, docID string) (*docs.Document, error)

	// BatchUpdate applies the given requests as one atomic batch.
	BatchUpdate(ctx context.Context, docID string, reqs []*docs.Request) error
}

// googleDocs implements DocumentService against the real Docs API.
type googleDocs struct {
	svc *docs.Service
}

// NewDocumentService creates a DocumentService backed by the Google Docs API,
// authenticated with the given token source.
func NewDocumentService(ctx context.Context, ts oauth2.TokenSource) (DocumentService, error) {
	svc, err := docs.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("creating docs service: %w", err)
	}
	return &googleDocs{svc: svc}, nil
}

func (g *googleDocs) Get(ctx context.Context, docID string) (*docs.Document, error) {
	doc, err := g.svc.Documents.Get(docID).Context(ctx).Do()
	if err != nil {
		return nil, wrapGoogleErr("fetching document", err)
	}
	return doc, nil
}

func (g *googleDocs) BatchUpdate(ctx context.Context, docID string, reqs []*docs.Request) error {
	if len(reqs) == 0 {
		return nil
	}
	_, err := g.svc.Documents.BatchUpdate(docID, &docs.BatchUpdateDocumentRequest{
		Requests: reqs,
	}).Context(ctx).Do()
	if err != nil {
		return wrapGoogleErr("applying document edits", err)
	}
	return nil
}

// wrapGoogleErr maps Google API errors onto package sentinels where a
// distinct caller behavior exists.
func wrapGoogleErr(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == 404 || gerr.Code == 403) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
