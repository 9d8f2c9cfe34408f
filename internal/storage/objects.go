// Package storage exposes the object-store capability the application core
// consumes: "give me an upload/download URL for object X". Real signed-URL
// issuance lives with the storage vendor; the HMAC signer here keeps the
// capability honest for dev mode and tests.
package storage

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"scouthub/pkg/platform/sentinel"
)

// ObjectURLProvider issues time-limited URLs for stored objects. inline
// controls the content disposition of the eventual response; callers are
// responsible for deciding whether inline is permitted at all.
type ObjectURLProvider interface {
	UploadURL(ctx context.Context, objectKey, contentType string) (string, error)
	DownloadURL(ctx context.Context, objectKey, fileName string, inline bool, ttl time.Duration) (string, error)
}

// NewObjectKey generates an unguessable storage key for a fresh object.
func NewObjectKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("could not generate object key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HMACSigner issues URLs against a single storage gateway, signed so the
// gateway can verify key, expiry and disposition without a database hit.
type HMACSigner struct {
	baseURL    string
	signingKey []byte
	now        func() time.Time
}

func NewHMACSigner(baseURL string, signingKey string) *HMACSigner {
	return &HMACSigner{
		baseURL:    baseURL,
		signingKey: []byte(signingKey),
		now:        time.Now,
	}
}

func (s *HMACSigner) UploadURL(_ context.Context, objectKey, contentType string) (string, error) {
	expires := s.now().Add(15 * time.Minute).Unix()
	return s.signedURL("upload", objectKey, url.Values{
		"content_type": {contentType},
		"expires":      {strconv.FormatInt(expires, 10)},
	}), nil
}

func (s *HMACSigner) DownloadURL(_ context.Context, objectKey, fileName string, inline bool, ttl time.Duration) (string, error) {
	disposition := "attachment"
	if inline {
		disposition = "inline"
	}
	expires := s.now().Add(ttl).Unix()
	return s.signedURL("download", objectKey, url.Values{
		"filename":    {fileName},
		"disposition": {disposition},
		"expires":     {strconv.FormatInt(expires, 10)},
	}), nil
}

func (s *HMACSigner) signedURL(op, objectKey string, params url.Values) string {
	params.Set("signature", s.signature(op, objectKey, params))
	return fmt.Sprintf("%s/%s/%s?%s", s.baseURL, op, url.PathEscape(objectKey), params.Encode())
}

// Verify checks the query parameters of a previously issued URL. The gateway
// calls this before serving an object: a tampered or foreign signature fails
// outright, and a genuine URL past its deadline fails with
// sentinel.ErrExpired so callers can tell the two apart.
func (s *HMACSigner) Verify(op, objectKey string, params url.Values) error {
	supplied := params.Get("signature")
	if supplied == "" {
		return fmt.Errorf("object url for %q carries no signature", objectKey)
	}

	unsigned := url.Values{}
	for k, vs := range params {
		if k != "signature" {
			unsigned[k] = vs
		}
	}
	want := s.signature(op, objectKey, unsigned)
	if !hmac.Equal([]byte(supplied), []byte(want)) {
		return fmt.Errorf("object url signature mismatch for %q", objectKey)
	}

	expires, err := strconv.ParseInt(params.Get("expires"), 10, 64)
	if err != nil {
		return fmt.Errorf("object url for %q has a malformed expiry: %w", objectKey, err)
	}
	if s.now().After(time.Unix(expires, 0)) {
		return fmt.Errorf("object url for %q: %w", objectKey, sentinel.ErrExpired)
	}
	return nil
}

func (s *HMACSigner) signature(op, objectKey string, params url.Values) string {
	mac := hmac.New(sha256.New, s.signingKey)
	fmt.Fprintf(mac, "%s\n%s\n%s", op, objectKey, params.Encode())
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
