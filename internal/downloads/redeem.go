package downloads

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DeliveryMode is the cascade tier that ended up serving the file.
type DeliveryMode string

const (
	// ModeFile streams the file straight from local object storage.
	ModeFile DeliveryMode = "file"
	// ModeProxy streams the body of a fetch against the external URL.
	ModeProxy DeliveryMode = "proxy"
	// ModeRedirect hands the client the URL to navigate to itself.
	ModeRedirect DeliveryMode = "redirect"
)

// Delivery describes how to get the file to the client. Exactly one of
// LocalPath, Body or URL is set, per Mode. Body, when set, must be closed by
// the caller.
type Delivery struct {
	Mode        DeliveryMode
	FileName    string
	LocalPath   string
	Body        io.ReadCloser
	ContentType string
	URL         string
}

// LocalFiles resolves URLs that point into our own object storage to an
// on-disk path.
type LocalFiles interface {
	Resolve(rawURL string) (path string, ok bool)
}

// Redeemer runs the redemption state machine:
//
//	Idle -> Validating -> Rejected(reason)
//	                   -> Downloading -> Delivered | Failed
//
// The code is consumed as soon as validation passes, before any delivery is
// attempted or confirmed. A code is single-use per attempt, not per
// successful delivery: nothing downstream un-consumes it.
type Redeemer struct {
	Registry *Registry
	Storage  LocalFiles
	Client   *http.Client
}

// Redeem validates and consumes rawCode, then resolves a delivery through the
// fallback cascade. Rejections are ErrMissingCode, ErrNotFound or ErrExpired;
// any other error is a transport failure (and if it happened after the
// consume, the code stays spent).
func (rd *Redeemer) Redeem(ctx context.Context, rawCode string) (*Delivery, error) {
	code := strings.ToUpper(strings.TrimSpace(rawCode))
	if code == "" {
		return nil, ErrMissingCode
	}

	dc, err := rd.Registry.Lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	// Lookup already filters expired codes; recheck as defense in depth.
	if dc.ExpiresAt != nil && time.Now().After(*dc.ExpiresAt) {
		return nil, ErrExpired
	}

	if err := rd.Registry.Consume(ctx, dc.ID); err != nil {
		return nil, fmt.Errorf("consume code %s: %w", dc.ID, err)
	}
	log.Info().Str("id", dc.ID).Str("file", dc.FileName).Msg("download code consumed")

	return rd.deliver(ctx, dc), nil
}

// deliver works down the cascade, each tier tried only when the previous one
// cannot serve. The final redirect tier cannot fail server-side, so deliver
// always yields something.
func (rd *Redeemer) deliver(ctx context.Context, dc DownloadCode) *Delivery {
	if rd.Storage != nil {
		if path, ok := rd.Storage.Resolve(dc.FilePath); ok {
			return &Delivery{Mode: ModeFile, FileName: dc.FileName, LocalPath: path}
		}
	}

	if body, ctype, err := rd.fetch(ctx, dc.FilePath); err == nil {
		return &Delivery{Mode: ModeProxy, FileName: dc.FileName, Body: body, ContentType: ctype}
	} else {
		log.Warn().Err(err).Str("url", dc.FilePath).Msg("proxy fetch failed, falling back to redirect")
	}

	return &Delivery{Mode: ModeRedirect, FileName: dc.FileName, URL: dc.FilePath}
}

func (rd *Redeemer) fetch(ctx context.Context, url string) (io.ReadCloser, string, error) {
	client := rd.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode >= 400 {
		_ = resp.Body.Close()
		return nil, "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}
