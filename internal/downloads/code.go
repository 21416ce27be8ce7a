// Package downloads implements single-use download codes: issuing,
// validation and the consume-then-deliver redemption flow.
package downloads

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pixalium/backend/internal/store"
)

const Collection = "downloadCodes"

var (
	// ErrMissingCode rejects an empty submission before any lookup.
	ErrMissingCode = errors.New("missing code")
	// ErrNotFound covers unknown and already-used codes alike; callers get
	// no hint which one it was.
	ErrNotFound = errors.New("code invalid or already used")
	// ErrExpired is returned for a matched code past its expiry.
	ErrExpired = errors.New("code expired")
)

// DownloadCode gates access to one hosted file. Redeemable iff IsUsed is
// false and ExpiresAt, when set, has not passed. The isUsed flip is one-way.
type DownloadCode struct {
	ID        string     `json:"id,omitempty"`
	Code      string     `json:"code"`
	FileName  string     `json:"fileName"`
	FilePath  string     `json:"filePath"`
	IsUsed    bool       `json:"isUsed"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// RecordStore is the slice of the record store the registry needs.
type RecordStore interface {
	Create(ctx context.Context, collection string, v any) (string, error)
	GetAll(ctx context.Context, collection string) ([]store.Record, error)
	Patch(ctx context.Context, path string, fields map[string]any) error
}

type Registry struct {
	Store RecordStore
}

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewCode draws an 8-character uppercase base-36 code. Non-cryptographic,
// and uniqueness is not checked against existing codes; with 36^8 possible
// values collisions are accepted as theoretical.
func NewCode() string {
	b := make([]byte, 8)
	for i := range b {
		b[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
	}
	return string(b)
}

// Issue creates an unused download code for the given file. expiresAt is
// optional; nil means the code never expires.
func (r *Registry) Issue(ctx context.Context, fileName, filePath string, expiresAt *time.Time) (DownloadCode, error) {
	dc := DownloadCode{
		Code:      NewCode(),
		FileName:  fileName,
		FilePath:  filePath,
		IsUsed:    false,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expiresAt,
	}
	id, err := r.Store.Create(ctx, Collection, dc)
	if err != nil {
		return DownloadCode{}, err
	}
	dc.ID = id
	log.Info().Str("id", id).Str("file", fileName).Msg("download code issued")
	return dc, nil
}

// Lookup scans for an unused, unexpired code equal to the given one and
// returns the first match. Expired codes are skipped, never consumed, so an
// admin can extend or reissue them; when the only matches were expired the
// caller gets ErrExpired so the rejection reason is accurate. If duplicate
// active codes exist the match is whichever the scan reaches first.
func (r *Registry) Lookup(ctx context.Context, code string) (DownloadCode, error) {
	recs, err := r.Store.GetAll(ctx, Collection)
	if err != nil {
		return DownloadCode{}, err
	}
	now := time.Now()
	sawExpired := false
	for _, rec := range recs {
		dc, err := store.Decode[DownloadCode](rec)
		if err != nil {
			log.Warn().Err(err).Str("id", rec.ID).Msg("skipping malformed download code")
			continue
		}
		if dc.Code != code || dc.IsUsed {
			continue
		}
		if dc.ExpiresAt != nil && now.After(*dc.ExpiresAt) {
			sawExpired = true
			continue
		}
		dc.ID = rec.ID
		return dc, nil
	}
	if sawExpired {
		return DownloadCode{}, ErrExpired
	}
	return DownloadCode{}, ErrNotFound
}

// Consume flips isUsed to true. Not transactional with Lookup: two
// near-simultaneous redemptions of the same code can both pass validation
// before either consume lands. Kept as-is; see DESIGN.md.
func (r *Registry) Consume(ctx context.Context, id string) error {
	return r.Store.Patch(ctx, Collection+"/"+id, map[string]any{"isUsed": true})
}
