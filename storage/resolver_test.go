package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Loxfxgc/lost-and-found-children-reporting/models"
)

func TestResolveURL(t *testing.T) {
	r := NewResolver("/api/images", "https://img.example.com/report-images")

	t.Run("nil reference resolves to empty", func(t *testing.T) {
		assert.Equal(t, "", r.ResolveURL(nil))
	})

	t.Run("hosted reference uses its secure URL", func(t *testing.T) {
		ref := &models.PhotoReference{
			Backend:   models.BackendHosted,
			PublicID:  "reports/abc.jpg",
			SecureURL: "https://img.example.com/report-images/reports/abc.jpg",
		}
		assert.Equal(t, ref.SecureURL, r.ResolveURL(ref))
	})

	t.Run("hosted reference without URL is synthesized from the public id", func(t *testing.T) {
		ref := &models.PhotoReference{Backend: models.BackendHosted, PublicID: "reports/abc.jpg"}
		assert.Equal(t, "https://img.example.com/report-images/reports/abc.jpg", r.ResolveURL(ref))
	})

	t.Run("embedded reference points at the image endpoint", func(t *testing.T) {
		ref := &models.PhotoReference{Backend: models.BackendEmbedded, FileID: "65f000000000000000000001"}
		assert.Equal(t, "/api/images/65f000000000000000000001", r.ResolveURL(ref))
	})

	t.Run("reference with neither shape resolves to empty", func(t *testing.T) {
		assert.Equal(t, "", r.ResolveURL(&models.PhotoReference{Backend: models.BackendHosted}))
	})

	t.Run("resolution is idempotent", func(t *testing.T) {
		ref := &models.PhotoReference{Backend: models.BackendEmbedded, FileID: "65f000000000000000000001"}
		first := r.ResolveURL(ref)
		assert.Equal(t, first, r.ResolveURL(ref))
		assert.Equal(t, first, r.ResolveURL(ref))
	})
}

func TestResolveLegacy(t *testing.T) {
	r := NewResolver("/api/images", "")

	t.Run("embedded URL wins over ids", func(t *testing.T) {
		got := r.ResolveLegacy("https://cdn.example.com/a.jpg", "", "someid", "otherid")
		assert.Equal(t, "https://cdn.example.com/a.jpg", got)
	})

	t.Run("imageUrl is honored when photoUrl is empty", func(t *testing.T) {
		got := r.ResolveLegacy("", "https://cdn.example.com/b.jpg", "", "")
		assert.Equal(t, "https://cdn.example.com/b.jpg", got)
	})

	t.Run("bare photoId goes through the image endpoint", func(t *testing.T) {
		assert.Equal(t, "/api/images/abc123", r.ResolveLegacy("", "", "abc123", ""))
	})

	t.Run("childImageId is the last fallback", func(t *testing.T) {
		assert.Equal(t, "/api/images/old456", r.ResolveLegacy("", "", "", "old456"))
	})

	t.Run("id that is already a URL is passed through", func(t *testing.T) {
		got := r.ResolveLegacy("", "", "https://cdn.example.com/direct.png", "")
		assert.Equal(t, "https://cdn.example.com/direct.png", got)
	})

	t.Run("nothing present degrades to empty, not an error", func(t *testing.T) {
		assert.Equal(t, "", r.ResolveLegacy("", "", "", ""))
	})
}

func TestResolveRecord(t *testing.T) {
	r := NewResolver("/api/images", "")

	t.Run("typed reference beats legacy fields", func(t *testing.T) {
		rep := &models.Report{
			Photo:    &models.PhotoReference{Backend: models.BackendEmbedded, FileID: "newid"},
			PhotoURL: "https://cdn.example.com/legacy.jpg",
		}
		assert.Equal(t, "/api/images/newid", r.ResolveRecord(rep))
	})

	t.Run("falls back to legacy fields", func(t *testing.T) {
		rep := &models.Report{PhotoID: "legacyid"}
		assert.Equal(t, "/api/images/legacyid", r.ResolveRecord(rep))
	})

	t.Run("no photo data at all resolves to empty", func(t *testing.T) {
		assert.Equal(t, "", r.ResolveRecord(&models.Report{}))
	})
}
