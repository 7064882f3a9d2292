package storage

import (
	"strings"

	"github.com/Loxfxgc/lost-and-found-children-reporting/models"
)

// Resolver turns photo references into renderable URLs. It tolerates the
// historical record shapes still present in the database: a full URL already
// embedded, a bare file id that must be served through the image endpoint, or
// nothing at all. Resolution is idempotent and never fails; missing or
// unusable data resolves to "".
type Resolver struct {
	imageBase  string // path prefix serving embedded files, e.g. "/api/images"
	hostedBase string // public base URL of the hosted bucket
}

func NewResolver(imageBase, hostedBase string) *Resolver {
	return &Resolver{
		imageBase:  strings.TrimRight(imageBase, "/"),
		hostedBase: strings.TrimRight(hostedBase, "/"),
	}
}

// ResolveURL returns the best renderable URL for a reference, or "".
func (r *Resolver) ResolveURL(ref *models.PhotoReference) string {
	if ref == nil {
		return ""
	}
	switch {
	case ref.SecureURL != "":
		return ref.SecureURL
	case ref.Backend == models.BackendHosted && ref.PublicID != "":
		return r.hostedBase + "/" + strings.TrimLeft(ref.PublicID, "/")
	case ref.FileID != "":
		return r.imageBase + "/" + ref.FileID
	default:
		return ""
	}
}

// ResolveLegacy normalizes the photo fields written by earlier versions of
// the app (photoUrl, imageUrl, photoId, childImageId) to a single URL.
// Precedence: an embedded URL wins over a bare id.
func (r *Resolver) ResolveLegacy(photoURL, imageURL, photoID, childImageID string) string {
	if u := firstSet(photoURL, imageURL); u != "" {
		return u
	}
	if id := firstSet(photoID, childImageID); id != "" {
		if isURL(id) {
			return id
		}
		return r.imageBase + "/" + id
	}
	return ""
}

// ResolveRecord applies the canonical lookup path for a Report: the typed
// reference first, then the legacy fields.
func (r *Resolver) ResolveRecord(rep *models.Report) string {
	if rep == nil {
		return ""
	}
	if u := r.ResolveURL(rep.Photo); u != "" {
		return u
	}
	return r.ResolveLegacy(rep.PhotoURL, rep.ImageURL, rep.PhotoID, rep.ChildImageID)
}

func firstSet(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func isURL(s string) bool {
	return strings.Contains(s, "://") || strings.HasPrefix(s, "/")
}
