package extract

import (
	"path"
	"strings"
)

// hiResTags mark media entries of storefront quality, preferred over
// whatever happens to be listed first.
var hiResTags = map[string]bool{
	"store_large": true,
	"storefront":  true,
	"hi_res":      true,
	"hero":        true,
	"4k":          true,
}

// modelFormats is the known 3D model format set, matched against file
// extensions and declared formats.
var modelFormats = map[string]bool{
	"gltf": true,
	"glb":  true,
	"obj":  true,
	"fbx":  true,
	"dae":  true,
	"ctm":  true,
}

// MediaItem is one entry in a provider's media list.
type MediaItem struct {
	URL    string   `json:"url"`
	Tags   []string `json:"tags,omitempty"`
	Format string   `json:"format,omitempty"`
}

// PickImage returns the best-effort image URL from a media list: the first
// entry tagged as high-resolution/storefront quality, else the first entry
// with a URL at all.
func PickImage(media []MediaItem) string {
	for _, m := range media {
		if m.URL == "" {
			continue
		}
		for _, tag := range m.Tags {
			if hiResTags[strings.ToLower(tag)] {
				return m.URL
			}
		}
	}

	for _, m := range media {
		if m.URL != "" {
			return m.URL
		}
	}
	return ""
}

// PickModelURL returns the first media entry whose declared format or file
// extension matches the known 3D model format set.
func PickModelURL(media []MediaItem) string {
	for _, m := range media {
		if m.URL == "" {
			continue
		}
		if modelFormats[strings.ToLower(m.Format)] {
			return m.URL
		}
		ext := strings.TrimPrefix(strings.ToLower(path.Ext(stripQuery(m.URL))), ".")
		if modelFormats[ext] {
			return m.URL
		}
	}
	return ""
}

func stripQuery(url string) string {
	if i := strings.IndexByte(url, '?'); i >= 0 {
		return url[:i]
	}
	return url
}
