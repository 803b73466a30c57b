package media

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/forkline/storefront/pkg/enums"
)

type mimeGroup string

const (
	mimeGroupPhotos   mimeGroup = "photos"
	mimeGroupGraphics mimeGroup = "graphics"
)

var mimeGroupNames = map[mimeGroup]string{
	mimeGroupPhotos:   "JPEG or WebP photos",
	mimeGroupGraphics: "PNG or GIF images",
}

var mimeGroupTypes = map[mimeGroup][]string{
	mimeGroupPhotos:   {"image/jpeg", "image/webp"},
	mimeGroupGraphics: {"image/png", "image/gif"},
}

var allowedMimeGroupsByKind = map[enums.MediaKind][]mimeGroup{
	enums.MediaKindRestaurant: {mimeGroupPhotos, mimeGroupGraphics},
	enums.MediaKindMenuItem:   {mimeGroupPhotos, mimeGroupGraphics},
}

var (
	mimeTypesByKind        = buildMimeTypesByKind()
	mimeDescriptionsByKind = buildMimeDescriptions()
)

func buildMimeTypesByKind() map[enums.MediaKind][]string {
	result := make(map[enums.MediaKind][]string, len(allowedMimeGroupsByKind))
	for kind, groups := range allowedMimeGroupsByKind {
		set := make(map[string]struct{})
		for _, group := range groups {
			for _, value := range mimeGroupTypes[group] {
				set[value] = struct{}{}
			}
		}
		list := make([]string, 0, len(set))
		for value := range set {
			list = append(list, value)
		}
		sort.Strings(list)
		result[kind] = list
	}
	return result
}

func buildMimeDescriptions() map[enums.MediaKind]string {
	result := make(map[enums.MediaKind]string, len(allowedMimeGroupsByKind))
	for kind, groups := range allowedMimeGroupsByKind {
		var descriptions []string
		for _, group := range groups {
			if name, ok := mimeGroupNames[group]; ok {
				descriptions = append(descriptions, name)
			}
		}
		result[kind] = strings.Join(descriptions, " or ")
	}
	return result
}

func allowedMimeDescription(kind enums.MediaKind) string {
	if msg, ok := mimeDescriptionsByKind[kind]; ok && msg != "" {
		return msg
	}
	return "the approved image types"
}

func isAllowedMime(kind enums.MediaKind, mimeType string) bool {
	for _, candidate := range mimeTypesByKind[kind] {
		if strings.EqualFold(candidate, mimeType) {
			return true
		}
	}
	return false
}

// parseDeclaredMime normalizes a Content-Type header value.
func parseDeclaredMime(value string) (string, error) {
	clean := strings.TrimSpace(value)
	if clean == "" {
		return "", fmt.Errorf("mime type required")
	}
	mediaType, _, err := mime.ParseMediaType(clean)
	if err != nil {
		return "", fmt.Errorf("mime type invalid: %w", err)
	}
	return strings.ToLower(mediaType), nil
}

// sniffMime detects the content type from the leading bytes of r and returns
// a reader that replays them.
func sniffMime(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, 3072)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", nil, err
	}
	head = head[:n]
	detected := mimetype.Detect(head)
	mediaType, _, _ := mime.ParseMediaType(detected.String())
	return strings.ToLower(mediaType), io.MultiReader(bytes.NewReader(head), r), nil
}
