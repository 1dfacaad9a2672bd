package services

import (
	"strings"
	"unicode/utf8"
)

// widgetThumbSuffix names the capped-dimension derivative produced by the
// image post-processing collaborator. The widget surface runs under a hard
// decoded-memory ceiling, so it must never be handed a full-resolution
// image.
const widgetThumbSuffix = "_300x300"

// previewMaxRunes caps the widget's short text preview.
const previewMaxRunes = 80

// WidgetImageURL maps an original image URL to its widget-sized derivative
// via a deterministic URL transform: "photo.jpg" -> "photo_300x300.jpg".
// The resize itself is performed out of band; the transform only has to
// agree on the name.
func WidgetImageURL(imageURL string) string {
	if imageURL == "" {
		return ""
	}
	i := strings.LastIndex(imageURL, ".")
	if i <= strings.LastIndex(imageURL, "/") {
		return imageURL + widgetThumbSuffix
	}
	return imageURL[:i] + widgetThumbSuffix + imageURL[i:]
}

// Preview derives the short text preview carried by the widget state.
func Preview(transcription string) string {
	s := strings.TrimSpace(transcription)
	if utf8.RuneCountInString(s) <= previewMaxRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:previewMaxRunes-1]) + "…"
}
