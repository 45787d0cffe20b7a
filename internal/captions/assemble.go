package captions

import "captioner/internal/domain"

// Assemble pairs every caption with the same image. Without an image the URL
// is null and the alt text falls back to the topic.
func Assemble(captions domain.CaptionSet, image *domain.ImageResult, topic string) domain.ResponsePayload {
	var imageURL *string
	alt := topic
	if image != nil && image.URL != "" {
		url := image.URL
		imageURL = &url
		if image.AltText != "" {
			alt = image.AltText
		}
	}
	results := make([]domain.GeneratedItem, 0, len(captions))
	for _, caption := range captions {
		results = append(results, domain.GeneratedItem{
			Caption:  caption,
			ImageURL: imageURL,
			Alt:      alt,
		})
	}
	return domain.ResponsePayload{Results: results}
}
