package domain

import "unicode/utf8"

// Quality thresholds a marketing kit has to meet before it is considered
// usable downstream. Results below these bars are replaced wholesale by the
// deterministic fallback, never merged field by field.
const (
	MinDescriptionRunes = 50
	MinCaptions         = 1
	MinHashtags         = 5
)

// GeneratedContent is the marketing kit produced for one product: a refined
// description, a set of social media captions, and hashtags.
type GeneratedContent struct {
	ProductDescription  string   `json:"product_description"`
	SocialMediaCaptions []string `json:"social_media_captions"`
	Hashtags            []string `json:"hashtags"`
}

// Valid reports whether the kit meets the minimum quality thresholds.
func (c GeneratedContent) Valid() bool {
	if utf8.RuneCountInString(c.ProductDescription) < MinDescriptionRunes {
		return false
	}
	if len(c.SocialMediaCaptions) < MinCaptions {
		return false
	}
	return len(c.Hashtags) >= MinHashtags
}
