package content

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"kalakarigar/internal/domain"
)

// Fallback builds a deterministic marketing kit from the draft alone, with
// no network call. The result always satisfies the quality thresholds in
// domain.GeneratedContent so downstream steps never stall on a bad kit.
func Fallback(draft *domain.ProductDraft) *domain.GeneratedContent {
	titler := cases.Title(language.Und)

	craft := strings.TrimSpace(draft.CraftType)
	if craft == "" {
		craft = "craft"
	}
	materials := strings.TrimSpace(draft.Materials)
	if materials == "" {
		materials = "traditional materials"
	}

	description := fmt.Sprintf(
		"This handcrafted %s is made with care from %s. Every piece carries the maker's skill and tradition, bringing authentic artisan craftsmanship into your home.",
		strings.ToLower(craft), strings.ToLower(materials),
	)

	captions := []string{
		fmt.Sprintf("Discover the story behind this handmade %s, crafted from %s with love.", strings.ToLower(craft), strings.ToLower(materials)),
		fmt.Sprintf("Support local artisans and own a one-of-a-kind %s today!", strings.ToLower(craft)),
	}

	hashtags := []string{
		"#Handmade",
		"#IndianArtisan",
		"#SupportLocal",
		"#MadeInIndia",
		"#Craftsmanship",
		hashtagFrom(titler.String(craft)),
	}
	if tag := hashtagFrom(titler.String(materials)); tag != "" && tag != hashtags[len(hashtags)-1] {
		hashtags = append(hashtags, tag)
	}

	return &domain.GeneratedContent{
		ProductDescription:  description,
		SocialMediaCaptions: captions,
		Hashtags:            hashtags,
	}
}

func hashtagFrom(v string) string {
	var b strings.Builder
	for _, r := range v {
		if r == ' ' || r == '-' || r == '_' {
			continue
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return ""
	}
	return "#" + b.String()
}
