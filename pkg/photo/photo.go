// Package photo defines the canonical photo record shown in a collage and
// the schema check that turns raw provider JSON into it.
//
// [Decode] is strict: every required field must be present with the right
// JSON type, unknown fields are dropped, and alt_description may be null but
// not missing. [DecodeAll] fails the whole batch on the first bad record.
package photo

import "strings"

// Photo is a search result. Only ID takes part in equality; every other field
// is carried through to renderers untouched.
type Photo struct {
	ID             string  `json:"id"`
	Slug           string  `json:"slug"`
	AltDescription *string `json:"alt_description"`
	URLs           URLs    `json:"urls"`
	Links          Links   `json:"links"`
	Likes          int     `json:"likes"`
	User           User    `json:"user"`
}

// URLs are the provider's renditions of a photo.
type URLs struct {
	Raw     string `json:"raw"`
	Full    string `json:"full"`
	Regular string `json:"regular"`
	Small   string `json:"small"`
	Thumb   string `json:"thumb"`
	SmallS3 string `json:"small_s3"`
}

// Links holds the photo's page on the provider.
type Links struct {
	HTML string `json:"html"`
}

// User is the photographer credited on a tile.
type User struct {
	Username     string       `json:"username"`
	Name         string       `json:"name"`
	ProfileImage ProfileImage `json:"profile_image"`
	Links        Links        `json:"links"`
}

// ProfileImage is the photographer's avatar.
type ProfileImage struct {
	Medium string `json:"medium"`
}

// Description returns the alt description, or "" when it is null.
func (p Photo) Description() string {
	if p.AltDescription == nil {
		return ""
	}
	return *p.AltDescription
}

// AltText returns the text used for the image's alt attribute.
func (p Photo) AltText(isCenter bool) string {
	if d := p.Description(); d != "" {
		return d
	}
	if isCenter {
		return "Center image"
	}
	return "Image"
}

// QueryFromDescription derives a follow-up search query from the first n
// words of the description. It returns fallback when the description is null
// or blank.
func (p Photo) QueryFromDescription(n int, fallback string) string {
	words := strings.Fields(p.Description())
	if len(words) == 0 || n <= 0 {
		return fallback
	}
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

// Index returns the position of the photo with the given id, or -1.
func Index(photos []Photo, id string) int {
	for i, p := range photos {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Without returns photos minus every entry with the given id. The input is
// not modified.
func Without(photos []Photo, id string) []Photo {
	out := make([]Photo, 0, len(photos))
	for _, p := range photos {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}
