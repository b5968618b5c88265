package photo

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/collage/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// A nullable field passes "required" when its key was present,
	// even with a null value.
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		if n, ok := f.Interface().(nullableString); ok && n.present {
			return true
		}
		return nil
	}, nullableString{})
	return v
}

// nullableString records whether the key was present, so that a missing
// alt_description can be told apart from a null one.
type nullableString struct {
	present bool
	value   *string
}

func (n *nullableString) UnmarshalJSON(data []byte) error {
	n.present = true
	if string(data) == "null" {
		n.value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.value = &s
	return nil
}

type rawPhoto struct {
	ID             *string        `json:"id" validate:"required"`
	Slug           *string        `json:"slug" validate:"required"`
	AltDescription nullableString `json:"alt_description" validate:"required"`
	URLs           *rawURLs       `json:"urls" validate:"required"`
	Links          *rawLinks      `json:"links" validate:"required"`
	Likes          *float64       `json:"likes" validate:"required"`
	User           *rawUser       `json:"user" validate:"required"`
}

type rawURLs struct {
	Raw     *string `json:"raw" validate:"required"`
	Full    *string `json:"full" validate:"required"`
	Regular *string `json:"regular" validate:"required"`
	Small   *string `json:"small" validate:"required"`
	Thumb   *string `json:"thumb" validate:"required"`
	SmallS3 *string `json:"small_s3" validate:"required"`
}

type rawLinks struct {
	HTML *string `json:"html" validate:"required"`
}

type rawUser struct {
	Username     *string          `json:"username" validate:"required"`
	Name         *string          `json:"name" validate:"required"`
	ProfileImage *rawProfileImage `json:"profile_image" validate:"required"`
	Links        *rawLinks        `json:"links" validate:"required"`
}

type rawProfileImage struct {
	Medium *string `json:"medium" validate:"required"`
}

// Decode validates one raw provider record and strips it down to a Photo.
// Failures carry errors.ErrCodeInvalidPhoto.
func Decode(data []byte) (Photo, error) {
	var raw rawPhoto
	if err := json.Unmarshal(data, &raw); err != nil {
		return Photo{}, errors.Wrap(errors.ErrCodeInvalidPhoto, err, "decode photo")
	}
	if err := validate.Struct(raw); err != nil {
		return Photo{}, errors.New(errors.ErrCodeInvalidPhoto, "%s", describe(err))
	}
	return raw.photo(), nil
}

// DecodeAll decodes every record, failing on the first invalid one.
func DecodeAll(records []json.RawMessage) ([]Photo, error) {
	photos := make([]Photo, 0, len(records))
	for i, rec := range records {
		p, err := Decode(rec)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPhoto, err, "record %d", i)
		}
		photos = append(photos, p)
	}
	return photos, nil
}

func (r rawPhoto) photo() Photo {
	return Photo{
		ID:             *r.ID,
		Slug:           *r.Slug,
		AltDescription: r.AltDescription.value,
		URLs: URLs{
			Raw:     *r.URLs.Raw,
			Full:    *r.URLs.Full,
			Regular: *r.URLs.Regular,
			Small:   *r.URLs.Small,
			Thumb:   *r.URLs.Thumb,
			SmallS3: *r.URLs.SmallS3,
		},
		Links: Links{HTML: *r.Links.HTML},
		Likes: int(*r.Likes),
		User: User{
			Username:     *r.User.Username,
			Name:         *r.User.Name,
			ProfileImage: ProfileImage{Medium: *r.User.ProfileImage.Medium},
			Links:        Links{HTML: *r.User.Links.HTML},
		},
	}
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		ns := fe.Namespace()
		if _, rest, ok := strings.Cut(ns, "."); ok {
			ns = rest
		}
		fields = append(fields, ns)
	}
	return "missing required fields: " + strings.Join(fields, ", ")
}
