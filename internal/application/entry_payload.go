package application

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/oksasatya/go-movie-catalog/internal/domain/entity"
	repo "github.com/oksasatya/go-movie-catalog/internal/domain/repository"
	"github.com/oksasatya/go-movie-catalog/pkg/validation"
)

// FlexString accepts either a JSON string or a bare JSON scalar. HTML forms
// submit ratings as strings while API clients send numbers.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	default:
		*f = FlexString(b)
	}
	return nil
}

// EntryPayload is the request schema for create and edit.
type EntryPayload struct {
	Category    string     `json:"category"`
	Name        string     `json:"name" validate:"required,min=4"`
	Image       string     `json:"image" validate:"required,http_prefix"`
	Rating      FlexString `json:"rating" validate:"required,rating_range"`
	Review      string     `json:"review" validate:"required,min=10"`
	Description string     `json:"description" validate:"required,min=10"`

	decodeErr error
}

// MalformedPayload carries a body decode failure. Validate reports it, so it
// surfaces at the same point as a failed field rule.
func MalformedPayload(err error) EntryPayload {
	return EntryPayload{decodeErr: &ValidationError{Violations: validation.ToViolations(err, nil)}}
}

var entryMessages = validation.Messages{
	"name.required":        "Name should not be an empty field!",
	"name.min":             "Name should be at least 4 characters long!",
	"image.required":       "Image should not be an empty field!",
	"image":                "Image should start with http:// or https://!",
	"rating.required":      "Rating should not be an empty field!",
	"rating":               "Rating should be a number between 1 and 5!",
	"review.required":      "Review should not be an empty field!",
	"review.min":           "Review should be at least 10 characters long!",
	"description.required": "Description should not be an empty field!",
	"description.min":      "Description should be at least 10 characters long!",
}

// Normalize returns a copy with every string field trimmed.
func (p EntryPayload) Normalize() EntryPayload {
	return EntryPayload{
		Category:    strings.TrimSpace(p.Category),
		Name:        strings.TrimSpace(p.Name),
		Image:       strings.TrimSpace(p.Image),
		Rating:      FlexString(strings.TrimSpace(string(p.Rating))),
		Review:      strings.TrimSpace(p.Review),
		Description: strings.TrimSpace(p.Description),
	}
}

// Validate normalizes the payload and applies the field rules. Every field is
// checked; the first failing rule per field is reported.
func (p EntryPayload) Validate() (EntryPayload, error) {
	if p.decodeErr != nil {
		return p, p.decodeErr
	}
	n := p.Normalize()
	if v := validation.Struct(n, entryMessages); len(v) > 0 {
		return n, &ValidationError{Violations: v}
	}
	return n, nil
}

// patch must only be called on a validated payload.
func (p EntryPayload) patch() repo.EntryPatch {
	rating, _ := strconv.ParseFloat(string(p.Rating), 64)
	return repo.EntryPatch{
		Category:    entity.Category(p.Category),
		Name:        p.Name,
		Image:       p.Image,
		Rating:      rating,
		Review:      p.Review,
		Description: p.Description,
	}
}

func (p EntryPayload) entry(ownerID string) *entity.Entry {
	pt := p.patch()
	return &entity.Entry{
		OwnerID:     ownerID,
		Category:    pt.Category,
		Name:        pt.Name,
		Image:       pt.Image,
		Rating:      pt.Rating,
		Review:      pt.Review,
		Description: pt.Description,
		LikedBy:     []string{},
	}
}
