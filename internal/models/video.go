package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Default portrait frame applied when a video carries no transformation override.
const (
	DefaultWidth  = 1080
	DefaultHeight = 1920
)

// ErrInvalidVideo wraps every validation failure reported by Video.Validate.
var ErrInvalidVideo = errors.New("invalid video")

// Transformation describes how the media host should render the asset.
type Transformation struct {
	Width   int  `json:"width" validate:"gte=0"`
	Height  int  `json:"height" validate:"gte=0"`
	Quality *int `json:"quality,omitempty" validate:"omitempty,min=1,max=100"`
}

// Video is a metadata record referencing an asset stored on the media host.
type Video struct {
	ID              string         `json:"id"`
	OwnerID         string         `json:"ownerId"`
	Title           string         `json:"title" validate:"required"`
	Description     string         `json:"description" validate:"required"`
	VideoURL        string         `json:"videoUrl" validate:"required,url"`
	ThumbnailURL    string         `json:"thumbnailUrl" validate:"required,url"`
	ControlsVisible bool           `json:"controls"`
	Transformation  Transformation `json:"transformation"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// NewVideo returns a video with controls visible and the default portrait
// transformation.
func NewVideo(title, description, videoURL, thumbnailURL string) Video {
	v := Video{
		Title:           title,
		Description:     description,
		VideoURL:        videoURL,
		ThumbnailURL:    thumbnailURL,
		ControlsVisible: true,
	}
	v.ApplyDefaults()
	return v
}

// ApplyDefaults fills unset transformation dimensions with the portrait frame.
func (v *Video) ApplyDefaults() {
	if v.Transformation.Width == 0 {
		v.Transformation.Width = DefaultWidth
	}
	if v.Transformation.Height == 0 {
		v.Transformation.Height = DefaultHeight
	}
}

// Validate checks required fields and the quality range.
func (v Video) Validate() error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidVideo, describe(fieldErrs[0]))
	}
	return fmt.Errorf("%w: %v", ErrInvalidVideo, err)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "url":
		return fe.Field() + " must be a valid URL"
	case "min", "max":
		return fe.Field() + " must be between 1 and 100"
	default:
		return fe.Field() + " is invalid"
	}
}
