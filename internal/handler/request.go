package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/shelf/internal/apperror"
)

// maxBodyBytes caps JSON request bodies. The largest legitimate body is a
// new recommendation, well under this.
const maxBodyBytes = 64 << 10

// REQUEST DTOs:
// validator tags only check the SHAPE of a request (field present, JSON
// types, sane sizes). Business rules such as the title length or the genre
// registry live in the services, which report them with their own messages.

type addRecommendationRequest struct {
	Title string `json:"title" validate:"max=1000"`
	Genre string `json:"genre" validate:"max=64"`
	Link  string `json:"link" validate:"max=2048"`
	Blurb string `json:"blurb" validate:"max=4000"`
}

type syncUserRequest struct {
	Name      string `json:"name" validate:"max=200"`
	Email     string `json:"email" validate:"omitempty,email,max=320"`
	AvatarURL string `json:"avatarUrl" validate:"omitempty,url,max=2048"`
}

var validate = newValidator()

// newValidator reports fields by their JSON name, so "field" in an error
// body matches what the client sent.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads one JSON object from the body into dst and runs the
// validator tags on it. Failures come back as apperror.ErrValidation.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.ValidationFailed("", "Invalid JSON body")
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return apperror.ValidationFailed(fe.Field(),
				fmt.Sprintf("%s failed the %q check", fe.Field(), fe.Tag()))
		}
		return apperror.ValidationFailed("", err.Error())
	}
	return nil
}

// queryInt reads an optional integer query parameter. A missing value is 0,
// which the services treat as "use the default".
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.ValidationFailed(name, fmt.Sprintf("%s must be an integer", name))
	}
	return n, nil
}
