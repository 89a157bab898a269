package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// maxBodyBytes limits JSON request bodies.
const maxBodyBytes = 1 << 20

// validate is shared by all handlers; validator caches struct metadata
// and is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names so messages match what the client sent.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindJSON decodes the request body into dst and validates it. On failure
// it writes a 400 and returns false.
func bindJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if n, ok := dst.(interface{ normalize() }); ok {
		n.normalize()
	}
	if err := validate.Struct(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// validationMessage turns the first validation failure into a sentence.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}
	fe := verrs[0]
	field := fieldLabel(fe.Field())

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s may contain at most %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	}
	return field + " is invalid"
}

// fieldLabel turns a JSON field name into a label: "coverImage" becomes
// "Cover image".
func fieldLabel(name string) string {
	if name == "" {
		return "Field"
	}
	var b strings.Builder
	for i, r := range name {
		switch {
		case i == 0:
			b.WriteString(strings.ToUpper(string(r)))
		case r >= 'A' && r <= 'Z':
			b.WriteByte(' ')
			b.WriteString(strings.ToLower(string(r)))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Request bodies. normalize trims input before validation.

type createPostRequest struct {
	Title      string   `json:"title" validate:"required,max=300"`
	Slug       string   `json:"slug" validate:"max=300"`
	Excerpt    string   `json:"excerpt" validate:"required,max=1000"`
	Content    string   `json:"content" validate:"required,max=100000"`
	Category   string   `json:"category" validate:"required,max=100"`
	Tags       []string `json:"tags" validate:"max=20,dive,max=50"`
	CoverImage string   `json:"coverImage" validate:"max=2048"`
	Status     string   `json:"status" validate:"omitempty,oneof=draft published"`
	Featured   bool     `json:"featured"`
}

func (req *createPostRequest) normalize() {
	req.Title = strings.TrimSpace(req.Title)
	req.Slug = strings.TrimSpace(req.Slug)
	req.Excerpt = strings.TrimSpace(req.Excerpt)
	req.Content = strings.TrimSpace(req.Content)
	req.Category = strings.ToLower(strings.TrimSpace(req.Category))
	req.CoverImage = strings.TrimSpace(req.CoverImage)
}

// updatePostRequest fields are optional. Empty strings leave the field
// unchanged; tags are replaced whenever present.
type updatePostRequest struct {
	Title      string   `json:"title" validate:"max=300"`
	NewSlug    string   `json:"newSlug" validate:"max=300"`
	Excerpt    string   `json:"excerpt" validate:"max=1000"`
	Content    string   `json:"content" validate:"max=100000"`
	Category   string   `json:"category" validate:"max=100"`
	Tags       []string `json:"tags" validate:"max=20,dive,max=50"`
	CoverImage string   `json:"coverImage" validate:"max=2048"`
	Status     string   `json:"status" validate:"omitempty,oneof=draft published"`
	Featured   *bool    `json:"featured"`
}

func (req *updatePostRequest) normalize() {
	req.Title = strings.TrimSpace(req.Title)
	req.NewSlug = strings.TrimSpace(req.NewSlug)
	req.Excerpt = strings.TrimSpace(req.Excerpt)
	req.Content = strings.TrimSpace(req.Content)
	req.Category = strings.ToLower(strings.TrimSpace(req.Category))
	req.CoverImage = strings.TrimSpace(req.CoverImage)
}

type commentRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

func (req *commentRequest) normalize() {
	req.Content = strings.TrimSpace(req.Content)
}

type categoryRequest struct {
	Name        string `json:"name" validate:"max=100"`
	Slug        string `json:"slug" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

func (req *categoryRequest) normalize() {
	req.Name = strings.TrimSpace(req.Name)
	req.Slug = strings.ToLower(strings.TrimSpace(req.Slug))
	req.Description = strings.TrimSpace(req.Description)
}

type profileRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Username string `json:"username" validate:"required,max=50"`
	Bio      string `json:"bio" validate:"max=1000"`
	Image    string `json:"image" validate:"max=2048"`
}

func (req *profileRequest) normalize() {
	req.Name = strings.TrimSpace(req.Name)
	req.Username = strings.TrimSpace(req.Username)
	req.Bio = strings.TrimSpace(req.Bio)
	req.Image = strings.TrimSpace(req.Image)
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

func (req *registerRequest) normalize() {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (req *loginRequest) normalize() {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

func (req *emailRequest) normalize() {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
}

type resetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}
