// Package forms holds the per-field validators invoked before persistence.
package forms

import (
	"bytes"
	"database/sql"
	"errors"
	"image"
	"io"
	"net/http"
	"strconv"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"yatube/internal/models"
)

const maxImageSize = 10 << 20

type FieldError struct {
	Field   string
	Message string
}

type Errors []FieldError

func (e Errors) Get(field string) string {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

// PostForm carries the create/edit post input. GroupID stays nil when the
// group field was left empty; Image stays nil when no file was uploaded.
type PostForm struct {
	Text      string
	GroupID   *int
	GroupRaw  string
	Image     []byte
	ImageName string
}

func ParsePostForm(r *http.Request) (*PostForm, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxImageSize); err != nil {
			return nil, err
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, err
	}
	f := &PostForm{
		Text:     r.FormValue("text"),
		GroupRaw: strings.TrimSpace(r.FormValue("group")),
	}
	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxImageSize))
		if err != nil {
			return nil, err
		}
		f.Image = data
		f.ImageName = header.Filename
	} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		return nil, err
	}
	return f, nil
}

// Validate checks every field and resolves GroupID. The returned errors are
// keyed by field name for the template to show next to each input.
func (f *PostForm) Validate(db *sql.DB) Errors {
	var errs Errors
	if strings.TrimSpace(f.Text) == "" {
		errs = append(errs, FieldError{"text", "This field is required."})
	}
	if f.GroupRaw != "" {
		id, err := strconv.Atoi(f.GroupRaw)
		if err != nil {
			errs = append(errs, FieldError{"group", "Select a valid group."})
		} else if _, err := models.GetGroupByID(db, id); err != nil {
			errs = append(errs, FieldError{"group", "Select a valid group."})
		} else {
			f.GroupID = &id
		}
	}
	if len(f.Image) > 0 {
		if _, _, err := image.DecodeConfig(bytes.NewReader(f.Image)); err != nil {
			errs = append(errs, FieldError{"image", "Upload a valid image."})
		}
	}
	return errs
}

type CommentForm struct {
	Text string
}

func ParseCommentForm(r *http.Request) *CommentForm {
	return &CommentForm{Text: r.FormValue("text")}
}

func (f *CommentForm) Validate() Errors {
	var errs Errors
	if strings.TrimSpace(f.Text) == "" {
		errs = append(errs, FieldError{"text", "This field is required."})
	}
	return errs
}
