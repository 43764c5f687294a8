package patient

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/patient-table/internal/model"
	apperrors "github.com/jwalitptl/patient-table/pkg/errors"
)

// CommitPolicy decides whether a draft may be committed.
type CommitPolicy interface {
	Check(draft model.Patient) error
}

// Permissive accepts every draft, including empty ones.
type Permissive struct{}

func (Permissive) Check(model.Patient) error { return nil }

// RequiredFields rejects drafts missing a name or a valid sex, and drafts
// whose age is not a number.
type RequiredFields struct {
	validate *validator.Validate
}

func NewRequiredFields() *RequiredFields {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
	return &RequiredFields{validate: v}
}

func (r *RequiredFields) Check(draft model.Patient) error {
	err := r.validate.Struct(draft)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewValidation("draft is invalid", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return apperrors.NewValidation("draft is incomplete: "+strings.Join(fields, ", "), err)
}

// PolicyByName resolves the configured commit policy name.
func PolicyByName(name string) (CommitPolicy, bool) {
	switch name {
	case "", "permissive":
		return Permissive{}, true
	case "required":
		return NewRequiredFields(), true
	}
	return nil, false
}
