// Package validation turns invalid request payloads into ERR_VALIDATION
// client errors.
//
// Struct tags are checked with go-playground/validator:
//
//	type SignupRequest struct {
//	    Name  string `json:"name" validate:"required,min=2"`
//	    Email string `json:"email" validate:"required,email"`
//	}
//	err := validation.Validate(req)
//
// FromError converts the validator errors gin's binding returns for
// `binding` tags; the error dispatcher applies it to every surfaced error.
package validation
