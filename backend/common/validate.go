package common

import "github.com/go-playground/validator/v10"

// Validate is the shared validator instance for request payloads carrying
// `validate` tags.
var Validate = validator.New()
