// Package validation checks configuration structs and endpoint arguments.
//
// Struct tag validation (go-playground/validator) is used for configuration:
//
//	type Server struct {
//	    Port int `mapstructure:"port" validate:"min=1,max=65535"`
//	}
//	err := validation.Validate(srv)
//
// Programmatic validation collects argument errors before a call is sent:
//
//	err := validation.New().
//	    PathSegment("group", group).
//	    PathSegment("file", file).
//	    Validate()
package validation
