package template

import (
	"errors"
	"strconv"
)

var (
	ErrMissingKey        = errors.New("template key is missing")
	ErrDuplicateTemplate = errors.New("template key is already defined")
	ErrMissingFieldName  = errors.New("field name is missing")
	ErrDuplicateField    = errors.New("field name is already defined")
	ErrUnknownFieldType  = errors.New("unknown field type")
	ErrInvalidDataSource = errors.New("invalid data source")
	ErrInvalidConfig     = errors.New("template configuration does not match schema")
	ErrNoTemplateSources = errors.New("no template configuration files found")
	ErrUnsupportedFormat = errors.New("unsupported template configuration format")
)

// ConfigError locates a configuration error by template and field.
// Templates without a key are identified by their position in the configuration.
type ConfigError struct {
	Index    int
	Template string
	Field    string
	Err      error
}

func (e *ConfigError) Error() string {
	msg := "template "
	if e.Template != "" {
		msg += e.Template
	} else {
		msg += "#" + strconv.Itoa(e.Index)
	}
	if e.Field != "" {
		msg += " field " + e.Field
	}
	return msg + ": " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
