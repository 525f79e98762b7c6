package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

// Validator validates a single request field.
type Validator interface {
	Validate(value interface{}) error
}

type Form struct {
	validators map[string]Validator
}

// MustForm builds a Form validator keyed by the json/schema tag
// of the request struct fields.
func MustForm(validators map[string]Validator) *Form {
	for field, v := range validators {
		if v == nil {
			panic(fmt.Sprintf("nil validator for field %s", field))
		}
	}
	return &Form{validators: validators}
}

func (f *Form) Validate(req interface{}) error {
	v := reflect.ValueOf(req)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return errors.New("request is nil")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return errors.New("request must be a struct")
	}

	fields := make(map[string]reflect.Value)
	collectFields(v, fields)

	for name, validator := range f.validators {
		fv, ok := fields[name]
		if !ok {
			return fmt.Errorf("field %s not found in request", name)
		}
		if err := validator.Validate(fv.Interface()); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	return nil
}

func collectFields(v reflect.Value, dst map[string]reflect.Value) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		var (
			sf = t.Field(i)
			fv = v.Field(i)
		)

		if sf.Anonymous {
			// embedded structs are addressable by their type name too
			dst[sf.Name] = fv

			ev := fv
			if ev.Kind() == reflect.Ptr && !ev.IsNil() {
				ev = ev.Elem()
			}
			if ev.Kind() == reflect.Struct {
				collectFields(ev, dst)
			}
		}

		name := tagName(sf)
		if name == "" {
			continue
		}
		dst[name] = fv
	}
}

func tagName(sf reflect.StructField) string {
	for _, tag := range []string{"json", "schema"} {
		if tv := sf.Tag.Get(tag); tv != "" {
			name := strings.Split(tv, ",")[0]
			if name != "" && name != "-" {
				return name
			}
		}
	}
	return ""
}

type String struct {
	Optional bool
	MinLen   int
	MaxLen   int
	Regex    *regexp.Regexp
}

func (c *String) Validate(value interface{}) error {
	s, ok := value.(*string)
	if !ok {
		if sv, isStr := value.(string); isStr {
			s = &sv
		} else {
			return errors.New("expect string")
		}
	}

	if s == nil {
		if c.Optional {
			return nil
		}
		return errors.New("is required")
	}

	if len(*s) < c.MinLen {
		return fmt.Errorf("min length is %d", c.MinLen)
	}

	if c.MaxLen > 0 && len(*s) > c.MaxLen {
		return fmt.Errorf("max length is %d", c.MaxLen)
	}

	if c.Regex != nil && !c.Regex.MatchString(*s) {
		return errors.New("invalid format")
	}

	return nil
}

type UInt64 struct {
	Optional bool
	Min      *uint64
	Max      *uint64
}

func (c *UInt64) Validate(value interface{}) error {
	ui, ok := value.(*uint64)
	if !ok {
		if uv, isUint := value.(uint64); isUint {
			ui = &uv
		} else {
			return errors.New("expect uint64")
		}
	}

	if ui == nil {
		if c.Optional {
			return nil
		}
		return errors.New("is required")
	}

	if c.Min != nil && *ui < *c.Min {
		return fmt.Errorf("min value is %d", *c.Min)
	}

	if c.Max != nil && *ui > *c.Max {
		return fmt.Errorf("max value is %d", *c.Max)
	}

	return nil
}

type Slice struct {
	Optional  bool
	MinLen    int
	MaxLen    int
	Validator *Form
}

func (c *Slice) Validate(value interface{}) error {
	v := reflect.ValueOf(value)
	if v.Kind() != reflect.Slice {
		return errors.New("expect slice")
	}

	if v.IsNil() || v.Len() == 0 {
		if c.Optional && v.Len() >= c.MinLen {
			return nil
		}
	}

	if v.Len() < c.MinLen {
		return fmt.Errorf("min length is %d", c.MinLen)
	}

	if c.MaxLen > 0 && v.Len() > c.MaxLen {
		return fmt.Errorf("max length is %d", c.MaxLen)
	}

	if c.Validator != nil {
		for i := 0; i < v.Len(); i++ {
			if err := c.Validator.Validate(v.Index(i).Interface()); err != nil {
				return fmt.Errorf("index %d: %w", i, err)
			}
		}
	}

	return nil
}
