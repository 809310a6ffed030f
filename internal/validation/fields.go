package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// messageFor picks the message declared on the field: msg_<rule> first, then msg.
func messageFor(sf reflect.StructField, field string, fe validator.FieldError) string {
	if m := sf.Tag.Get("msg_" + fe.Tag()); m != "" {
		return m
	}
	if m := sf.Tag.Get("msg"); m != "" {
		return m
	}
	return field + " " + validationMessage(fe.Tag(), fe.Param())
}

func baseStructType(v interface{}) reflect.Type {
	t := reflect.TypeOf(v)

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t != nil && t.Kind() == reflect.Struct {
		return t
	}

	return nil
}

// structField resolves the failing field by walking the struct namespace,
// which is "<StructName>.<Field>[.<NestedField>...]".
func structField(rootType reflect.Type, fe validator.FieldError) (reflect.StructField, bool) {
	if rootType == nil {
		return reflect.StructField{}, false
	}

	parts := strings.Split(fe.StructNamespace(), ".")
	if len(parts) > 0 && parts[0] == rootType.Name() {
		parts = parts[1:]
	}

	current := rootType
	var sf reflect.StructField
	for _, part := range parts {
		name, _, _ := strings.Cut(part, "[")
		for current.Kind() == reflect.Pointer || current.Kind() == reflect.Slice {
			current = current.Elem()
		}
		if current.Kind() != reflect.Struct {
			return reflect.StructField{}, false
		}

		f, ok := current.FieldByName(name)
		if !ok {
			return reflect.StructField{}, false
		}
		sf = f
		current = f.Type
	}
	return sf, sf.Name != ""
}

func jsonNameFromStructField(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if tag == "" {
		return sf.Name
	}

	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return sf.Name
	}

	return name
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required", "notblank":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	case "uuidshape":
		return "must be a valid UUID"
	case "isodate":
		return "must be a valid ISO date"
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
