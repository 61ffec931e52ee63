// Package validate provides struct-tag validation.
//
// Supported rules (comma-separated in the `validate` tag):
//
//	required            field must not be zero/empty
//	nullable            if empty, skip all remaining rules for this field
//	email               valid email address
//	numeric             any number
//	integer             whole number
//	min=N               string: min char length | number: min value
//	max=N               string: max char length | number: max value
//	gt=N                number > N
//	gte=N               number >= N
//	lte=N               number <= N
//	in=a,b,c            value must be one of the listed items
//
// Example:
//
//	type Input struct {
//	    Email    string `json:"email"    validate:"required,email"`
//	    Quantity int    `json:"quantity" validate:"required,gt=0"`
//	    Role     string `json:"role"     validate:"required,in=CUSTOMER,ADMIN"`
//	}
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Struct validates all exported fields of v that carry a `validate` tag.
// Returns a map of fieldName → error message; empty map means no errors.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		value := rv.Field(i)

		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}

		name := jsonName(field)
		if msg := checkField(value, tag); msg != "" {
			errs[name] = msg
		}
	}

	return errs
}

// HasErrors reports whether the error map contains any entries.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

func jsonName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" || tag == "-" {
		return field.Name
	}
	return strings.SplitN(tag, ",", 2)[0]
}

func checkField(v reflect.Value, tag string) string {
	rules := strings.Split(tag, ",")

	// in=a,b,c swallows the rest of the tag; reassemble it.
	for i, r := range rules {
		if strings.HasPrefix(r, "in=") {
			rules = append(rules[:i], strings.Join(rules[i:], ","))
			break
		}
	}

	for _, rule := range rules {
		name, arg := rule, ""
		if idx := strings.IndexByte(rule, '='); idx >= 0 {
			name, arg = rule[:idx], rule[idx+1:]
		}

		switch name {
		case "required":
			if isEmpty(v) {
				return "is required"
			}
		case "nullable":
			if isEmpty(v) {
				return ""
			}
		case "email":
			if s, ok := asString(v); ok && !emailRe.MatchString(s) {
				return "must be a valid email address"
			}
		case "numeric":
			if s, ok := asString(v); ok {
				if _, err := strconv.ParseFloat(s, 64); err != nil {
					return "must be a number"
				}
			}
		case "integer":
			if s, ok := asString(v); ok {
				if _, err := strconv.ParseInt(s, 10, 64); err != nil {
					return "must be a whole number"
				}
			}
		case "min":
			if msg := checkBound(v, arg, func(got, want float64) bool { return got >= want },
				"must be at least %s"); msg != "" {
				return msg
			}
		case "max":
			if msg := checkBound(v, arg, func(got, want float64) bool { return got <= want },
				"must be at most %s"); msg != "" {
				return msg
			}
		case "gt":
			if msg := checkBound(v, arg, func(got, want float64) bool { return got > want },
				"must be greater than %s"); msg != "" {
				return msg
			}
		case "gte":
			if msg := checkBound(v, arg, func(got, want float64) bool { return got >= want },
				"must be at least %s"); msg != "" {
				return msg
			}
		case "lte":
			if msg := checkBound(v, arg, func(got, want float64) bool { return got <= want },
				"must be at most %s"); msg != "" {
				return msg
			}
		case "in":
			allowed := strings.Split(arg, ",")
			got := fmt.Sprintf("%v", v.Interface())
			found := false
			for _, a := range allowed {
				if got == a {
					found = true
					break
				}
			}
			if !found {
				return "must be one of: " + strings.Join(allowed, ", ")
			}
		}
	}

	return ""
}

// checkBound compares a numeric value (or string length) against arg.
func checkBound(v reflect.Value, arg string, ok func(got, want float64) bool, format string) string {
	want, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return ""
	}

	var got float64
	switch v.Kind() {
	case reflect.String:
		got = float64(len(v.String()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		got = float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		got = float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		got = v.Float()
	case reflect.Slice, reflect.Array, reflect.Map:
		got = float64(v.Len())
	default:
		return ""
	}

	if !ok(got, want) {
		return fmt.Sprintf(format, arg)
	}
	return ""
}

func asString(v reflect.Value) (string, bool) {
	if v.Kind() == reflect.String {
		return v.String(), true
	}
	return "", false
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Array, reflect.Map:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	default:
		return v.IsZero()
	}
}
