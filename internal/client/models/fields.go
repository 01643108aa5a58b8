package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

var ErrIncorrectField = errors.New("field must be name=value")

// ParseFields turns "name=value" items into a map. Only the first '=' splits,
// so values may contain '='. An item without '=' continues the previous
// value after a space, which keeps whitespace-split input such as
// "Name=Le Guin" intact.
func ParseFields(items []string) (map[string]string, error) {
	fields := make(map[string]string, len(items))
	last := ""
	for _, item := range items {
		name, value, ok := strings.Cut(item, "=")
		if !ok && last != "" {
			fields[last] = strings.TrimSpace(fields[last] + " " + item)
			continue
		}
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", ErrIncorrectField, item)
		}
		fields[name] = strings.TrimSpace(value)
		last = name
	}
	return fields, nil
}

// Decode fills dst (a pointer to an input or patch) from fields keyed by JSON
// field name. Values are converted to the target field type; names that do
// not exist on dst are rejected.
func Decode(fields map[string]string, dst any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           dst,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(fields); err != nil {
		return fmt.Errorf("decode fields: %w", err)
	}
	return nil
}
