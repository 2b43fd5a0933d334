package gff

import (
	"fmt"
	"strings"
)

// Well-known GFF3 attribute keys.
const (
	AttrID     = "ID"
	AttrParent = "Parent"
)

// Attribute is a single key=value token of the attribute column.
type Attribute struct {
	Key   string
	Value string
}

// Attributes holds attribute tokens in the order they appear on the line.
// Repeated keys are kept as separate entries.
type Attributes []Attribute

// AttributeError reports a token without a '=' separator.
type AttributeError struct {
	Token string
	Index int // position of the token among ';'-separated parts
}

func (e *AttributeError) Error() string {
	return fmt.Sprintf("attribute token %d %q: missing '='", e.Index, e.Token)
}

// ParseAttributes parses a GFF3 attribute column.
// Format: key=value;key=value;...
//
// Empty tokens are ignored. The value is everything after the first '='
// and is not split on ','. Tokens lacking '=' are left out of the result;
// the first such token is reported as an *AttributeError while the valid
// tokens are still returned.
func ParseAttributes(attrStr string) (Attributes, error) {
	var (
		attrs    Attributes
		firstErr error
	)

	for i, part := range strings.Split(attrStr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, value, ok := strings.Cut(part, "=")
		if !ok {
			if firstErr == nil {
				firstErr = &AttributeError{Token: part, Index: i}
			}
			continue
		}

		attrs = append(attrs, Attribute{Key: key, Value: value})
	}

	return attrs, firstErr
}

// Last returns the value of the last token with the given key.
func (a Attributes) Last(key string) (string, bool) {
	for i := len(a) - 1; i >= 0; i-- {
		if a[i].Key == key {
			return a[i].Value, true
		}
	}
	return "", false
}

// Values returns the values of every token with the given key, in order.
func (a Attributes) Values(key string) []string {
	var values []string
	for _, attr := range a {
		if attr.Key == key {
			values = append(values, attr.Value)
		}
	}
	return values
}
