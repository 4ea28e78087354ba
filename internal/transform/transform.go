// Package transform reshapes upstream JSON before it is relayed to the storefront.
// Values are the generic form produced by a json.Decoder with UseNumber.
package transform

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Products normalizes a product list or a single product.
func Products(v any) any {
	if list, ok := v.([]any); ok {
		out := make([]any, len(list))
		for i, p := range list {
			out[i] = Product(p)
		}
		return out
	}
	return Product(v)
}

// Product turns string-encoded price and rating into numbers. A string that is
// not a number becomes null.
func Product(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	out := make(map[string]any, len(m))
	for k, val := range m {
		out[k] = val
	}
	for _, key := range []string{"price", "rating"} {
		if s, ok := out[key].(string); ok {
			out[key] = DecimalString(s)
		}
	}
	return out
}

// DecimalString parses the leading decimal of s, the way a lenient float parse
// would. It returns nil when no number can be read.
func DecimalString(s string) any {
	s = strings.TrimSpace(s)
	if d, err := decimal.NewFromString(s); err == nil {
		return json.Number(d.String())
	}
	if p := numericPrefix(s); p != "" {
		if d, err := decimal.NewFromString(p); err == nil {
			return json.Number(d.String())
		}
	}
	return nil
}

func numericPrefix(s string) string {
	end := 0
	seenDigit, seenDot := false, false
	for i, r := range s {
		switch {
		case (r == '-' || r == '+') && i == 0:
		case r >= '0' && r <= '9':
			seenDigit = true
		case r == '.' && !seenDot:
			seenDot = true
		default:
			if !seenDigit {
				return ""
			}
			return strings.TrimSuffix(s[:end], ".")
		}
		end = i + 1
	}
	if !seenDigit {
		return ""
	}
	return strings.TrimSuffix(s[:end], ".")
}

// Orders applies Order to every element of a list, or to a single order.
func Orders(v any) any {
	if list, ok := v.([]any); ok {
		out := make([]any, len(list))
		for i, o := range list {
			out[i] = Order(o)
		}
		return out
	}
	return Order(v)
}

// Order parses a JSON-encoded items string and renames productId to name on
// each line. Lines without an id get a positional one.
func Order(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	out := make(map[string]any, len(m))
	for k, val := range m {
		out[k] = val
	}
	out["items"] = normalizeItems(ParseItems(m["items"]))
	return out
}

// ParseItems accepts a list or a JSON string holding one. Anything else is an empty list.
func ParseItems(v any) []any {
	switch items := v.(type) {
	case []any:
		return items
	case string:
		dec := json.NewDecoder(strings.NewReader(items))
		dec.UseNumber()
		var parsed any
		if err := dec.Decode(&parsed); err != nil {
			return []any{}
		}
		if list, ok := parsed.([]any); ok {
			return list
		}
	}
	return []any{}
}

func normalizeItems(items []any) []any {
	out := make([]any, len(items))
	for i, it := range items {
		m, _ := it.(map[string]any)
		out[i] = map[string]any{
			"id":       firstTruthy(fmt.Sprintf("item-%d", i), m["id"]),
			"name":     firstTruthy("", m["productId"], m["name"]),
			"quantity": firstTruthy(json.Number("0"), m["quantity"]),
			"price":    firstTruthy(json.Number("0"), m["price"]),
		}
	}
	return out
}

func firstTruthy(def any, vals ...any) any {
	for _, v := range vals {
		if Truthy(v) {
			return v
		}
	}
	return def
}

// Tenants reduces a tenant list to {id, name} pairs and drops entries missing
// either. A non-list payload becomes an empty list.
func Tenants(v any) any {
	list, ok := v.([]any)
	if !ok {
		return []any{}
	}
	out := make([]any, 0, len(list))
	for _, t := range list {
		m, ok := t.(map[string]any)
		if !ok {
			continue
		}
		if !Truthy(m["id"]) || !Truthy(m["name"]) {
			continue
		}
		out = append(out, map[string]any{"id": m["id"], "name": m["name"]})
	}
	return out
}

// Truthy reports whether v would pass a loose truthiness check: nil, false,
// zero, NaN and the empty string are false; objects and lists are true.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		if err != nil {
			return x.String() != ""
		}
		return !d.IsZero()
	case float64:
		return x != 0 && x == x
	case int:
		return x != 0
	default:
		return true
	}
}

// Float reads a number out of a decoded JSON value. Strings are parsed as decimals.
func Float(v any) float64 {
	switch x := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		if err != nil {
			return 0
		}
		return d.InexactFloat64()
	case float64:
		return x
	case int:
		return float64(x)
	case string:
		if n, ok := DecimalString(x).(json.Number); ok {
			return Float(n)
		}
	}
	return 0
}
