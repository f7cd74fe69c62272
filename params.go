package goVK

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/MrEthical07/goVK/permission"
)

// Params are the arguments of an API method call. Values are rendered to
// strings before signing:
//
//   - string: verbatim
//   - signed and unsigned integers: decimal
//   - float32, float64: shortest decimal without exponent
//   - bool: "1" or "0"
//   - permission.Mask, *permission.Scope: decimal mask
//   - []string, []int, []int64: comma-joined
//   - fmt.Stringer: String()
//   - nil: ""
//
// Any other value is rendered with fmt.Sprint.
type Params map[string]any

// Clone returns a shallow copy of p.
func (p Params) Clone() Params {
	out := make(Params, len(p)+6)
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Has reports whether key is present, even with a nil value.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

func (p Params) encode() map[string]string {
	out := make(map[string]string, len(p))
	for k, v := range p {
		out[k] = formatValue(v)
	}
	return out
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "1"
		}
		return "0"
	case permission.Mask:
		return x.String()
	case *permission.Scope:
		if x == nil {
			return "0"
		}
		return x.String()
	case []string:
		return strings.Join(x, ",")
	case []int:
		parts := make([]string, len(x))
		for i, n := range x {
			parts[i] = strconv.Itoa(n)
		}
		return strings.Join(parts, ",")
	case []int64:
		parts := make([]string, len(x))
		for i, n := range x {
			parts[i] = strconv.FormatInt(n, 10)
		}
		return strings.Join(parts, ",")
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// sortedKeys returns the keys of m in byte order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toValues(m map[string]string) url.Values {
	v := make(url.Values, len(m))
	for k, s := range m {
		v.Set(k, s)
	}
	return v
}
