// internal/cli/values.go
package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// Optional flag values write through to a nil-able field of config.File, so
// an unset flag never overrides the params file.

type optFloat struct{ dst **float64 }

func (o optFloat) String() string {
	if o.dst == nil || *o.dst == nil {
		return ""
	}
	return strconv.FormatFloat(**o.dst, 'g', -1, 64)
}

func (o optFloat) Set(v string) error {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", v)
	}
	*o.dst = &f
	return nil
}

type optInt struct{ dst **int }

func (o optInt) String() string {
	if o.dst == nil || *o.dst == nil {
		return ""
	}
	return strconv.Itoa(**o.dst)
}

func (o optInt) Set(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("not an integer: %q", v)
	}
	*o.dst = &n
	return nil
}

type optString struct{ dst **string }

func (o optString) String() string {
	if o.dst == nil || *o.dst == nil {
		return ""
	}
	return **o.dst
}

func (o optString) Set(v string) error {
	*o.dst = &v
	return nil
}

// optBool also accepts yes/no.
type optBool struct{ dst **bool }

func (o optBool) IsBoolFlag() bool { return true }

func (o optBool) String() string {
	if o.dst == nil || *o.dst == nil {
		return ""
	}
	return strconv.FormatBool(**o.dst)
}

func (o optBool) Set(v string) error {
	var b bool
	switch strings.ToLower(v) {
	case "yes", "y":
		b = true
	case "no", "n":
		b = false
	default:
		var err error
		if b, err = strconv.ParseBool(v); err != nil {
			return fmt.Errorf("want yes or no, got %q", v)
		}
	}
	*o.dst = &b
	return nil
}
