package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrymomot/formguard/pkg/validator"
)

// Membership answers whether value belongs to a named set.
// *redis.Sets satisfies it.
type Membership interface {
	Contains(ctx context.Context, set, value string) (bool, error)
}

// Unique reports values found in set as taken. Values are normalized by
// trimming and lower-casing before the lookup.
func Unique(m Membership, set string) validator.Lookup {
	return func(ctx context.Context, value string) (string, error) {
		ok, err := m.Contains(ctx, set, normalize(value))
		if err != nil {
			return "", errors.Join(ErrLookupFailed, err)
		}
		if ok {
			return fmt.Sprintf("%q is already taken.", strings.TrimSpace(value)), nil
		}
		return "", nil
	}
}

// Known reports values missing from set as unrecognized.
func Known(m Membership, set string) validator.Lookup {
	return func(ctx context.Context, value string) (string, error) {
		ok, err := m.Contains(ctx, set, normalize(value))
		if err != nil {
			return "", errors.Join(ErrLookupFailed, err)
		}
		if !ok {
			return fmt.Sprintf("%q is not recognized.", strings.TrimSpace(value)), nil
		}
		return "", nil
	}
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
