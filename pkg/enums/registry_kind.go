package enums

import "fmt"

// RegistryKind tags the event type a registry was created for. A single
// Registry entity with a kind tag replaces per-kind subclasses.
type RegistryKind string

const (
	RegistryKindWedding    RegistryKind = "wedding"
	RegistryKindBabyShower RegistryKind = "baby_shower"
	RegistryKindBridal     RegistryKind = "bridal_shower"
	RegistryKindBirthday   RegistryKind = "birthday"
)

var validRegistryKinds = []RegistryKind{
	RegistryKindWedding,
	RegistryKindBabyShower,
	RegistryKindBridal,
	RegistryKindBirthday,
}

// String implements fmt.Stringer.
func (r RegistryKind) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RegistryKind.
func (r RegistryKind) IsValid() bool {
	for _, candidate := range validRegistryKinds {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRegistryKind converts raw input into a RegistryKind.
func ParseRegistryKind(value string) (RegistryKind, error) {
	for _, candidate := range validRegistryKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid registry kind %q", value)
}
