package config

import (
	"github.com/mesh-intelligence/mappings/pkg/mappings"
)

// SettingsSchema lays out the well-known keys. Every Settings value shares
// it.
var SettingsSchema = mappings.MakeSchema(KeyBackend, KeyDataDir, KeyFoldKeys, KeyLogLevel)

// Settings copies the effective value of each well-known key into a
// slotted mapping. Keys hidden with Unset stay unassigned.
func (s *Store) Settings() (*mappings.Slotted[any], error) {
	view, err := s.View()
	if err != nil {
		return nil, err
	}
	out := mappings.NewSlotted[any](SettingsSchema)
	for _, key := range SettingsSchema.Keys() {
		v, err := view.Get(key)
		if mappings.IsMissing(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := out.Set(key, v); err != nil {
			return nil, err
		}
	}
	return out, nil
}
