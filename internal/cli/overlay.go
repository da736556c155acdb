package cli

import (
	"github.com/smokyabdulrahman/athan/internal/config"
)

// overlay layers command-line overrides on top of a settings store. Reads
// prefer the overrides; writes go to the store.
type overlay struct {
	base      config.Store
	overrides map[string]string
}

func newOverlay(base config.Store) *overlay {
	return &overlay{base: base, overrides: make(map[string]string)}
}

func (o *overlay) set(key, value string) {
	o.overrides[key] = value
}

func (o *overlay) GetString(key, def string) string {
	if v, ok := o.overrides[key]; ok {
		return v
	}
	return o.base.GetString(key, def)
}

// SetString persists value unless the key is overridden for this run, in
// which case only the override changes.
func (o *overlay) SetString(key, value string) error {
	if _, ok := o.overrides[key]; ok {
		o.overrides[key] = value
		return nil
	}
	return o.base.SetString(key, value)
}
