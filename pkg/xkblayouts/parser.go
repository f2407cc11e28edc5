package xkblayouts

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

func ParseRegistry(path string) (*Registry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	return DecodeRegistry(file)
}

func DecodeRegistry(r io.Reader) (*Registry, error) {
	registry := &Registry{}
	if err := xml.NewDecoder(r).Decode(registry); err != nil {
		return nil, fmt.Errorf("decode xml: %w", err)
	}

	return registry, nil
}

// Describe returns the human readable name of a layout, or of one of its
// variants when variant is set. It returns "" when the registry does not
// know the pair.
func (r *Registry) Describe(layout, variant string) string {
	for _, l := range r.Layouts {
		if l.ConfigItem.Name != layout {
			continue
		}
		if variant == "" {
			return l.ConfigItem.Description
		}

		for _, v := range l.Variants {
			if v.ConfigItem.Name == variant {
				return v.ConfigItem.Description
			}
		}
	}

	return ""
}

// Resolve is the inverse of Describe.
func (r *Registry) Resolve(description string) (layout, variant string, ok bool) {
	for _, l := range r.Layouts {
		if l.ConfigItem.Description == description {
			return l.ConfigItem.Name, "", true
		}

		for _, v := range l.Variants {
			if v.ConfigItem.Description == description {
				return l.ConfigItem.Name, v.ConfigItem.Name, true
			}
		}
	}

	return "", "", false
}
