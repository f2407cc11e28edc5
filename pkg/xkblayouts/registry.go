package xkblayouts

import "encoding/xml"

// Registry is the subset of xkb's rules/evdev.xml needed to name layouts.
type Registry struct {
	XMLName xml.Name `xml:"xkbConfigRegistry"`
	Layouts []Layout `xml:"layoutList>layout"`
}

type ConfigItem struct {
	Name        string `xml:"name"`
	Description string `xml:"description"`
}

type Layout struct {
	ConfigItem ConfigItem `xml:"configItem"`
	Variants   []Variant  `xml:"variantList>variant"`
}

type Variant struct {
	ConfigItem ConfigItem `xml:"configItem"`
}
