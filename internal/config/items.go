package config

import (
	"bytes"
	"cmp"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/dragsync/internal/log"
)

// ItemsFile is the on-disk shape of an items file. Keys are "group/container".
//
//	containers:
//	  containerGroup0/container0:
//	    - {id: "1"}
//	  alphaOmega/container3: [123456, "987654"]
type ItemsFile struct {
	Containers map[string][]any `yaml:"containers"`
}

// ContainerItems are the items of one container.
type ContainerItems struct {
	Group     string
	Container string
	Items     []any
}

// LoadItems reads an items file. Entries are returned sorted by key so
// registration order is stable.
func LoadItems(path string) ([]ContainerItems, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading items file: %w", err)
	}
	return ParseItems(data)
}

// ParseItems decodes items file content.
func ParseItems(data []byte) ([]ContainerItems, error) {
	var f ItemsFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if len(bytes.TrimSpace(data)) == 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("parsing items file: %w", err)
	}

	out := make([]ContainerItems, 0, len(f.Containers))
	for key, items := range f.Containers {
		group, container, ok := strings.Cut(key, "/")
		if !ok || group == "" || container == "" {
			return nil, fmt.Errorf("items file: key %q must be group/container", key)
		}
		out = append(out, ContainerItems{Group: group, Container: container, Items: normalize(items)})
	}
	slices.SortFunc(out, func(a, b ContainerItems) int {
		return cmp.Or(cmp.Compare(a.Group, b.Group), cmp.Compare(a.Container, b.Container))
	})
	log.Debug(log.CatConfig, "Parsed items file", "containers", len(out))
	return out, nil
}

// Items returns the initial items declared inline in the configuration.
func (c Config) Items() []ContainerItems {
	var out []ContainerItems
	for _, cc := range c.GetContainers() {
		if len(cc.Items) == 0 {
			continue
		}
		out = append(out, ContainerItems{Group: cc.Group, Container: cc.ID, Items: normalize(cc.Items)})
	}
	return out
}

// normalize converts map[any]any values, which some YAML decoders produce
// for nested mappings, into map[string]any so the JSON codec can encode them.
func normalize(items []any) []any {
	out := make([]any, len(items))
	for i, v := range items {
		out[i] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, mv := range val {
			m[fmt.Sprint(k)] = normalizeValue(mv)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, mv := range val {
			m[k] = normalizeValue(mv)
		}
		return m
	case []any:
		return normalize(val)
	default:
		return v
	}
}
