package entity

import (
	"fmt"
	"sort"
	"strings"
)

type ItemType string

const (
	ItemTypeBook        ItemType = "book"
	ItemTypeElectronics ItemType = "electronics"
	ItemTypeClothing    ItemType = "clothing"
	ItemTypeFurniture   ItemType = "furniture"
	ItemTypeOther       ItemType = "other"
)

var requiredAttributes = map[ItemType][]string{
	ItemTypeBook:        {"author", "isbn"},
	ItemTypeElectronics: {"brand", "model"},
	ItemTypeClothing:    {"size", "material"},
	ItemTypeFurniture:   {"material", "dimensions"},
	ItemTypeOther:       nil,
}

// ItemTypes returns every known item type, sorted.
func ItemTypes() []ItemType {
	types := make([]ItemType, 0, len(requiredAttributes))
	for t := range requiredAttributes {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

func ParseItemType(s string) (ItemType, error) {
	t := ItemType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown item type %q", s)
	}
	return t, nil
}

func (t ItemType) Valid() bool {
	_, ok := requiredAttributes[t]
	return ok
}

// RequiredAttributes lists the attribute keys an item of this type must carry.
func (t ItemType) RequiredAttributes() []string {
	return requiredAttributes[t]
}

// ValidateAttributes checks that attrs holds a non-empty value for every
// attribute the type requires.
func (t ItemType) ValidateAttributes(attrs map[string]interface{}) error {
	if !t.Valid() {
		return fmt.Errorf("unknown item type %q", string(t))
	}
	var missing []string
	for _, key := range t.RequiredAttributes() {
		v, ok := attrs[key]
		if !ok || v == nil {
			missing = append(missing, key)
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s items require attributes: %s", t, strings.Join(missing, ", "))
	}
	return nil
}
