// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package compose

import "encoding/json"

// DeserializeJSON unmarshals raw JSON into a generic value tree and
// rebuilds a Composition AST from it via Deserialize.
func DeserializeJSON(reg *Registry, data []byte) (Composition, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return Composition{}, newBuildError("deserialize", err)
	}
	return Deserialize(reg, v)
}

// Deserialize rebuilds an AST from a decoded JSON value (the
// map[string]any/[]any/string/float64/bool/nil shapes produced by
// encoding/json), per §4.1/§6.3: it visits named composition-typed
// slots and components, wrapping each nested object in a Composition
// node. Already-built Composition values pass through unchanged, so
// Deserialize is idempotent on its own output.
func Deserialize(reg *Registry, v any) (Composition, error) {
	switch node := v.(type) {
	case Composition:
		return node, nil
	case map[string]any:
		return deserializeObject(reg, node)
	default:
		return Composition{}, newBuildError("deserialize", ErrInvalidArgument)
	}
}

func deserializeObject(reg *Registry, node map[string]any) (Composition, error) {
	typeName, _ := node["type"].(string)
	desc, ok := reg.Get(typeName)
	if !ok {
		return Composition{}, newBuildError("deserialize", ErrInvalidName)
	}

	c := Composition{Type: typeName, Args: make(map[string]any, len(desc.Args))}
	if p, ok := node["path"].(string); ok {
		c.Path = p
	}

	if desc.Variadic {
		rawComponents, _ := node["components"].([]any)
		components := make([]Composition, 0, len(rawComponents))
		for _, rc := range rawComponents {
			child, err := Deserialize(reg, rc)
			if err != nil {
				return Composition{}, err
			}
			components = append(components, child)
		}
		c.Components = components
	}

	for _, slot := range desc.Args {
		raw, present := node[slot.Name]
		if !present {
			if slot.Type == ArgComposition {
				// Matches task(nil) -> empty(): an omitted composition
				// slot (e.g. if's alternate) is an empty composition, not
				// a missing-argument error.
				empty, err := NewComposer(reg).Build("empty")
				if err != nil {
					return Composition{}, err
				}
				c.Args[slot.Name] = empty
				continue
			}
			if !slot.Optional {
				return Composition{}, newBuildError("deserialize."+typeName+"."+slot.Name, ErrInvalidArgument)
			}
			continue
		}
		if slot.Type == ArgComposition {
			child, err := Deserialize(reg, raw)
			if err != nil {
				return Composition{}, err
			}
			c.Args[slot.Name] = child
			continue
		}
		c.Args[slot.Name] = raw
	}

	return c, nil
}
