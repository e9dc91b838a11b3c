// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package compose

import "gopkg.in/yaml.v3"

// Dump renders a composition tree (typically after Label/Lower) as YAML
// for debug inspection — the same flattened {type, path, components,
// ...args} shape MarshalJSON produces, just in the teacher's preferred
// human-readable debug format instead of JSON.
func Dump(tree Composition) ([]byte, error) {
	out, err := yaml.Marshal(tree.toValue())
	if err != nil {
		return nil, newBuildError("dump", err)
	}
	return out, nil
}
