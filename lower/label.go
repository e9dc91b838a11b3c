// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lower

import (
	"fmt"

	"code.hybscloud.com/compose"
)

// Label walks tree, assigning each node a path string recording its
// position relative to the root (§4.2): a variadic child at index i
// appends "[i]"; a named argument slot appends ".name". The root's
// path is "".
//
// Label never mutates tree in place — it returns a labeled copy, so
// callers can label the same tree more than once (e.g. before and
// after a manual edit) without aliasing surprises.
func Label(tree compose.Composition) compose.Composition {
	return label(tree, "")
}

func label(node compose.Composition, path string) compose.Composition {
	node.Path = path

	if len(node.Components) > 0 {
		children := make([]compose.Composition, len(node.Components))
		for i, child := range node.Components {
			children[i] = label(child, fmt.Sprintf("%s[%d]", path, i))
		}
		node.Components = children
	}

	if len(node.Args) > 0 {
		args := make(map[string]any, len(node.Args))
		for name, v := range node.Args {
			if child, ok := v.(compose.Composition); ok {
				args[name] = label(child, path+"."+name)
			} else {
				args[name] = v
			}
		}
		node.Args = args
	}

	return node
}
