// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package compose

import "strings"

// ParseActionName normalizes an action or composition name per §6.2:
//
//	name = "/" ns "/" [pkg "/"] action   (fully qualified)
//	     | [pkg "/"] action              (unqualified, implicit ns "_")
//
// Unqualified names are prefixed with "/_/"; qualified names are
// returned with their leading slash and namespace intact. Any segment
// that is empty after trimming, or a split that doesn't land on one of
// the two valid shapes, is rejected.
func ParseActionName(name string) (string, error) {
	parts := strings.Split(name, "/")
	qualified := len(parts) > 0 && parts[0] == ""

	segs := parts
	if qualified {
		segs = parts[1:]
	}
	for _, s := range segs {
		if strings.TrimSpace(s) == "" {
			return "", ErrInvalidName
		}
	}

	if qualified {
		switch len(segs) {
		case 2: // /ns/action
			return "/" + segs[0] + "/" + segs[1], nil
		case 3: // /ns/pkg/action
			return "/" + segs[0] + "/" + segs[1] + "/" + segs[2], nil
		default:
			return "", ErrInvalidName
		}
	}

	switch len(segs) {
	case 1: // action
		return "/_/" + segs[0], nil
	case 2: // pkg/action
		return "/_/" + segs[0] + "/" + segs[1], nil
	default:
		return "", ErrInvalidName
	}
}
