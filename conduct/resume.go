// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package conduct

import "encoding/json"

// adoptResume extracts a host-returned {"$resume": {...}} envelope from
// params (§4.4.3). Its absence is not an error: a first call into Run
// has no $resume at all, and resumeState/stack come back zero, which is
// exactly the state a fresh composition starts from.
//
// params's dynamic shape is whatever the host's JSON decoder produced
// (map[string]any, with $resume.stack entries as generic
// map[string]any), so adopting it round-trips through json.Marshal to
// reach Frame.UnmarshalJSON rather than type-asserting by hand.
//
// token is the resume-once identifier the host is expected to echo back
// verbatim inside $resume (ResumeState.Token); Run checks it against the
// conductor's pending set before honoring the resume.
func adoptResume(params any) (resumeState int, stack []Frame, rest any, resumed bool, token string, err error) {
	box, ok := params.(map[string]any)
	if !ok {
		return 0, nil, params, false, "", nil
	}
	raw, ok := box["$resume"]
	if !ok {
		return 0, nil, params, false, "", nil
	}

	data, marshalErr := json.Marshal(map[string]any{"$resume": raw})
	if marshalErr != nil {
		return 0, nil, nil, false, "", newProtocolError("adoptResume", 400, ErrMalformedResume)
	}
	var wrapper resumeWrapper
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return 0, nil, nil, false, "", newProtocolError("adoptResume", 400, ErrMalformedResume)
	}

	rest = stripResume(box)
	return wrapper.Resume.State, wrapper.Resume.Stack, rest, true, wrapper.Resume.Token, nil
}

func stripResume(box map[string]any) map[string]any {
	out := make(map[string]any, len(box))
	for k, v := range box {
		if k == "$resume" {
			continue
		}
		out[k] = v
	}
	return out
}
