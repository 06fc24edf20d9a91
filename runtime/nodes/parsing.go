package nodes

import (
	"encoding/json"
	"regexp"
	"sort"
)

var fencedJSONBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// parseLLMJSON robustly extracts a JSON object from an LLM's free-form text
// reply: fenced code blocks first, then a bare direct parse, then the
// largest candidate among every balanced {...} span, falling back to
// fallback if nothing parses. Ported from original_source's
// llm_nodes.parse_llm_json (fenced block / direct / regex-candidate /
// fallback strategy), adapted from Python's non-greedy regex to an
// explicit brace-balancing scan since Go's regexp lacks backreferences and
// non-greedy nested-brace matching.
func parseLLMJSON(text string, fallback map[string]any) map[string]any {
	for _, m := range fencedJSONBlock.FindAllStringSubmatch(text, -1) {
		if obj, ok := tryUnmarshalObject(m[1]); ok {
			return obj
		}
	}

	if obj, ok := tryUnmarshalObject(text); ok {
		return obj
	}

	candidates := balancedJSONCandidates(text)
	sort.Slice(candidates, func(i, j int) bool { return len(candidates[i]) > len(candidates[j]) })
	for _, cand := range candidates {
		if obj, ok := tryUnmarshalObject(cand); ok {
			return obj
		}
	}

	return fallback
}

func tryUnmarshalObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// balancedJSONCandidates scans text for every maximal brace-balanced
// substring starting at a '{' and returns them, largest-first candidates
// being retried first by the caller.
func balancedJSONCandidates(text string) []string {
	var candidates []string
	depth := 0
	start := -1
	for i, r := range text {
		switch r {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					candidates = append(candidates, text[start:i+1])
					start = -1
				}
			}
		}
	}
	return candidates
}
