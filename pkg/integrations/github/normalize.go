package github

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/matzehuels/repoexplorer/pkg/repo"
)

// Normalize converts a raw node into a Repository. It never fails:
//
//   - a missing or null description stays nil
//   - a missing, null or nameless primaryLanguage becomes nil
//   - a missing, non-numeric or negative count becomes 0
//   - a missing or unparsable updatedAt becomes the zero time
//
// A defaulted count is indistinguishable from a real zero.
func Normalize(node RawNode) repo.Repository {
	r := repo.Repository{
		ID:             stringField(node, "id"),
		Name:           stringField(node, "name"),
		URL:            stringField(node, "url"),
		StargazerCount: countField(node, "stargazerCount"),
		ForkCount:      countField(node, "forkCount"),
		UpdatedAt:      timeField(node, "updatedAt"),
	}
	if s, ok := node["description"].(string); ok {
		r.Description = &s
	}
	if lang, ok := node["primaryLanguage"].(map[string]any); ok {
		if name, ok := lang["name"].(string); ok && name != "" {
			r.PrimaryLanguage = &repo.Language{Name: name}
		}
	}
	return r
}

// NormalizeAll normalizes nodes preserving their order.
func NormalizeAll(nodes []RawNode) []repo.Repository {
	out := make([]repo.Repository, len(nodes))
	for i, n := range nodes {
		out[i] = Normalize(n)
	}
	return out
}

func stringField(node RawNode, key string) string {
	switch v := node[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func countField(node RawNode, key string) int {
	var f float64
	switch v := node[key].(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return clampCount(float64(i))
		}
		n, err := v.Float64()
		if err != nil {
			return 0
		}
		f = n
	case float64:
		f = v
	case int:
		f = float64(v)
	default:
		return 0
	}
	return clampCount(f)
}

func clampCount(f float64) int {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

func timeField(node RawNode, key string) time.Time {
	s, ok := node[key].(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
