package community

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// directoryStopSet excludes generic parent-directory basenames from the
// heuristic label vote.
var directoryStopSet = map[string]bool{
	"src": true, "lib": true, "core": true, "utils": true,
	"common": true, "shared": true, "helpers": true,
}

// heuristicLabel computes a Community's display label: the most
// frequent (stop-set-excluded) parent-directory basename among memberPaths,
// tie-broken by first occurrence; falling back to the longest common
// name-prefix (length > 2), else a numbered Cluster_<N> placeholder.
func heuristicLabel(n int, memberPaths []string, memberNames []string) string {
	counts := make(map[string]int)
	order := make(map[string]int)
	for i, p := range memberPaths {
		base := path.Base(path.Dir(p))
		if base == "" || base == "." || directoryStopSet[base] {
			continue
		}
		if _, seen := order[base]; !seen {
			order[base] = i
		}
		counts[base]++
	}

	if len(counts) > 0 {
		candidates := make([]string, 0, len(counts))
		for base := range counts {
			candidates = append(candidates, base)
		}
		sort.Slice(candidates, func(i, j int) bool {
			a, b := candidates[i], candidates[j]
			if counts[a] != counts[b] {
				return counts[a] > counts[b]
			}
			return order[a] < order[b]
		})
		return candidates[0]
	}

	if prefix := longestCommonPrefix(memberNames); len(prefix) > 2 {
		return prefix
	}

	return fmt.Sprintf("Cluster_%d", n)
}

// longestCommonPrefix returns the longest string prefix shared by every
// entry in names (empty if names is empty or there is no common prefix).
func longestCommonPrefix(names []string) string {
	if len(names) == 0 {
		return ""
	}
	prefix := names[0]
	for _, name := range names[1:] {
		for !strings.HasPrefix(name, prefix) {
			if prefix == "" {
				return ""
			}
			prefix = prefix[:len(prefix)-1]
		}
	}
	return prefix
}
