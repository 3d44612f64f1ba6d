package ingest

import (
	"os/exec"
	"strings"
)

// headCommit returns the current HEAD commit hash for root, or "" when root
// is not a git repository (analyze still succeeds without it). Shells out
// to git rather than vendoring a git implementation.
func headCommit(root string) string {
	cmd := exec.Command("git", "rev-parse", "HEAD")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
