package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/reconchain/internal/model"
)

// DefaultBaseDir is the output root used when none is configured.
const DefaultBaseDir = "results"

// dirPerm is the permission for created run directories.
const dirPerm = 0750

// Initialize prepares the run directory for target under baseDir.
//
// The target is normalized (scheme and trailing slashes removed) and now is
// truncated to the second. The directory tree is created if missing; an
// existing directory is not an error. The returned paths are rooted at the
// run directory, which exists on disk when Initialize returns nil.
func Initialize(target, baseDir string, now time.Time) (*model.RunPaths, model.RunIdentity, error) {
	t, err := model.NewTarget(target)
	if err != nil {
		return nil, model.RunIdentity{}, fmt.Errorf("invalid target %q: %w", target, err)
	}

	if baseDir == "" {
		baseDir = DefaultBaseDir
	}

	identity := model.RunIdentity{
		Target:    t,
		CreatedAt: now.Truncate(time.Second),
	}

	paths := Layout(baseDir, identity)
	if err := os.MkdirAll(paths.RunDir, dirPerm); err != nil {
		return nil, model.RunIdentity{}, fmt.Errorf("failed to create run directory %s: %w", paths.RunDir, err)
	}

	return paths, identity, nil
}

// Layout computes the run paths for identity without touching the filesystem.
func Layout(baseDir string, identity model.RunIdentity) *model.RunPaths {
	targetDir := filepath.Join(baseDir, filepath.FromSlash(identity.Target.String()))
	runDir := filepath.Join(targetDir, identity.Timestamp())

	return &model.RunPaths{
		BaseDir:         baseDir,
		TargetDir:       targetDir,
		RunDir:          runDir,
		Subdomains:      filepath.Join(runDir, model.SubdomainsFile),
		LiveHosts:       filepath.Join(runDir, model.LiveHostsFile),
		Vulnerabilities: filepath.Join(runDir, model.VulnerabilitiesFile),
		Summary:         filepath.Join(runDir, model.SummaryFile),
	}
}

// Sibling returns the path of another file in the run directory,
// such as the optional Markdown summary.
func Sibling(paths *model.RunPaths, name string) string {
	return filepath.Join(paths.RunDir, name)
}
