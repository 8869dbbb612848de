package stage

import (
	"fmt"
	"os"
	"os/exec"
)

// Tool names as they appear on $PATH.
const (
	ToolSubfinder = "subfinder"
	ToolHTTPX     = "httpx"
	ToolNuclei    = "nuclei"
)

// Tool is one external executable and where to find it.
type Tool struct {
	// Name is the executable name looked up on $PATH.
	Name string

	// Path is an explicit location that takes precedence over $PATH.
	Path string

	// InstallHint tells the operator how to install the tool.
	InstallHint string
}

// DefaultTools returns the three tools of the chain in execution order.
func DefaultTools() []Tool {
	return []Tool{
		{Name: ToolSubfinder, InstallHint: "go install -v github.com/projectdiscovery/subfinder/v2/cmd/subfinder@latest"},
		{Name: ToolHTTPX, InstallHint: "go install -v github.com/projectdiscovery/httpx/cmd/httpx@latest"},
		{Name: ToolNuclei, InstallHint: "go install -v github.com/projectdiscovery/nuclei/v3/cmd/nuclei@latest"},
	}
}

// Resolve returns the executable path of the tool.
// An explicit Path is used as-is when it exists; otherwise Name is looked up on $PATH.
func (t Tool) Resolve() (string, error) {
	if t.Path != "" {
		info, err := os.Stat(t.Path)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %s", ErrToolNotFound, t.Name, t.Path)
		}
		if info.IsDir() {
			return "", fmt.Errorf("%w: %s: %s is a directory", ErrToolNotFound, t.Name, t.Path)
		}
		return t.Path, nil
	}

	path, err := exec.LookPath(t.Name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, t.Name)
	}
	return path, nil
}

// ToolStatus is the outcome of resolving one tool.
type ToolStatus struct {
	Tool Tool
	Path string
	Err  error
}

// Found reports whether the tool was resolved.
func (s ToolStatus) Found() bool {
	return s.Err == nil
}

// CheckTools resolves every tool. It returns one status per tool, in order,
// and a *MissingToolsError naming all unresolved tools, or nil when all were found.
func CheckTools(tools []Tool) ([]ToolStatus, error) {
	statuses := make([]ToolStatus, 0, len(tools))
	var missing []string

	for _, t := range tools {
		path, err := t.Resolve()
		statuses = append(statuses, ToolStatus{Tool: t, Path: path, Err: err})
		if err != nil {
			missing = append(missing, t.Name)
		}
	}

	if len(missing) > 0 {
		return statuses, &MissingToolsError{Names: missing}
	}
	return statuses, nil
}

// Paths maps tool names to resolved paths for the statuses that were found.
func Paths(statuses []ToolStatus) map[string]string {
	paths := make(map[string]string, len(statuses))
	for _, s := range statuses {
		if s.Found() {
			paths[s.Tool.Name] = s.Path
		}
	}
	return paths
}
