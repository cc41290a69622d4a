// Package buildinfo holds build metadata injected with -ldflags, for
// example -X wiohid/internal/buildinfo.Version=v1.2.0.
package buildinfo

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Short returns a compact build identifier for window titles and logs.
func Short() string {
	switch {
	case Version != "" && Version != "dev":
		return Version
	case Commit != "" && Commit != "none":
		return Commit
	}
	return "dev"
}
