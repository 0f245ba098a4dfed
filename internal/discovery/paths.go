package discovery

import (
	"os"
	"path/filepath"
	"runtime"
)

// VaultRoots returns the platform-specific directories Flash Player
// keeps local shared objects under. Roots that do not exist are fine;
// the walker skips them.
func VaultRoots() []string {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return []string{filepath.Join(appdata, "Macromedia", "Flash Player")}
		}
		return nil
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		return []string{filepath.Join(home, "Library", "Preferences", "Macromedia", "Flash Player")}
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		return []string{filepath.Join(home, ".macromedia", "Flash_Player")}
	}
}

// ExplicitVault reports a bare file literally named "sol" in dir, a
// drop-in convention for inspecting a vault copied out of its normal
// location.
func ExplicitVault(dir string) (Candidate, bool) {
	path := filepath.Join(dir, "sol")
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return Candidate{}, false
	}
	return Candidate{Path: path, Filename: "sol", Size: info.Size()}, true
}
