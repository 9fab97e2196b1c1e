package repo

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/renameio"
)

const configFileName = "config.toml"

// Config stores repository-local settings, persisted as .ugit/config.toml.
type Config struct {
	Core    CoreConfig              `toml:"core"`
	Merge   MergeConfig             `toml:"merge"`
	Log     LogConfig               `toml:"log"`
	Remotes map[string]RemoteConfig `toml:"remote,omitempty"`
}

type CoreConfig struct {
	DefaultBranch string   `toml:"default_branch"`
	Ignore        []string `toml:"ignore"`
}

// MergeConfig selects the text-merge primitive: "builtin" or "external".
type MergeConfig struct {
	Tool         string `toml:"tool"`
	Diff3Command string `toml:"diff3_command,omitempty"`
	DiffCommand  string `toml:"diff_command,omitempty"`
}

type LogConfig struct {
	Level string `toml:"level,omitempty"`
}

// RemoteConfig names a peer repository by its working tree path.
type RemoteConfig struct {
	Path string `toml:"path"`
}

// DefaultIgnore are the patterns ignored by a fresh repository.
var DefaultIgnore = []string{
	"*.ipynb",
	".ipynb_checkpoints",
	".gitignore",
	"ugit.egg-info",
}

// DefaultConfig returns the settings of a freshly initialized repository.
func DefaultConfig() *Config {
	return &Config{
		Core: CoreConfig{
			DefaultBranch: "master",
			Ignore:        append([]string(nil), DefaultIgnore...),
		},
		Merge:   MergeConfig{Tool: "builtin"},
		Remotes: make(map[string]RemoteConfig),
	}
}

func configPath(dir string) string {
	return filepath.Join(dir, configFileName)
}

// ReadConfig reads the config in the store directory dir. Keys missing from
// the file keep their default values; a missing file yields the defaults.
func ReadConfig(dir string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(configPath(dir), cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if strings.TrimSpace(cfg.Core.DefaultBranch) == "" {
		cfg.Core.DefaultBranch = "master"
	}
	if cfg.Remotes == nil {
		cfg.Remotes = make(map[string]RemoteConfig)
	}
	return cfg, nil
}

// WriteConfig atomically writes cfg into the store directory dir.
func WriteConfig(dir string, cfg *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: encode: %w", err)
	}
	if err := renameio.WriteFile(configPath(dir), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SaveConfig persists r.Config and reloads the merge tool from it.
func (r *Repo) SaveConfig() error {
	if err := WriteConfig(r.Dir, r.Config); err != nil {
		return err
	}
	return r.loadTool()
}

// SetRemote stores or updates a named remote.
func (r *Repo) SetRemote(name, path string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("set remote: remote name is required")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("set remote: remote path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("set remote: %w", err)
	}
	r.Config.Remotes[name] = RemoteConfig{Path: abs}
	return r.SaveConfig()
}

// RemotePath returns the configured path for the given remote name.
func (r *Repo) RemotePath(name string) (string, error) {
	rc, ok := r.Config.Remotes[strings.TrimSpace(name)]
	if !ok || strings.TrimSpace(rc.Path) == "" {
		return "", fmt.Errorf("remote %q is not configured", name)
	}
	return rc.Path, nil
}

// RemoteNames returns the configured remote names, sorted.
func (r *Repo) RemoteNames() []string {
	names := make([]string, 0, len(r.Config.Remotes))
	for name := range r.Config.Remotes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
