package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment variables meant for the kit.
// WIREKIT_OPTIMIZER_INTERVAL addresses the same key as
// OPTIMIZER_INTERVAL and wins when both are set.
const EnvPrefix = "WIREKIT_"

// configBaseNames are tried per directory, the kit-named file first so
// a host can keep wirekit.yml separate from its own config.yml.
var configBaseNames = []string{"wirekit.yml", "config.yml"}

// FileSystem abstracts the file lookups the resolver makes, so tests
// can resolve against a fixed layout.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

type osFS struct{}

func (osFS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (osFS) LoadEnv(path string) error { return godotenv.Load(path) }

// Resolver locates the config and dotenv files for an application.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles is the outcome of a resolution pass. An empty field
// means no candidate existed.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns the explicit paths from opts when set and
// searches the conventional locations otherwise.
func (cr *Resolver) ResolveFiles(appName string, opts LoaderConfig) ResolvedFiles {
	r := ResolvedFiles{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	if r.ConfigFile == "" {
		r.ConfigFile = cr.findConfigFile(appName)
	}
	if r.EnvFile == "" {
		r.EnvFile = cr.findEnvFile(appName)
	}
	return r
}

func (cr *Resolver) findConfigFile(appName string) string {
	for _, dir := range searchDirs(appName) {
		for _, base := range configBaseNames {
			if path := dir + "/" + base; cr.FileSystem.Exists(path) {
				return path
			}
		}
	}
	return ""
}

// findEnvFile searches the same directories for an app-specific dotenv
// file, then a shared one.
func (cr *Resolver) findEnvFile(appName string) string {
	for _, name := range []string{".env." + appName, ".env"} {
		for _, dir := range searchDirs(appName) {
			if path := dir + "/" + name; cr.FileSystem.Exists(path) {
				return path
			}
		}
	}
	return ""
}

// searchDirs lists the directories a host conventionally keeps kit
// configuration in, nearest first: the binary's cmd directory, a config
// directory, then the working directory itself. Parent-relative entries
// cover tests and tools started from package subdirectories. For a
// hyphenated app name the final segment is tried as the cmd directory
// too, matching binaries named cmd/server for an app called
// billing-server.
func searchDirs(appName string) []string {
	short := appName
	if idx := strings.LastIndex(appName, "-"); idx != -1 {
		short = appName[idx+1:]
	}

	rels := []string{".", "..", "../.."}
	dirs := make([]string, 0, 4*len(rels))
	for _, rel := range rels {
		dirs = append(dirs, rel+"/cmd/"+appName)
		if short != appName {
			dirs = append(dirs, rel+"/cmd/"+short)
		}
	}
	for _, rel := range rels {
		dirs = append(dirs, rel+"/config")
	}
	return append(dirs, rels...)
}

// LoaderConfig carries the loader's dependencies and file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // explicit config file, skips the search
	EnvFile    string // explicit dotenv file, skips the search
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem routes the loader's file lookups through fs.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// LoadConfig fills cfg for the named application. Layering, lowest
// first: the config file (wirekit.yml or config.yml from a conventional
// location, or the WithConfigFile override), then a dotenv file, then
// the live environment. The loaded struct is not validated; call
// ApplyDefaults and Validate on it next.
func LoadConfig[C any](appName string, cfg *C, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = osFS{}
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(appName, lc)
	return loadResolved(appName, cfg, files, lc.FileSystem)
}

func loadResolved(appName string, cfg any, files ResolvedFiles, fs FileSystem) error {
	v := viper.New()

	// The file is the lowest layer. A missing or unreadable file is
	// not fatal; the environment alone can carry a full config.
	if files.ConfigFile != "" && fs.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			fmt.Printf("[config] warning: failed to load config file %s: %v\n", files.ConfigFile, err)
		}
	}

	v.AutomaticEnv()
	bindEnvironment(v)

	// A dotenv file feeds the process environment, so re-bind after
	// loading it.
	if files.EnvFile != "" && fs.Exists(files.EnvFile) {
		if err := fs.LoadEnv(files.EnvFile); err != nil {
			fmt.Printf("[config] warning: failed to load .env file %s: %v\n", files.EnvFile, err)
		} else {
			bindEnvironment(v)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for %s: %w", appName, err)
	}
	return nil
}

// bindEnvironment maps the process environment onto viper keys. Every
// variable binds its own expansions; a second pass binds the trimmed
// form of EnvPrefix-carrying variables, so the namespaced spelling wins
// when the environment holds both.
func bindEnvironment(v *viper.Viper) {
	for _, kv := range os.Environ() {
		if key, value, ok := strings.Cut(kv, "="); ok {
			bindVar(v, key, value)
		}
	}
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if trimmed, found := strings.CutPrefix(key, EnvPrefix); found && trimmed != "" {
			bindVar(v, trimmed, value)
		}
	}
}

func bindVar(v *viper.Viper, key, value string) {
	for _, k := range bindableKeys(key) {
		v.Set(k, value)
	}
}

// bindableKeys expands an environment variable name into every config
// key it can address. CONTAINER_PROMOTION_THRESHOLD yields
// container_promotion_threshold, container.promotion_threshold and
// container.promotion.threshold: each underscore is in turn treated as
// the boundary between nesting and a literal key.
func bindableKeys(envKey string) []string {
	parts := strings.Split(strings.ToLower(envKey), "_")

	keys := make([]string, 0, len(parts)+1)
	seen := make(map[string]bool, len(parts)+1)
	for cut := 0; cut <= len(parts); cut++ {
		head := strings.Join(parts[:cut], ".")
		tail := strings.Join(parts[cut:], "_")
		key := head
		switch {
		case head == "":
			key = tail
		case tail != "":
			key = head + "." + tail
		}
		if key != "" && !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}
