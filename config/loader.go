package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileSystem abstracts the file checks the loader performs.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem on the local disk.
type RealFileSystem struct{}

func (RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv loads a .env file into the process environment. Variables that
// are already set win.
func (RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver finds the config and env files for a service.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns the explicit paths from opts, searching standard
// locations for the ones left empty.
func (r *Resolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.first(configCandidates(serviceName))
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = r.first(envCandidates(serviceName))
	}
	return resolved
}

func (r *Resolver) first(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

func configCandidates(serviceName string) []string {
	var paths []string
	for _, dir := range searchDirs(serviceName) {
		paths = append(paths, dir+"config.yml", dir+"config.yaml")
	}
	return paths
}

func envCandidates(serviceName string) []string {
	var paths []string
	for _, name := range []string{".env." + serviceName, ".env"} {
		for _, dir := range searchDirs(serviceName) {
			paths = append(paths, dir+name)
		}
	}
	return paths
}

// searchDirs lists the service's cmd directory, then config/, then the
// working directory, each also looked up from one and two levels below.
func searchDirs(serviceName string) []string {
	var dirs []string
	for _, base := range []string{"cmd/" + serviceName + "/", "config/", ""} {
		for _, up := range []string{"./", "../", "../../"} {
			dirs = append(dirs, up+base)
		}
	}
	return dirs
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct env file path (optional)
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
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

// LoadConfig fills cfg from, in increasing precedence, the service's YAML
// file, its .env file and the process environment. Environment variables
// map onto nested keys by splitting on underscores, so LOGGING_MAX_AGE sets
// logging.max_age. Missing files are not an error; unreadable ones are.
func LoadConfig(serviceName string, cfg interface{}, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: RealFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}

	files := (&Resolver{FileSystem: lc.FileSystem}).ResolveFiles(serviceName, lc)

	v := viper.New()
	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", files.ConfigFile, err)
		}
	}
	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			return fmt.Errorf("load env file %s: %w", files.EnvFile, err)
		}
	}
	bindEnv(v, os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for service %s: %w", serviceName, err)
	}
	return nil
}

// bindEnv sets every KEY=value pair under each nested key it could name.
func bindEnv(v *viper.Viper, environ []string) {
	for _, env := range environ {
		key, value, ok := strings.Cut(env, "=")
		if !ok || key == "" {
			continue
		}
		for _, variant := range envKeyVariants(key) {
			v.Set(variant, value)
		}
	}
}

// envKeyVariants lists the viper keys an environment variable may name.
//
//	LOGGING_MAX_BODY_BYTES -> logging_max_body_bytes, logging.max.body.bytes,
//	                          logging.max_body_bytes, logging.max.body_bytes, ...
func envKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	if len(parts) == 1 {
		return []string{lower}
	}

	seen := make(map[string]struct{}, 2*len(parts))
	variants := make([]string, 0, 2*len(parts))
	add := func(s string) {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			variants = append(variants, s)
		}
	}

	add(lower)
	add(strings.Join(parts, "."))
	// Every split point: the head is nested with dots, the tail keeps its
	// underscores.
	for i := 1; i < len(parts); i++ {
		add(strings.Join(parts[:i], ".") + "." + strings.Join(parts[i:], "_"))
	}
	// Two-level split with an underscored head, e.g. cors_allowed.origins.
	for i := 1; i < len(parts); i++ {
		add(strings.Join(parts[:i], "_") + "." + strings.Join(parts[i:], "_"))
	}
	return variants
}
