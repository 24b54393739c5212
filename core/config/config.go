package config

import (
	"crypto/subtle"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/josephlewis42/pipesh/core/shell"
	"github.com/josephlewis42/pipesh/core/vos"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

//go:embed default/config.yaml
var defaultConfigData []byte

const (
	ConfigurationName = "config.yaml"
	AppLogName        = "app.log"
)

type Configuration struct {
	configFs  afero.Fs
	configDir string

	Shell      Shell      `json:"shell"`
	Executor   Executor   `json:"executor"`
	Filesystem Filesystem `json:"filesystem"`

	SSHPort          int      `json:"ssh_port" validate:"gte=0,lte=65535"`
	HostKeyPath      string   `json:"host_key_path" validate:"required"`
	AllowAnyPassword bool     `json:"allow_any_password"`
	Passwords        []string `json:"passwords" validate:"unique"`
	EventLogName     string   `json:"event_log_name" validate:"required"`
}

// Shell holds the initial state of every session.
type Shell struct {
	Hostname string   `json:"hostname" validate:"required,hostname_rfc1123"`
	User     string   `json:"user" validate:"required"`
	Home     string   `json:"home" validate:"required,startswith=/"`
	Prompt   string   `json:"prompt"`
	Path     string   `json:"path"`
	Env      []string `json:"env" validate:"dive,contains=="`
}

// Executor holds the pipeline buffer sizes.
type Executor struct {
	PipeBufferSize  int `json:"pipe_buffer_size" validate:"gt=0"`
	StageBufferSize int `json:"stage_buffer_size" validate:"gte=0"`
}

// Configure applies the sizes to ex.
func (e *Executor) Configure(ex *shell.Executor) {
	ex.PipeCapacity = e.PipeBufferSize
	ex.WriteBufferSize = e.StageBufferSize
}

// Filesystem describes the virtual filesystem sessions start with.
type Filesystem struct {
	Directories []string `json:"directories" validate:"dive,startswith=/"`
	RootFS      string   `json:"root_fs"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

func (c *Configuration) fs() afero.Fs {
	return c.configFs
}

// CheckPassword reports whether password may log in.
func (c *Configuration) CheckPassword(password string) bool {
	if c.AllowAnyPassword {
		return true
	}
	for _, p := range c.Passwords {
		if subtle.ConstantTimeCompare([]byte(password), []byte(p)) == 1 {
			return true
		}
	}
	return false
}

// Environ returns the initial environment of a session.
func (c *Configuration) Environ() []string {
	env := []string{
		"HOME=" + c.Shell.Home,
		"USER=" + c.Shell.User,
		"HOSTNAME=" + c.Shell.Hostname,
		"PWD=" + c.Shell.Home,
	}
	if c.Shell.Path != "" {
		env = append(env, "PATH="+c.Shell.Path)
	}
	if c.Shell.Prompt != "" {
		env = append(env, "PS1="+c.Shell.Prompt)
	}
	return append(env, c.Shell.Env...)
}

// NewFS builds the filesystem a session starts with.
func (c *Configuration) NewFS() (vos.VFS, error) {
	dirs := append([]string{c.Shell.Home}, c.Filesystem.Directories...)
	if c.Filesystem.RootFS == "" {
		return vos.NewMemFS(dirs...)
	}

	root := c.Filesystem.RootFS
	if !filepath.IsAbs(root) {
		root = filepath.Join(c.configDir, root)
	}
	if info, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("root_fs: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("root_fs: %s is not a directory", root)
	}

	fs := vos.NewOverlayFS(root)
	for _, dir := range dirs {
		dir = vos.Resolve("/", dir)
		if isDir, _ := afero.IsDir(fs, dir); isDir {
			continue
		}
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	return fs, nil
}

// NewState creates the state of a new session, in the home directory.
func (c *Configuration) NewState() (*vos.State, error) {
	fs, err := c.NewFS()
	if err != nil {
		return nil, err
	}
	return vos.NewState(fs, c.Shell.Home, vos.NewMapEnvFromEnvList(c.Environ())), nil
}

// HostKeyPem returns the bytes of the SSH host key.
func (c *Configuration) HostKeyPem() ([]byte, error) {
	return afero.ReadFile(c.fs(), c.HostKeyPath)
}

// OpenAppLog opens the application log in an append only state.
func (c *Configuration) OpenAppLog() (afero.File, error) {
	return c.fs().OpenFile(AppLogName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// OpenEventLog opens the event log in an append only state.
func (c *Configuration) OpenEventLog() (afero.File, error) {
	return c.fs().OpenFile(c.EventLogName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// ReadEventLog opens the event log for reading.
func (c *Configuration) ReadEventLog() (afero.File, error) {
	return c.fs().OpenFile(c.EventLogName, os.O_RDONLY, 0600)
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}

// Default returns the built-in configuration, rooted at an in-memory
// directory.
func Default() *Configuration {
	out := defaultConfig()
	out.configFs = afero.NewMemMapFs()
	return out
}
