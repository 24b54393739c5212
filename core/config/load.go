package config

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log"
	"path/filepath"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Load loads the configuration from the directory.
func Load(path string) (*Configuration, error) {
	// If given the path to a config.yaml file, move back up a level.
	if filepath.Base(path) == ConfigurationName {
		path = filepath.Dir(path)
	}

	out, err := LoadFs(afero.NewBasePathFs(afero.NewOsFs(), path))
	if err != nil {
		return nil, err
	}
	out.configDir = path
	return out, nil
}

// LoadFs loads the configuration from the root of fs.
func LoadFs(fs afero.Fs) (*Configuration, error) {
	configContents, err := afero.ReadFile(fs, ConfigurationName)
	if err != nil {
		return nil, err
	}
	var out Configuration
	if err := yaml.UnmarshalStrict(configContents, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", ConfigurationName, err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ConfigurationName, err)
	}
	out.configFs = fs
	return &out, nil
}

// Initialize writes the default configuration and a new host key to path.
// Existing files are kept.
func Initialize(path string, logger *log.Logger) error {
	return InitializeFs(afero.NewBasePathFs(afero.NewOsFs(), path), logger)
}

// InitializeFs writes the default configuration and a new host key to the
// root of fs.
func InitializeFs(fs afero.Fs, logger *log.Logger) error {
	if err := fs.MkdirAll("/", 0700); err != nil {
		return err
	}

	if err := writeIfMissing(fs, logger, ConfigurationName, func() ([]byte, error) {
		return defaultConfigData, nil
	}); err != nil {
		return err
	}

	cfg, err := LoadFs(fs)
	if err != nil {
		return err
	}

	return writeIfMissing(fs, logger, cfg.HostKeyPath, generateHostKey)
}

func writeIfMissing(fs afero.Fs, logger *log.Logger, name string, contents func() ([]byte, error)) error {
	switch exists, err := afero.Exists(fs, name); {
	case err != nil:
		return err
	case exists:
		logger.Printf("- %s exists, skipping\n", name)
		return nil
	}

	data, err := contents()
	if err != nil {
		return err
	}
	logger.Printf("- writing %s\n", name)
	return afero.WriteFile(fs, name, data, 0600)
}

func generateHostKey() ([]byte, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}), nil
}
