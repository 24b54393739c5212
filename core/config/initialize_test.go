package config

import (
	"bytes"
	"encoding/pem"
	"io/ioutil"
	"log"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	tempDir := t.TempDir()
	if err := Initialize(tempDir, log.New(ioutil.Discard, "", 0)); err != nil {
		t.Fatal(err)
	}

	// Check that the config is valid
	cfg, err := Load(filepath.Join(tempDir, ConfigurationName))
	if err != nil {
		t.Fatal(err)
	}

	t.Run("OpenAppLog", func(t *testing.T) {
		fd, err := cfg.OpenAppLog()
		assert.Nil(t, err)
		fd.Close()
	})

	t.Run("OpenEventLog", func(t *testing.T) {
		fd, err := cfg.OpenEventLog()
		require.NoError(t, err)
		_, err = fd.Write([]byte("{}\n"))
		assert.NoError(t, err)
		fd.Close()

		fd, err = cfg.ReadEventLog()
		require.NoError(t, err)
		defer fd.Close()
		data, err := ioutil.ReadAll(fd)
		assert.NoError(t, err)
		assert.Equal(t, "{}\n", string(data))
	})

	t.Run("HostKeyPem", func(t *testing.T) {
		keyPem, err := cfg.HostKeyPem()
		require.NoError(t, err)

		block, _ := pem.Decode(keyPem)
		require.NotNil(t, block)
		assert.Equal(t, "RSA PRIVATE KEY", block.Type)
	})
}

func TestInitializeFs_keepsExisting(t *testing.T) {
	fs := afero.NewMemMapFs()
	custom := bytes.Replace(defaultConfigData, []byte("hostname: localhost"), []byte("hostname: example"), 1)
	require.NoError(t, afero.WriteFile(fs, ConfigurationName, custom, 0600))

	var logs bytes.Buffer
	require.NoError(t, InitializeFs(fs, log.New(&logs, "", 0)))
	assert.Contains(t, logs.String(), "- config.yaml exists, skipping\n")
	assert.Contains(t, logs.String(), "- writing private_key\n")

	cfg, err := LoadFs(fs)
	require.NoError(t, err)
	assert.Equal(t, "example", cfg.Shell.Hostname)

	key, err := cfg.HostKeyPem()
	require.NoError(t, err)

	// A second run changes nothing.
	require.NoError(t, InitializeFs(fs, log.New(ioutil.Discard, "", 0)))
	again, err := cfg.HostKeyPem()
	require.NoError(t, err)
	assert.Equal(t, key, again)
}

func TestLoadFs_invalid(t *testing.T) {
	cases := map[string]string{
		"unknown-field": "unknown: true\n",
		"invalid":       string(bytes.Replace(defaultConfigData, []byte("pipe_buffer_size: 65536"), []byte("pipe_buffer_size: 0"), 1)),
	}

	for tn, contents := range cases {
		t.Run(tn, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, ConfigurationName, []byte(contents), 0600))

			_, err := LoadFs(fs)
			assert.Error(t, err)
		})
	}

	_, err := LoadFs(afero.NewMemMapFs())
	assert.Error(t, err)
}
