package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigManager_WritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	t.Setenv("RSCODEC_CONFIG", path)

	cm, err := NewConfigManager()
	require.NoError(t, err)
	assert.Equal(t, path, cm.Path())

	cfg := cm.GetConfig()
	assert.Equal(t, 19, cfg.Defaults.GeneratorPoly)
	assert.Equal(t, 15, cfg.Defaults.BlockSize)
	assert.Equal(t, 11, cfg.Defaults.MessageSize)
	assert.Equal(t, 1000, cfg.Trial.Runs)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigManager_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cm, err := NewConfigManagerAt(path)
	require.NoError(t, err)

	cfg := cm.GetConfig()
	cfg.Defaults.GeneratorPoly = 285
	cfg.Defaults.BlockSize = 255
	cfg.Defaults.MessageSize = 223
	cfg.Trial.Workers = 4
	require.NoError(t, cm.SaveConfig())

	reloaded, err := NewConfigManagerAt(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, reloaded.GetConfig())
}

func TestConfigManager_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"defaults":{"generator_poly":285,"block_size":40,"message_size":30}}`), 0600))

	cm, err := NewConfigManagerAt(path)
	require.NoError(t, err)

	cfg := cm.GetConfig()
	assert.Equal(t, 285, cfg.Defaults.GeneratorPoly)
	assert.Equal(t, 1000, cfg.Trial.Runs)
	assert.True(t, cfg.UI.UseColor)
}

func TestConfigManager_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := NewConfigManagerAt(path)
	assert.Error(t, err)
}

func TestConfigManager_Profiles(t *testing.T) {
	cm, err := NewConfigManagerAt(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)

	ccsds := &Profile{
		Name:        "ccsds",
		Description: "RS(255,223)",
		Codec:       CodecSettings{GeneratorPoly: 391, FirstRoot: 112, BlockSize: 255, MessageSize: 223},
	}
	small := &Profile{
		Name:  "gf16",
		Codec: CodecSettings{GeneratorPoly: 19, BlockSize: 15, MessageSize: 11},
	}
	require.NoError(t, cm.AddProfile(small))
	require.NoError(t, cm.AddProfile(ccsds))

	got, err := cm.GetProfile("ccsds")
	require.NoError(t, err)
	assert.Equal(t, 112, got.Codec.FirstRoot)

	list := cm.ListProfiles()
	require.Len(t, list, 2)
	assert.Equal(t, "ccsds", list[0].Name)
	assert.Equal(t, "gf16", list[1].Name)

	reloaded, err := NewConfigManagerAt(cm.Path())
	require.NoError(t, err)
	assert.Len(t, reloaded.ListProfiles(), 2)

	require.NoError(t, reloaded.DeleteProfile("gf16"))
	_, err = reloaded.GetProfile("gf16")
	assert.ErrorIs(t, err, ErrProfileNotFound)
	assert.ErrorIs(t, reloaded.DeleteProfile("gf16"), ErrProfileNotFound)

	assert.Error(t, cm.AddProfile(&Profile{Codec: small.Codec}))
	assert.Error(t, cm.AddProfile(&Profile{Name: "bad", Codec: CodecSettings{GeneratorPoly: 18, BlockSize: 15, MessageSize: 11}}))
}

func TestApplyDefaults(t *testing.T) {
	cm, err := NewConfigManagerAt(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)

	settings := CodecSettings{BlockSize: 12, FirstRoot: 0}
	cm.ApplyDefaults(&settings)
	assert.Equal(t, CodecSettings{GeneratorPoly: 19, FirstRoot: 0, BlockSize: 12, MessageSize: 11}, settings)

	tc := cm.TrialConfig(settings)
	assert.Equal(t, 19, tc.GeneratorPoly)
	assert.Equal(t, 1000, tc.Runs)
	assert.Equal(t, uint64(1), tc.Seed)
	assert.NoError(t, tc.Validate())
}

func TestValidateCodec(t *testing.T) {
	tests := []struct {
		name      string
		settings  CodecSettings
		wantError bool
	}{
		{"Valid", CodecSettings{GeneratorPoly: 19, BlockSize: 15, MessageSize: 11}, false},
		{"Even polynomial", CodecSettings{GeneratorPoly: 20, BlockSize: 15, MessageSize: 11}, true},
		{"Missing polynomial", CodecSettings{BlockSize: 15, MessageSize: 11}, true},
		{"Empty message", CodecSettings{GeneratorPoly: 19, BlockSize: 15}, true},
		{"No parity", CodecSettings{GeneratorPoly: 19, BlockSize: 11, MessageSize: 11}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCodec(tt.settings)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateVerbosity(t *testing.T) {
	for _, v := range []string{"", VerbosityQuiet, VerbosityNormal, VerbosityVerbose} {
		assert.NoError(t, ValidateVerbosity(v), "verbosity %q", v)
	}
	assert.ErrorIs(t, ValidateVerbosity("debug"), ErrVerbosity)
	assert.Equal(t, VerbosityNormal, DefaultConfig().UI.Verbosity)
}
