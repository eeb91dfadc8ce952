package conf

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDuration_JSONRoundTrip(t *testing.T) {
	d := Duration(90 * time.Second)

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(b))

	var back Duration
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, d, back)
}

func TestDuration_UnmarshalJSONNull(t *testing.T) {
	d := Duration(time.Minute)
	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.Zero(t, d)
}

func TestDuration_UnmarshalJSONInvalid(t *testing.T) {
	var d Duration
	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))
}

func TestDuration_YAML(t *testing.T) {
	var s struct {
		Timeout Duration `yaml:"timeout"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("timeout: 12s\n"), &s))
	assert.Equal(t, 12*time.Second, s.Timeout.Std())

	out, err := yaml.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(out), "12s")
}

func TestDuration_YAMLRejectsNonScalar(t *testing.T) {
	var s struct {
		Timeout Duration `yaml:"timeout"`
	}
	assert.Error(t, yaml.Unmarshal([]byte("timeout:\n  - 1s\n"), &s))
}

func TestDurationDecodeHook_ConvertsStrings(t *testing.T) {
	type target struct {
		Timeout Duration      `mapstructure:"timeout"`
		Wait    time.Duration `mapstructure:"wait"`
	}

	var out target
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: DurationDecodeHook(),
		Result:     &out,
	})
	require.NoError(t, err)

	require.NoError(t, dec.Decode(map[string]any{
		"timeout": "5s",
		"wait":    "2m",
	}))
	assert.Equal(t, 5*time.Second, out.Timeout.Std())
	assert.Equal(t, 2*time.Minute, out.Wait)
}

func TestDurationDecodeHook_RejectsBadString(t *testing.T) {
	type target struct {
		Timeout Duration `mapstructure:"timeout"`
	}
	var out target
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: DurationDecodeHook(),
		Result:     &out,
	})
	require.NoError(t, err)
	assert.Error(t, dec.Decode(map[string]any{"timeout": "soon"}))
}
