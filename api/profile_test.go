package api

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProfileIsValid(t *testing.T) {
	p := DefaultProfile()
	require.NoError(t, p.Validate())
	assert.Equal(t, 5000, p.BatchSize)
	assert.Equal(t, 1000, p.YieldEvery)
	assert.False(t, p.CaseFold)
}

func TestParseProfile_HCL(t *testing.T) {
	src := `
delimiter   = ";"
batch_size  = 100
case_fold   = true
marker      = ""
terminator  = "\r\n"

labels {
  match    = "present"
  no_match = "absent"
}
`
	p, err := ParseProfile("profile.hcl", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, ";", p.Delimiter)
	assert.Equal(t, 100, p.BatchSize)
	assert.True(t, p.CaseFold)
	assert.Equal(t, "", p.Marker, "explicit empty marker disables the prefix")
	assert.Equal(t, "\r\n", p.Terminator)
	assert.Equal(t, "present", p.Labels.Match)
	assert.Equal(t, "absent", p.Labels.NoMatch)
	assert.Equal(t, "pending", p.Labels.Pending, "unset label keeps default")
	assert.Equal(t, 1000, p.YieldEvery, "unset attribute keeps default")
}

func TestParseProfile_JSONMatchesHCL(t *testing.T) {
	hclSrc := `
delimiter = "\t"
workers   = 4
json_path = "$.uuid"
`
	jsonSrc := `{"delimiter": "\t", "workers": 4, "json_path": "$.uuid"}`

	fromHCL, err := ParseProfile("p.hcl", []byte(hclSrc))
	require.NoError(t, err)
	fromJSON, err := ParseProfile("p.json", []byte(jsonSrc))
	require.NoError(t, err)
	assert.Equal(t, fromHCL, fromJSON)
	assert.Equal(t, 4, fromJSON.Workers)
}

func TestParseProfile_Invalid(t *testing.T) {
	t.Run("bad value", func(t *testing.T) {
		_, err := ParseProfile("p.hcl", []byte(`batch_size = 0`))
		require.ErrorIs(t, err, ErrInvalidProfile)
	})

	t.Run("bad terminator", func(t *testing.T) {
		_, err := ParseProfile("p.hcl", []byte(`terminator = ";"`))
		require.ErrorIs(t, err, ErrInvalidProfile)
	})

	t.Run("marker not utf-8", func(t *testing.T) {
		p := DefaultProfile()
		p.Marker = "\xff"
		require.ErrorIs(t, p.Validate(), ErrInvalidProfile)
	})

	t.Run("unknown attribute", func(t *testing.T) {
		_, err := ParseProfile("p.hcl", []byte(`colour = "blue"`))
		require.Error(t, err)
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := ParseProfile("p.hcl", []byte(`delimiter = `))
		require.Error(t, err)
	})
}

func TestParseProfile_MarkerWithClassMetacharacters(t *testing.T) {
	p, err := ParseProfile("p.hcl", []byte(`marker = "+-#"`))
	require.NoError(t, err)
	assert.Equal(t, "+-#", p.Marker)
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "idsieve.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`cache_size = 16`), 0o644))

	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, 16, p.CacheSize)

	_, err = LoadProfile(filepath.Join(dir, "missing.hcl"))
	require.Error(t, err)
}
