package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pour/internal/core/domain"
	"gopkg.in/yaml.v3"
)

func TestInternedString_SharesHandle(t *testing.T) {
	a := domain.NewInternedString("styles")
	b := domain.NewInternedString(string([]byte("styles")))

	assert.Equal(t, a.Value(), b.Value())
	assert.Equal(t, "styles", a.String())
	assert.NotEqual(t, a.Value(), domain.NewInternedString("scripts").Value())
}

func TestInternedString_Zero(t *testing.T) {
	var zero domain.InternedString

	assert.True(t, zero.IsZero())
	assert.Empty(t, zero.String())
	assert.False(t, domain.NewInternedString("").IsZero())
}

func TestInternedStrings_RoundTrip(t *testing.T) {
	names := []string{"css", "css", "optimise"}
	handles := domain.NewInternedStrings(names)

	require.Len(t, handles, 3)
	assert.Equal(t, handles[0].Value(), handles[1].Value())
	assert.Equal(t, names, domain.Strings(handles))
	assert.NotNil(t, domain.Strings(nil))
}

func TestInternedString_TextEncoding(t *testing.T) {
	type task struct {
		Name domain.InternedString   `json:"name" yaml:"name"`
		Deps []domain.InternedString `json:"deps" yaml:"deps"`
	}
	in := task{
		Name: domain.NewInternedString("build"),
		Deps: domain.NewInternedStrings([]string{"styles", "scripts"}),
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"build","deps":["styles","scripts"]}`, string(data))

	var fromJSON task
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	assert.Equal(t, in.Name.Value(), fromJSON.Name.Value())
	assert.Equal(t, []string{"styles", "scripts"}, domain.Strings(fromJSON.Deps))

	var fromYAML task
	require.NoError(t, yaml.Unmarshal([]byte("name: watch\ndeps: [build]\n"), &fromYAML))
	assert.Equal(t, "watch", fromYAML.Name.String())
	assert.Equal(t, []string{"build"}, domain.Strings(fromYAML.Deps))
}
