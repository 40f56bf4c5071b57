package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "keeps allowed flag with value",
			args:    []string{"-a", ":8080", "-x", "junk"},
			allowed: []string{"-a"},
			want:    []string{"-a", ":8080"},
		},
		{
			name:    "keeps equals form",
			args:    []string{"-a=:8080", "--b=postgres", "-z=1"},
			allowed: []string{"-a", "--b"},
			want:    []string{"-a=:8080", "--b=postgres"},
		},
		{
			name:    "flag without value at end",
			args:    []string{"-d", "-a"},
			allowed: []string{"-a", "-d"},
			want:    []string{"-d", "-a"},
		},
		{
			name:    "nothing allowed",
			args:    []string{"-a", "1", "-b", "2"},
			allowed: []string{},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("long form", func(t *testing.T) {
		os.Args = []string{"bin", "-config", "/tmp/cfg.json", "-a", ":8080"}
		assert.Equal(t, "/tmp/cfg.json", JsonConfigFlags())
	})

	t.Run("short form", func(t *testing.T) {
		os.Args = []string{"bin", "-c", "cfg.json"}
		assert.Equal(t, "cfg.json", JsonConfigFlags())
	})

	t.Run("absent", func(t *testing.T) {
		os.Args = []string{"bin"}
		assert.Equal(t, "", JsonConfigFlags())
	})
}
