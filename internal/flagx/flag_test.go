package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-c", "conf.yaml", "-a", ":3000"},
			allowedFlags: []string{"-c", "-config"},
			want:         []string{"-c", "conf.yaml"},
		},
		{
			name:         "flag with equals",
			args:         []string{"-config=alt.json", "-a", ":3000"},
			allowedFlags: []string{"-c", "-config"},
			want:         []string{"-config=alt.json"},
		},
		{
			name:         "unknown flags and positionals ignored",
			args:         []string{"-x", "1", "--y=2", "serve"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "trailing flag without value kept",
			args:         []string{"-d"},
			allowedFlags: []string{"-d"},
			want:         []string{"-d"},
		},
		{
			name:         "next dash-prefixed token is not a value",
			args:         []string{"-s", "-t", "10"},
			allowedFlags: []string{"-s", "-t"},
			want:         []string{"-s", "-t", "10"},
		},
		{
			name:         "several allowed flags keep order",
			args:         []string{"-a", ":3000", "-c", "conf.json", "--other", "x", "-d", "postgres://"},
			allowedFlags: []string{"-a", "-d"},
			want:         []string{"-a", ":3000", "-d", "postgres://"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short -c", func(t *testing.T) {
		os.Args = []string{"server", "-c", "/etc/secondmind.yaml"}
		assert.Equal(t, "/etc/secondmind.yaml", ConfigFileFlag())
	})

	t.Run("long -config mixed with server flags", func(t *testing.T) {
		os.Args = []string{"server", "-a", ":3000", "-config", "/etc/secondmind.json"}
		assert.Equal(t, "/etc/secondmind.json", ConfigFileFlag())
	})

	t.Run("absent", func(t *testing.T) {
		os.Args = []string{"server", "-a", ":3000"}
		assert.Empty(t, ConfigFileFlag())
	})

	t.Run("last wins", func(t *testing.T) {
		os.Args = []string{"server", "-c", "/a.json", "-config", "/b.json"}
		assert.Equal(t, "/b.json", ConfigFileFlag())
	})
}
