package tui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/pders01/crate/internal/config"
)

func TestBannerString(t *testing.T) {
	tests := []struct {
		version string
		want    []string
		absent  []string
	}{
		{"1.0.0-test", []string{"Album Catalog", "v1.0.0-test", "╔", "╝", "◆"}, nil},
		{"dev", []string{"Album Catalog"}, []string{"vdev"}},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			out := BannerString(tt.version)
			for _, s := range tt.want {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestCompactBannerAndWelcome(t *testing.T) {
	out := GetCompactBanner("scan first")
	assert.Contains(t, out, "scan first")
	assert.Contains(t, out, "▄████▄")

	assert.Contains(t, GetWelcomeMessage(), "ctrl+r to scan the library")
	assert.Len(t, LogoLines, len(BannerColors))
}

func TestApplyTheme(t *testing.T) {
	primary, muted := PrimaryColor, MutedColor
	t.Cleanup(func() {
		PrimaryColor, MutedColor = primary, muted
		buildStyles()
	})

	ApplyTheme(config.UIColors{Primary: "#000001"})

	assert.Equal(t, lipgloss.Color("#000001"), PrimaryColor)
	assert.Equal(t, muted, MutedColor, "empty entries keep the built-in color")
	assert.Equal(t, lipgloss.TerminalColor(lipgloss.Color("#000001")), LogoStyle.GetForeground())
}
