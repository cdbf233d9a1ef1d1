package panorama

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettingsMerge(t *testing.T) {
	global := Settings{ImageURL: "global.jpg", ImageWidth: 4000}
	perSurface := Settings{ImageHeight: 2000, Ratio: 2}

	got := DefaultSettings.Merge(global).Merge(perSurface)
	assert.Equal(t, Settings{
		ImageURL:            "global.jpg",
		ImageWidth:          4000,
		ImageHeight:         2000,
		VerticalResizeRatio: 1.2,
		Ratio:               2,
	}, got)

	// zero values never override
	assert.Equal(t, DefaultSettings, DefaultSettings.Merge(Settings{}))
}

func TestComputeSizing(t *testing.T) {
	tests := []struct {
		name     string
		viewport float64
		settings Settings
		want     Sizing
		wantBgW  float64
		wantBgH  float64
	}{
		{
			name:     "defaults",
			viewport: 1000,
			settings: DefaultSettings,
			want:     Sizing{ResizeWidth: 3600, ResizeHeight: 1200, Ratio: 1},
			wantBgW:  3600,
			wantBgH:  1200,
		},
		{
			name:     "ratio doubles both axes",
			viewport: 500,
			settings: DefaultSettings.Merge(Settings{Ratio: 2}),
			want:     Sizing{ResizeWidth: 7200, ResizeHeight: 1200, Ratio: 2},
			wantBgW:  7200,
			wantBgH:  600,
		},
		{
			name:     "square image",
			viewport: 800,
			settings: Settings{ImageWidth: 1000, ImageHeight: 1000, VerticalResizeRatio: 1.5, Ratio: 1},
			want:     Sizing{ResizeWidth: 1200, ResizeHeight: 1200, Ratio: 1},
			wantBgW:  1200,
			wantBgH:  1200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeSizing(tt.viewport, tt.settings)
			assert.InDelta(t, tt.want.ResizeWidth, got.ResizeWidth, 1e-9)
			assert.InDelta(t, tt.want.ResizeHeight, got.ResizeHeight, 1e-9)
			assert.Equal(t, tt.want.Ratio, got.Ratio)

			w, h := got.BackgroundSize()
			assert.InDelta(t, tt.wantBgW, w, 1e-9)
			assert.InDelta(t, tt.wantBgH, h, 1e-9)
		})
	}
}

func TestSurfaceStyle(t *testing.T) {
	sf := &Surface{Name: "s", Sizing: Sizing{ResizeWidth: 7200, ResizeHeight: 1200, Ratio: 2}}
	sf.offset = Offset{X: -42, Y: -99.5}
	assert.Equal(t, Style{
		BackgroundPositionX: "-42px",
		BackgroundPositionY: "-99.5px",
		BackgroundSize:      "7200px 600px",
	}, sf.Style())
}
