package ui

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMainMenu_Hit(t *testing.T) {
	m := NewMainMenu("STARFIELD", 1, 2, 800, 600)

	tests := []struct {
		name string
		p    image.Point
		want MenuChoice
	}{
		{"Play 中心", m.Play.Bounds.Min.Add(image.Pt(ButtonWidth/2, ButtonHeight/2)), ChoicePlay},
		{"Quit 左上角", m.Quit.Bounds.Min, ChoiceQuit},
		{"Quit 右下边界外", m.Quit.Bounds.Max, ChoiceNone},
		{"屏幕角落", image.Pt(0, 0), ChoiceNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Hit(tt.p))
		})
	}
}

func TestMainMenu_LayoutCentered(t *testing.T) {
	m := NewMainMenu("STARFIELD", 1, 2, 800, 600)
	assert.Equal(t, 300, m.Play.Bounds.Min.X)
	assert.False(t, m.Play.Bounds.Overlaps(m.Quit.Bounds))

	m.Layout(1280, 720)
	assert.Equal(t, (1280-ButtonWidth)/2, m.Quit.Bounds.Min.X)
	assert.Less(t, m.Play.Bounds.Max.Y, m.Quit.Bounds.Min.Y)
}

func TestMainMenu_Draw(t *testing.T) {
	m := NewMainMenu("STARFIELD", 7, 8, 800, 600)
	rec := &RecordingSprites{}
	m.Draw(rec)

	require.Len(t, rec.Calls, 5)
	assert.Equal(t, "STARFIELD", rec.Calls[0].Text)
	assert.EqualValues(t, 7, rec.Calls[1].Texture)
	assert.Equal(t, "PLAY", rec.Calls[2].Text)
	assert.EqualValues(t, 8, rec.Calls[3].Texture)
	assert.Equal(t, "QUIT", rec.Calls[4].Text)
}
