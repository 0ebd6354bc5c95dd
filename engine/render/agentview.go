package render

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/orcasim/planner/engine/core"
	"github.com/orcasim/planner/engine/obstacle"
)

// PlayerColors maps a PlayerID to a display color, replacing the donor
// engine's per-faction sprite palette now that agents are plain disks.
var PlayerColors = []color.RGBA{
	{220, 60, 60, 255},
	{60, 120, 220, 255},
	{60, 200, 100, 255},
	{230, 200, 60, 255},
	{180, 90, 220, 255},
	{60, 200, 200, 255},
}

func colorForPlayer(id int) color.RGBA {
	if id < 0 || len(PlayerColors) == 0 {
		return color.RGBA{200, 200, 200, 255}
	}
	return PlayerColors[id%len(PlayerColors)]
}

// AgentView draws every agent in the world as a filled disk with a short
// velocity vector, and the static obstacle segments as strokes underneath
// them. It replaces the donor engine's sprite-atlas entityrender.go: there
// is no unit art in this domain, so a disk-plus-heading is the whole visual
// vocabulary.
type AgentView struct {
	Camera    *Camera
	Obstacles []obstacle.Segment
}

// Draw renders obstacles then agents, in that order, so agents are never
// occluded by a wall segment.
func (v *AgentView) Draw(screen *ebiten.Image, w *core.World) {
	obColor := color.RGBA{90, 90, 90, 255}
	for _, seg := range v.Obstacles {
		x1, y1 := v.Camera.WorldToScreen(seg.A.X, seg.A.Y)
		x2, y2 := v.Camera.WorldToScreen(seg.B.X, seg.B.Y)
		vector.StrokeLine(screen, float32(x1), float32(y1), float32(x2), float32(y2), 2, obColor, false)
	}

	ids := w.Query(core.CompPosition, core.CompKinematic)
	for _, id := range ids {
		pos := w.Get(id, core.CompPosition).(*core.Position)
		kin := w.Get(id, core.CompKinematic).(*core.Kinematic)

		playerID := -1
		selected := false
		if c := w.Get(id, core.CompOwner); c != nil {
			playerID = c.(*core.Owner).PlayerID
		}
		if c := w.Get(id, core.CompSelectable); c != nil {
			selected = c.(*core.Selectable).Selected
		}

		cx, cy := v.Camera.WorldToScreen(pos.X, pos.Y)
		radiusPx := float32(kin.Radius * v.Camera.PixelsPerUnit * v.Camera.Zoom)
		if radiusPx < 2 {
			radiusPx = 2
		}
		clr := colorForPlayer(playerID)
		vector.DrawFilledCircle(screen, float32(cx), float32(cy), radiusPx, clr, false)

		if selected {
			vector.StrokeCircle(screen, float32(cx), float32(cy), radiusPx+2, 1.5, color.RGBA{255, 255, 255, 255}, false)
		}

		speed := math.Hypot(kin.Velocity[0], kin.Velocity[1])
		if speed > 1e-6 {
			hx, hy := v.Camera.WorldToScreen(pos.X+kin.Velocity[0], pos.Y+kin.Velocity[1])
			vector.StrokeLine(screen, float32(cx), float32(cy), float32(hx), float32(hy), 1.5, color.RGBA{20, 20, 20, 220}, false)
		}
	}
}
