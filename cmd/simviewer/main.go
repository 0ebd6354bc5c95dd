// Command simviewer is an interactive ebiten viewer over the ORCA
// simulation: pan/zoom camera, drag-select agents, right-click to issue a
// new goal to the selection. It replaces the donor engine's tile-based
// cmd/game with a viewer over continuous-space agents.
package main

import (
	"fmt"
	"image/color"
	"log"
	"log/slog"
	"math"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/orcasim/planner/engine/core"
	"github.com/orcasim/planner/engine/input"
	"github.com/orcasim/planner/engine/maplib"
	"github.com/orcasim/planner/engine/obstacle"
	"github.com/orcasim/planner/engine/pathfind"
	"github.com/orcasim/planner/engine/render"
	"github.com/orcasim/planner/engine/systems"
)

const (
	ScreenWidth  = 1280
	ScreenHeight = 720
	TickRate     = 60.0
	MapSize      = 40
)

// Game implements ebiten.Game.
type Game struct {
	camera   *render.Camera
	view     *render.AgentView
	tileMap  *maplib.TileMap
	gameLoop *core.GameLoop
	input    *input.InputState
	players  *core.PlayerManager
	eventBus *core.EventBus

	goalSys *systems.GoalSystem

	showGrid bool
}

func NewGame() *Game {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	tm := maplib.NewTileMap("demo", MapSize, MapSize, 1.0)
	for y := 15; y < 25; y++ {
		tm.SetBlocked(20, y, true)
	}

	segments := obstacle.ExtractSegments(tm)
	camera := render.NewCamera(ScreenWidth, ScreenHeight)
	camera.CenterOn(float64(MapSize)/2, float64(MapSize)/2)

	g := &Game{
		camera:   camera,
		view:     &render.AgentView{Camera: camera, Obstacles: segments},
		tileMap:  tm,
		gameLoop: core.NewGameLoop(TickRate),
		input:    input.NewInputState(),
		players:  core.NewPlayerManager(),
		eventBus: core.NewEventBus(),
	}

	g.players.AddPlayer(&core.Player{ID: 0, Name: "Player 1", TeamID: 0, Color: 0x3878DCFF})

	ng := pathfind.NewNavGrid(tm)
	g.goalSys = &systems.GoalSystem{NavGrid: ng, ReplanEvery: 60, WaypointRadius: 0.5, Logger: logger}
	mv := &systems.MovementSystem{
		CellSize:         2.0,
		SenseRange:       8.0,
		MaxNeighbors:     10,
		ObstacleSegments: segments,
		LookaheadRange:   3.0,
		Logger:           logger,
	}
	g.gameLoop.World.AddSystem(g.goalSys)
	g.gameLoop.World.AddSystem(mv)

	g.spawnDemoAgents()
	g.gameLoop.Play()
	return g
}

func (g *Game) spawnDemoAgents() {
	positions := [][2]float64{
		{5, 5}, {5, 8}, {5, 11}, {5, 14}, {8, 5}, {8, 8},
	}
	for _, pos := range positions {
		id := g.gameLoop.World.Spawn()
		g.gameLoop.World.Attach(id, &core.Position{X: pos[0], Y: pos[1]})
		g.gameLoop.World.Attach(id, &core.Kinematic{
			Radius:      0.4,
			MaxSpeed:    2.5,
			NeighborTau: 2.0,
			ObstacleTau: 2.0,
		})
		g.gameLoop.World.Attach(id, &core.Selectable{Radius: 0.4})
		g.gameLoop.World.Attach(id, &core.Owner{PlayerID: 0})
	}
}

func (g *Game) Update() error {
	g.input.Update()
	g.handleCamera()

	if g.input.IsKeyJustPressed(ebiten.KeyG) {
		g.showGrid = !g.showGrid
	}
	if g.input.IsKeyJustPressed(ebiten.KeySpace) {
		if g.gameLoop.State == core.StateRunning {
			g.gameLoop.Pause()
		} else {
			g.gameLoop.Play()
		}
	}

	wx, wy := g.camera.ScreenToWorld(g.input.MouseX, g.input.MouseY)

	if g.input.RightJustPressed {
		for _, id := range g.selectedAgents() {
			systems.SetGoal(g.gameLoop.World, id, int(math.Floor(wx)), int(math.Floor(wy)), 0)
		}
	}

	if g.input.LeftJustReleased && !g.input.Dragging {
		g.clickSelect(wx, wy, g.input.KeysPressed[ebiten.KeyShift])
	}
	if x1, y1, x2, y2, active := g.input.DragRect(); active {
		g.dragSelect(x1, y1, x2, y2)
	}

	g.gameLoop.Update()
	g.eventBus.Dispatch()
	return nil
}

func (g *Game) selectedAgents() []core.EntityID {
	var out []core.EntityID
	for _, id := range g.gameLoop.World.Query(core.CompSelectable) {
		if g.gameLoop.World.Get(id, core.CompSelectable).(*core.Selectable).Selected {
			out = append(out, id)
		}
	}
	return out
}

func (g *Game) clickSelect(wx, wy float64, shift bool) {
	if !shift {
		for _, id := range g.gameLoop.World.Query(core.CompSelectable) {
			g.gameLoop.World.Get(id, core.CompSelectable).(*core.Selectable).Selected = false
		}
	}
	for _, id := range g.gameLoop.World.Query(core.CompPosition, core.CompSelectable) {
		pos := g.gameLoop.World.Get(id, core.CompPosition).(*core.Position)
		if math.Hypot(pos.X-wx, pos.Y-wy) < 0.6 {
			sel := g.gameLoop.World.Get(id, core.CompSelectable).(*core.Selectable)
			sel.Selected = !sel.Selected
			break
		}
	}
}

func (g *Game) dragSelect(x1, y1, x2, y2 int) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	for _, id := range g.gameLoop.World.Query(core.CompPosition, core.CompSelectable) {
		pos := g.gameLoop.World.Get(id, core.CompPosition).(*core.Position)
		sx, sy := g.camera.WorldToScreen(pos.X, pos.Y)
		sel := g.gameLoop.World.Get(id, core.CompSelectable).(*core.Selectable)
		sel.Selected = int(sx) >= x1 && int(sx) <= x2 && int(sy) >= y1 && int(sy) <= y2
	}
}

func (g *Game) handleCamera() {
	speed := 300.0 / 60.0
	if g.input.KeysPressed[ebiten.KeyW] || g.input.KeysPressed[ebiten.KeyUp] {
		g.camera.Pan(0, -speed)
	}
	if g.input.KeysPressed[ebiten.KeyS] || g.input.KeysPressed[ebiten.KeyDown] {
		g.camera.Pan(0, speed)
	}
	if g.input.KeysPressed[ebiten.KeyA] || g.input.KeysPressed[ebiten.KeyLeft] {
		g.camera.Pan(-speed, 0)
	}
	if g.input.KeysPressed[ebiten.KeyD] || g.input.KeysPressed[ebiten.KeyRight] {
		g.camera.Pan(speed, 0)
	}
	if g.input.ScrollY != 0 {
		g.camera.ZoomAt(g.input.ScrollY*0.1, g.input.MouseX, g.input.MouseY)
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle) {
		g.camera.Pan(float64(-g.input.MouseDX), float64(-g.input.MouseDY))
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{20, 20, 30, 255})
	g.view.Draw(screen, g.gameLoop.World)

	info := fmt.Sprintf(
		"planner simviewer | FPS: %.0f | Tick: %d | Entities: %d\n"+
			"[WASD] Pan [Scroll] Zoom [LClick] Select [RClick] Set goal [Space] Pause [G] Grid",
		ebiten.ActualFPS(), g.gameLoop.CurrentTick(), g.gameLoop.World.EntityCount(),
	)
	ebitenutil.DebugPrint(screen, info)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}

func main() {
	ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
	ebiten.SetWindowTitle("planner simviewer")
	if err := ebiten.RunGame(NewGame()); err != nil {
		log.Fatal(err)
	}
}
