// Package testbed is the demo application that exercises the engine:
// a handful of rotating cubes queued through the ECS world's render
// sweep, a couple of stand-alone debug primitives queued directly
// through the façade, and a single particle emitter.
package testbed

import (
	"github.com/ironspire/engine/engine"
	"github.com/ironspire/engine/engine/core"
	"github.com/ironspire/engine/engine/ecs"
	"github.com/ironspire/engine/engine/facade"
	"github.com/ironspire/engine/engine/math"
	"github.com/ironspire/engine/engine/particle"
	"github.com/ironspire/engine/engine/renderqueue"
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	cubeEntities   []ecs.EntityID
	emitterEntity  ecs.EntityID
	debugSphere    renderqueue.MeshData
	rotateAxis     math.Vec3
}

func NewTestGame() (*TestGame, error) {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: &engine.ApplicationConfig{
				StartPosX:   100,
				StartPosY:   100,
				StartWidth:  1280,
				StartHeight: 720,
				Name:        "Ironspire Testbed",
				Vsync:       true,
				ClearColor:  math.Vec3{X: 0.125, Y: 0.125, Z: 0.125},
				FOVRadians:  45.0 * (3.14159265 / 180.0),
				NearClip:    0.1,
				FarClip:     1000.0,
			},
			State: &gameState{rotateAxis: math.NewVec3(0, 1, 0)},
		},
	}

	tg.FnBoot = tg.Boot
	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg, nil
}

func (g *TestGame) Boot(app *engine.Application) error {
	core.LogInfo("booting testbed...")
	return nil
}

// Initialize pushes a cube model into the default resource group and
// spawns three rotating cube entities plus a single particle emitter.
func (g *TestGame) Initialize(app *engine.Application) error {
	state := g.State.(*gameState)

	app.Camera.SetPosition(math.NewVec3(10.5, 5.0, 9.5))

	cubeMesh := renderqueue.NewCubeMesh(1, 1, 1)
	cubeModel := &facade.Model{
		Meshes:    []renderqueue.MeshData{cubeMesh},
		Materials: []renderqueue.MaterialInterface{{Color: math.NewVec3One(), Transparency: 1}},
	}
	modelID := app.Facade.PushModel(cubeModel)

	positions := []math.Vec3{
		math.NewVec3(0, 0, 0),
		math.NewVec3(2.5, 0, 0),
		math.NewVec3(-2.5, 0, 0),
	}
	for _, pos := range positions {
		id := app.World.CreateEntity()
		app.World.Transform(id).SetPosition(pos)
		app.World.SetRenderable(id, &ecs.Renderable{ModelID: modelID, Transparency: 1, DepthMask: true})
		state.cubeEntities = append(state.cubeEntities, id)
	}

	emitterID := app.World.CreateEntity()
	app.World.Transform(emitterID).SetPosition(math.NewVec3(0, 3, 0))
	app.World.SetParticleEmitter(emitterID, &ecs.ParticleEmitter{
		Emitter: particle.NewEmitter(256, particle.ConeDistribution(math.NewVec3(0, 1, 0), 0.3, 3.0), math.NewVec3(0, -2, 0), 2.0, 40.0, 1),
	})
	state.emitterEntity = emitterID

	state.debugSphere = renderqueue.NewSphereMesh(0.75, 8, 12)

	core.EventRegister(core.EventKeyPressed, g, g.onKey)
	core.EventRegister(core.EventKeyReleased, g, g.onKey)

	return nil
}

func (g *TestGame) Update(app *engine.Application, deltaTime float64) error {
	state := g.State.(*gameState)

	if core.InputIsKeyDown(core.KEY_LEFT) {
		app.Camera.Yaw(float32(1.0 * deltaTime))
	}
	if core.InputIsKeyDown(core.KEY_RIGHT) {
		app.Camera.Yaw(float32(-1.0 * deltaTime))
	}
	if core.InputIsKeyDown(core.KEY_W) {
		app.Camera.MoveForward(10.0 * float32(deltaTime))
	}
	if core.InputIsKeyDown(core.KEY_S) {
		app.Camera.MoveBackward(10.0 * float32(deltaTime))
	}

	rotation := math.NewQuatFromAxisAngle(state.rotateAxis, float32(0.5*deltaTime), false)
	for _, id := range state.cubeEntities {
		app.World.Transform(id).Rotate(rotation)
	}

	fps, frameTime := core.MetricsFrame()
	core.LogDebug("FPS: %5.1f (%4.1fms)", fps, frameTime)

	return nil
}

// Render queues one stand-alone debug sphere above the cube cluster
// and a small crosshair dot on the 2D overlay; everything else (cubes,
// particles) is already queued by the ECS world's render sweep in
// Application.Run before this is called.
func (g *TestGame) Render(app *engine.Application, deltaTime float64) error {
	state := g.State.(*gameState)
	transform := math.TransformFromPosition(math.NewVec3(0, 4, 0))
	app.Facade.QueueDebugSphere(transform.GetWorld(), state.debugSphere)
	app.Facade.Overlay().QueueCircle(math.NewVec2(0, 0), 0.01, math.Vec4{X: 1, Y: 1, Z: 1, W: 0.8})
	return nil
}

func (g *TestGame) OnResize(app *engine.Application, width uint32, height uint32) error {
	return nil
}

func (g *TestGame) Shutdown(app *engine.Application) error {
	core.LogInfo("shutting down testbed...")
	return nil
}

func (g *TestGame) onKey(context core.EventContext) bool {
	keyEvent, ok := context.Data.(*core.KeyEvent)
	if !ok {
		return false
	}
	if context.Type == core.EventKeyPressed && keyEvent.KeyCode == core.KEY_A {
		core.LogDebug("Explicit - A key pressed!")
	}
	return false
}
