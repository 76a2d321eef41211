package engine

// Game carries the application-specific callbacks the Application
// drives through its lifecycle (boot -> initialize -> per-frame
// update/render -> resize -> shutdown). Every callback is handed the
// running *Application so it can reach the facade, the ECS world, and
// input/events without a package-level singleton.
type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}

	FnBoot       Boot
	FnInitialize Initialize
	FnUpdate     Update
	FnRender     Render
	FnOnResize   OnResize
	FnShutdown   Shutdown
}

type Boot func(app *Application) error
type Initialize func(app *Application) error
type Update func(app *Application, deltaTime float64) error
type Render func(app *Application, deltaTime float64) error
type OnResize func(app *Application, width uint32, height uint32) error
type Shutdown func(app *Application) error
