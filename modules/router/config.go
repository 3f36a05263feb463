package router

// Config for the router module.
type Config struct {
	// InitialRoute is navigated to once the application is ready.
	InitialRoute string `yaml:"initial_route" toml:"initial_route" json:"initial_route" env:"INITIAL_ROUTE" default:"/" desc:"Path activated after startup"`

	// RetainRouteEffects keeps route effects registered after their route
	// is deactivated. Revisiting the route then adds a second registration.
	RetainRouteEffects bool `yaml:"retain_route_effects" toml:"retain_route_effects" json:"retain_route_effects" env:"RETAIN_ROUTE_EFFECTS" default:"false" desc:"Keep route effects alive after deactivation"`
}
