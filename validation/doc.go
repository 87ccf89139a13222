// Package validation checks configuration structs and command-line input.
//
// Struct tag validation uses go-playground/validator and reports field names
// by their mapstructure key, so messages match the config file:
//
//	type ProcessConfig struct {
//	    TimeoutMS uint32            `mapstructure:"timeout_ms" validate:"gte=1"`
//	    Env       map[string]string `mapstructure:"env" validate:"dive,keys,nonul,endkeys,nonul"`
//	}
//	err := validation.Validate(cfg)
//
// The nonul tag rejects strings containing a NUL byte, which cannot be
// passed to a process host.
//
// Programmatic validation collects errors from several checks:
//
//	v := validation.New()
//	v.Required("program", program).EnvEntry("env", entry)
//	if err := v.Validate(); err != nil { ... }
package validation
