package config

import "go.uber.org/fx"

// Module exposes the sub-configurations to the other modules
var Module = fx.Module("config",
	fx.Provide(
		func(c *Config) *LoggingConfig { return &c.Logging },
		func(c *Config) *ServerConfig { return &c.Server },
		func(c *Config) *CORSConfig { return &c.CORS },
		func(c *Config) *ExchangeConfig { return &c.Exchange },
		func(c *Config) *CallbackConfig { return &c.Callback },
		func(c *Config) *MCPConfig { return &c.MCP },
	),
)
