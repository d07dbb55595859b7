package config

// this holds the resolved configuration values from CLI
var (
	Scenario     string // path to the scenario file
	ProfilesFile string // path to the driver profiles file (overrides scenario entry)
	LogLevel     string // sets the log level (zap log level values)
	LogFormat    string // text vs json
	LogConfig    string // path to log config file
	Episodes     int    // number of episodes to simulate
	Workers      int    // number of concurrent episode workers
	Seed         uint64 // base seed for the study (0 picks a random one)
	Output       string // output format for study results (text, json)
)
