package metrics

// Config carries the static labels attached to every instrument.
type Config struct {
	ServiceName string
	Environment string
}
