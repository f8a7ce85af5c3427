package led

// HUB75Pins names the GPIO lines of the panel connector, in the form the
// host's pin registry understands (e.g. "GPIO12").
type HUB75Pins struct {
	R1, G1, B1 string
	R2, G2, B2 string
	A, B, C    string
	D, E       string
	Clk        string
	Lat        string
	OE         string
}

// DefaultPins matches the reference board wiring.
func DefaultPins() HUB75Pins {
	return HUB75Pins{
		R1: "GPIO12", G1: "GPIO13", B1: "GPIO14",
		R2: "GPIO15", G2: "GPIO16", B2: "GPIO17",
		A: "GPIO4", B: "GPIO5", C: "GPIO6",
		D: "GPIO7", E: "GPIO8",
		Clk: "GPIO3", Lat: "GPIO9", OE: "GPIO10",
	}
}
