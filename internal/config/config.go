package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-matrixgram/internal/led"
	"github.com/coreman2200/funtimes-matrixgram/internal/panel"
)

type PanelCfg struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	Chain     int `yaml:"chain"`
	BitDepth  int `yaml:"bit_depth"`
	RefreshHz int `yaml:"refresh_hz"`
}

type PinsCfg struct {
	R1 string `yaml:"r1"`
	G1 string `yaml:"g1"`
	B1 string `yaml:"b1"`
	R2 string `yaml:"r2"`
	G2 string `yaml:"g2"`
	B2 string `yaml:"b2"`
	A  string `yaml:"a"`
	B  string `yaml:"b"`
	C  string `yaml:"c"`
	D  string `yaml:"d"`
	E  string `yaml:"e"`
	Clk string `yaml:"clk"`
	Lat string `yaml:"lat"`
	OE  string `yaml:"oe"`
}

type TelegramCfg struct {
	Token   string `yaml:"token"`
	OwnerID int64  `yaml:"owner_id"`
}

type Config struct {
	Driver  string `yaml:"driver"` // "gpio" | "sim"
	Addr    string `yaml:"addr"`
	Preview bool   `yaml:"preview"`
	Gamma   bool   `yaml:"gamma"`

	Panel    PanelCfg    `yaml:"panel"`
	Pins     PinsCfg     `yaml:"pins,omitempty"`
	Telegram TelegramCfg `yaml:"telegram,omitempty"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// PanelConfig converts to the core panel config.
func (c *Config) PanelConfig() panel.Config {
	return panel.Config{
		Width:       c.Panel.Width,
		Height:      c.Panel.Height,
		ChainLength: c.Panel.Chain,
		BitDepth:    c.Panel.BitDepth,
		RefreshHz:   c.Panel.RefreshHz,
	}
}

// HUB75Pins converts to driver pin names, falling back to the reference
// wiring for any pin left empty.
func (c *Config) HUB75Pins() led.HUB75Pins {
	p := led.DefaultPins()
	pick := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	pick(&p.R1, c.Pins.R1)
	pick(&p.G1, c.Pins.G1)
	pick(&p.B1, c.Pins.B1)
	pick(&p.R2, c.Pins.R2)
	pick(&p.G2, c.Pins.G2)
	pick(&p.B2, c.Pins.B2)
	pick(&p.A, c.Pins.A)
	pick(&p.B, c.Pins.B)
	pick(&p.C, c.Pins.C)
	pick(&p.D, c.Pins.D)
	pick(&p.E, c.Pins.E)
	pick(&p.Clk, c.Pins.Clk)
	pick(&p.Lat, c.Pins.Lat)
	pick(&p.OE, c.Pins.OE)
	return p
}
