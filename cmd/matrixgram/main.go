package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-matrixgram/internal/config"
	"github.com/coreman2200/funtimes-matrixgram/internal/imaging"
	"github.com/coreman2200/funtimes-matrixgram/internal/led"
	"github.com/coreman2200/funtimes-matrixgram/internal/panel"
	"github.com/coreman2200/funtimes-matrixgram/internal/pipeline"
	"github.com/coreman2200/funtimes-matrixgram/internal/source"
	"github.com/coreman2200/funtimes-matrixgram/internal/ws"
)

func main() {
	// ---- Flags (config.yaml can override most) ----
	var (
		width      = flag.Int("width", 64, "panel width in pixels")
		height     = flag.Int("height", 64, "panel height in pixels")
		chain      = flag.Int("chain", 1, "number of chained panels")
		bitDepth   = flag.Int("bit-depth", 5, "color bit depth per channel (1-8)")
		refreshHz  = flag.Int("refresh-hz", 100, "panel refresh rate")
		driver     = flag.String("driver", "sim", "output driver: gpio | sim")
		addr       = flag.String("addr", ":8080", "HTTP listen address for preview/health")
		preview    = flag.Bool("preview", false, "stream reconstructed frames over websocket")
		noGamma    = flag.Bool("no-gamma", false, "disable perceptual gamma correction")
		token      = flag.String("token", "", "telegram bot token (or telegram.token in config)")
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Load config.yaml (optional) ----
	cfg := &config.Config{}
	if c, err := config.Load(*configPath); err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
	} else {
		cfg = c
	}

	// ---- Effective params (config overrides flags where set) ----
	pcfg := panel.Config{
		Width:       *width,
		Height:      *height,
		ChainLength: *chain,
		BitDepth:    *bitDepth,
		RefreshHz:   *refreshHz,
	}
	if c := cfg.PanelConfig(); c.Width > 0 {
		pcfg = c
	}
	if err := pcfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid panel configuration")
	}

	selected := *driver
	if cfg.Driver != "" {
		selected = cfg.Driver
	}
	listen := *addr
	if cfg.Addr != "" {
		listen = cfg.Addr
	}
	botToken := *token
	if cfg.Telegram.Token != "" {
		botToken = cfg.Telegram.Token
	}
	wantPreview := *preview || cfg.Preview
	gamma := !*noGamma
	if cfg.Gamma {
		gamma = true
	}

	// ---- Frame buffer + output sink ----
	fb := panel.NewFrameBuffer()

	var sink led.RowSink
	switch selected {
	case "gpio":
		if _, err := host.Init(); err != nil {
			log.Fatal().Err(err).Msg("host init failed")
		}
		h, err := led.NewHUB75(cfg.HUB75Pins())
		if err != nil {
			log.Warn().Err(err).Msg("gpio init failed; falling back to sim")
			sink = led.NewSim()
			selected = "sim"
		} else {
			sink = h
		}
	case "sim":
		sink = led.NewSim()
	default:
		log.Warn().Str("driver", selected).Msg("unknown driver; using sim")
		sink = led.NewSim()
		selected = "sim"
	}

	hub := ws.NewHub()
	if wantPreview {
		pv := led.NewPreview(pcfg.Cols(), pcfg.Height, pcfg.BitDepth, hub)
		sink = led.Tee{A: sink, B: pv}
	}

	drv := panel.NewDriver(pcfg, fb, sink, log.Logger)
	hub.Underruns = drv.Underruns

	// ---- Message source ----
	var src source.Source
	if botToken != "" {
		tg, err := source.NewTelegram(source.TelegramConfig{
			Token:   botToken,
			OwnerID: cfg.Telegram.OwnerID,
		}, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("telegram source failed")
		}
		defer tg.Close()
		src = tg
	} else {
		log.Warn().Msg("no telegram token; showing startup pattern only")
	}

	pipe := pipeline.New(pcfg, fb, src, pipeline.Options{Gamma: gamma}, log.Logger)
	if err := pipe.Show(imaging.ColorWheel(pcfg.Cols(), pcfg.Height)); err != nil {
		log.Fatal().Err(err).Msg("startup image failed")
	}

	// ---- HTTP routes ----
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.HandleFrames)
	mux.HandleFunc("/health", hub.HandleHealth)
	srv := &http.Server{
		Addr:         listen,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ---- Run scan loop, pipeline and server ----
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := drv.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("panel driver stopped")
		}
	}()
	go func() {
		if err := pipe.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("pipeline stopped")
			cancel()
		}
	}()
	go func() {
		log.Info().Str("addr", listen).Str("driver", selected).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server crashed")
		}
	}()

	// ---- Graceful shutdown ----
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	s := <-ch
	log.Info().Str("signal", s.String()).Msg("shutting down")

	cancel()
	_ = srv.Close()
	_ = sink.Close()
}
