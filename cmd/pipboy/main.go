// Command pipboy runs the handheld: it polls the buttons, drives the LCD,
// plays music and shows system stats until powered off.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sweeney/pipboy-mini/internal/audio"
	"github.com/sweeney/pipboy-mini/internal/display"
	"github.com/sweeney/pipboy-mini/internal/gpio"
	"github.com/sweeney/pipboy-mini/internal/logic"
	"github.com/sweeney/pipboy-mini/internal/metrics"
	"github.com/sweeney/pipboy-mini/internal/mqtt"
	"github.com/sweeney/pipboy-mini/internal/power"
	"github.com/sweeney/pipboy-mini/internal/render"
	"github.com/sweeney/pipboy-mini/internal/status"
)

type config struct {
	tick            time.Duration
	debounceSamples int
	comboHold       time.Duration
	countdown       time.Duration
	metricsInterval time.Duration
	heartbeat       time.Duration

	invPath  string
	musicDir string
	fontDir  string

	chip    string
	pins    gpio.Pins
	spiPort string

	powerCmd   string
	broker     string
	printState bool
}

func main() {
	dir := executableDir()
	pins := gpio.DefaultPins()

	var cfg config
	flag.DurationVar(&cfg.tick, "tick", 50*time.Millisecond, "Main loop tick")
	flag.IntVar(&cfg.debounceSamples, "debounce-samples", 2, "Consecutive identical samples needed to accept a button change")
	flag.DurationVar(&cfg.comboHold, "combo-hold", 500*time.Millisecond, "KEY1+KEY2 hold time that opens the power-off prompt")
	flag.DurationVar(&cfg.countdown, "countdown", 3*time.Second, "Power-off confirmation countdown")
	flag.DurationVar(&cfg.metricsInterval, "metrics-interval", metrics.DefaultInterval, "System stats sampling interval")
	flag.DurationVar(&cfg.heartbeat, "heartbeat", 15*time.Minute, "Telemetry heartbeat interval (0 to disable)")
	flag.StringVar(&cfg.invPath, "inv", filepath.Join(dir, "inv.txt"), "Inventory text file")
	flag.StringVar(&cfg.musicDir, "music", filepath.Join(dir, "music"), "Directory of .mp3/.ogg/.wav tracks")
	flag.StringVar(&cfg.fontDir, "fonts", filepath.Join(dir, "fonts"), "Directory of .ttf fonts")
	flag.StringVar(&cfg.chip, "gpiochip", "gpiochip0", "GPIO character device")
	flag.IntVar(&pins[logic.ButtonUp], "pin-up", pins[logic.ButtonUp], "BCM pin for joystick up")
	flag.IntVar(&pins[logic.ButtonDown], "pin-down", pins[logic.ButtonDown], "BCM pin for joystick down")
	flag.IntVar(&pins[logic.ButtonLeft], "pin-left", pins[logic.ButtonLeft], "BCM pin for joystick left")
	flag.IntVar(&pins[logic.ButtonRight], "pin-right", pins[logic.ButtonRight], "BCM pin for joystick right")
	flag.IntVar(&pins[logic.ButtonSelect], "pin-press", pins[logic.ButtonSelect], "BCM pin for joystick press")
	flag.IntVar(&pins[logic.ButtonKey1], "pin-key1", pins[logic.ButtonKey1], "BCM pin for KEY1")
	flag.IntVar(&pins[logic.ButtonKey2], "pin-key2", pins[logic.ButtonKey2], "BCM pin for KEY2")
	flag.IntVar(&pins[logic.ButtonKey3], "pin-key3", pins[logic.ButtonKey3], "BCM pin for KEY3")
	flag.StringVar(&cfg.spiPort, "spi", display.DefaultSPIPort, "SPI port of the LCD")
	flag.StringVar(&cfg.powerCmd, "poweroff", power.DefaultCommand, "Power-off command (empty to only log)")
	flag.StringVar(&cfg.broker, "broker", "", "MQTT broker for telemetry (empty to disable)")
	flag.BoolVar(&cfg.printState, "print-state", false, "Print current button levels and exit")

	flag.Parse()
	cfg.pins = pins

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config) error {
	reader, err := gpio.NewRealReader(cfg.chip, cfg.pins)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}

	if cfg.printState {
		defer reader.Close()
		levels, err := reader.Read()
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		fmt.Println(formatLevels(levels))
		return nil
	}

	a := &app{
		reader:    reader,
		heartbeat: cfg.heartbeat,
		musicDir:  cfg.musicDir,
		start:     time.Now(),
	}
	defer a.release()

	dcfg := display.DefaultConfig(cfg.chip)
	dcfg.SPIPort = cfg.spiPort
	panel, err := display.NewST7735(dcfg)
	if err != nil {
		return fmt.Errorf("init display: %w", err)
	}
	a.panel = panel

	faces := display.LoadFaces(cfg.fontDir)
	a.canvas = display.NewCanvas()
	a.renderer = render.NewRenderer(faces)

	a.player = audio.NewPlayer(newTransport(), scanTracks(cfg.musicDir))
	if w, err := audio.NewWatcher(cfg.musicDir); err != nil {
		log.Printf("audio: track directory not watched: %v", err)
	} else {
		a.watcher = w
	}

	lines, err := readInventory(cfg.invPath)
	if err != nil {
		log.Printf("inventory: %v", err)
		lines = inventoryPlaceholder(cfg.invPath, err)
	}
	state := logic.AppState{
		Screen:   logic.ScreenStat,
		Inv:      logic.InvView{Path: cfg.invPath, Lines: lines, VisibleRows: render.InvRows},
		Playback: a.player.State(),
	}
	a.input = logic.NewInputReader(cfg.debounceSamples, cfg.comboHold)
	a.machine = logic.NewMachine(state,
		logic.NewScreenController(a.player, readInventory),
		logic.NewShutdownSequencer(cfg.countdown),
		a.player)
	a.sampler = metrics.NewSampler(metrics.NewSystemSource(), cfg.metricsInterval)

	if cfg.powerCmd != "" {
		if err := power.Validate(cfg.powerCmd); err != nil {
			log.Printf("power: %v", err)
		}
	}
	a.power = power.NewCommand(cfg.powerCmd)

	if cfg.broker != "" {
		pub, err := mqtt.NewRealPublisher(cfg.broker)
		if err != nil {
			log.Printf("mqtt: telemetry disabled: %v", err)
		} else {
			a.publisher = pub
			a.mqttStatus = pub
		}
	}
	a.statusCfg = status.Config{
		TickMs:          cfg.tick.Milliseconds(),
		DebounceSamples: cfg.debounceSamples,
		ComboHoldMs:     cfg.comboHold.Milliseconds(),
		CountdownMs:     cfg.countdown.Milliseconds(),
		MetricsMs:       cfg.metricsInterval.Milliseconds(),
		HeartbeatMs:     cfg.heartbeat.Milliseconds(),
		Broker:          cfg.broker,
		Inventory:       cfg.invPath,
		Music:           cfg.musicDir,
		Fonts:           faces.Source,
	}
	a.publishSystem(a.start, "STARTUP", "")

	log.Printf("started: tick=%v debounce=%d combo=%v countdown=%v tracks=%d inv=%s font=%s broker=%q",
		cfg.tick, cfg.debounceSamples, cfg.comboHold, cfg.countdown,
		len(a.player.State().Tracks), cfg.invPath, faces.Source, cfg.broker)

	ticker := time.NewTicker(cfg.tick)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1)

	return runLoop(a, time.Now, ticker.C, sigCh)
}

// newTransport returns the speaker transport, or a silent one when no sound
// device can be opened.
func newTransport() audio.Transport {
	if !audio.OutputAvailable {
		log.Printf("audio: built without sound output, playback is silent")
		return audio.NullTransport{}
	}
	t, err := audio.NewSpeakerTransport()
	if err != nil {
		log.Printf("audio: %v, playback is silent", err)
		return audio.NullTransport{}
	}
	return t
}

func scanTracks(dir string) []string {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("audio: %v", err)
	}
	tracks, err := audio.ScanTracks(dir)
	if err != nil {
		log.Printf("audio: %v", err)
	}
	return tracks
}

// readInventory reads path into lines, accepting \n or \r\n endings.
func readInventory(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return []string{}, nil
	}
	return strings.Split(text, "\n"), nil
}

// inventoryPlaceholder is shown when the inventory cannot be read at startup.
func inventoryPlaceholder(path string, err error) []string {
	if !errors.Is(err, fs.ErrNotExist) {
		return []string{fmt.Sprintf("ERROR: %v", err)}
	}
	return []string{
		fmt.Sprintf("[ %s not found ]", filepath.Base(path)),
		"",
		"Create " + filepath.Base(path) + " in the",
		"same directory as",
		"pipboy to populate",
		"your inventory.",
	}
}

func formatLevels(l logic.Levels) string {
	parts := make([]string, logic.NumButtons)
	for i := range parts {
		state := "released"
		if l[i] {
			state = "pressed"
		}
		parts[i] = fmt.Sprintf("%s=%s", logic.Button(i), state)
	}
	return strings.Join(parts, " ")
}

func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}
