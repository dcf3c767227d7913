// Command corrosion-monitor watches workshop temperature and humidity, warns
// when the dew point gets close enough to corrode tools, and uploads the
// readings to Adafruit IO.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"periph.io/x/conn/v3/physic"

	"github.com/sweeney/corrosion-monitor/internal/archive"
	"github.com/sweeney/corrosion-monitor/internal/config"
	"github.com/sweeney/corrosion-monitor/internal/datalog"
	"github.com/sweeney/corrosion-monitor/internal/display"
	"github.com/sweeney/corrosion-monitor/internal/feed"
	"github.com/sweeney/corrosion-monitor/internal/gpio"
	"github.com/sweeney/corrosion-monitor/internal/light"
	"github.com/sweeney/corrosion-monitor/internal/logic"
	"github.com/sweeney/corrosion-monitor/internal/monitor"
	"github.com/sweeney/corrosion-monitor/internal/sensor"
	"github.com/sweeney/corrosion-monitor/internal/status"
	"github.com/sweeney/corrosion-monitor/internal/web"
)

type options struct {
	configPath string
	envPath    string
	httpAddr   string
	poll       time.Duration
	printState bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "YAML settings file (empty for defaults)")
	flag.StringVar(&opts.envPath, "env", ".env", "dotenv file with AIO and ClickHouse credentials")
	flag.StringVar(&opts.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.DurationVar(&opts.poll, "poll", 100*time.Millisecond, "Loop polling interval")
	flag.BoolVar(&opts.printState, "print-state", false, "Read the sensors once, print and exit")

	flag.Parse()

	if err := run(opts); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	secrets, err := config.LoadSecrets(opts.envPath)
	if err != nil {
		return err
	}

	// Initialize I²C sensors
	bus, err := sensor.OpenBus(cfg.Hardware.Bus)
	if err != nil {
		return fmt.Errorf("init i2c: %w", err)
	}
	defer bus.Close()

	climate := sensor.NewSHT31(bus, cfg.Climate.Address, time.Sleep)
	climate.TempDelay = cfg.Climate.TempDelay
	climate.HumidityDelay = cfg.Climate.HumidityDelay

	pcb, err := sensor.NewADT7410(bus, cfg.Fan.PCBAddress, time.Sleep)
	if err != nil {
		return fmt.Errorf("init pcb sensor: %w", err)
	}
	pcb.Delay = cfg.Fan.PCBDelay

	// Print state mode
	if opts.printState {
		printState(os.Stdout, climate, pcb)
		return nil
	}

	fan, err := gpio.NewRealFan(cfg.Fan.Chip, cfg.Fan.Pin)
	if err != nil {
		return fmt.Errorf("init fan: %w", err)
	}
	defer fan.Close()

	ref := physic.ElectricPotential(cfg.Hardware.LightReference * float64(physic.Volt))
	adc, err := light.NewADS1115(bus, cfg.Hardware.LightChannel, ref)
	if err != nil {
		return fmt.Errorf("init light sensor: %w", err)
	}
	defer adc.Close()
	lightTracker, err := light.NewTracker(adc)
	if err != nil {
		return fmt.Errorf("calibrate light sensor: %w", err)
	}

	// The display clock follows the controller's resynced time.
	var ctrl *monitor.Controller
	clock := func() time.Time {
		if ctrl == nil {
			return time.Now()
		}
		return ctrl.Now()
	}
	oled, err := display.NewOLED(bus, display.Scale(cfg.Display.Scale), clock)
	if err != nil {
		return fmt.Errorf("init display: %w", err)
	}
	defer oled.Close()

	// Initialize feed uploader
	uploader, err := feed.NewRealUploader(feed.Options{
		Broker:        secrets.AIOBroker,
		Username:      secrets.AIOUsername,
		Key:           secrets.AIOKey,
		ClientID:      "corrosion-monitor-" + cfg.Node,
		StatusFeed:    cfg.Feeds.Status,
		Backlog:       cfg.Upload.Backlog,
		MaxAge:        cfg.Upload.MaxAge,
		ResyncTimeout: cfg.Upload.ResyncTimeout,
	})
	if err != nil {
		return fmt.Errorf("init feed: %w", err)
	}
	defer uploader.Close()

	var archiver archive.Archiver
	if secrets.ArchiveEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Archive.Timeout)
		store, err := archive.Open(ctx, archive.Options{
			Addr:     secrets.ClickHouseAddr,
			Database: secrets.ClickHouseDB,
			Username: secrets.ClickHouseUser,
			Password: secrets.ClickHousePass,
		})
		cancel()
		if err != nil {
			log.Printf("archive disabled: %v", err)
		} else {
			defer store.Close()
			archiver = store
		}
	}

	// Initialize status tracker (before STARTUP so snapshot is available)
	broker := secrets.AIOBroker
	if broker == "" {
		broker = feed.DefaultBroker
	}
	tracker := status.NewTracker(time.Now(), status.Config{
		Node:             cfg.Node,
		PollMs:           opts.poll.Milliseconds(),
		Broker:           broker,
		HTTPPort:         opts.httpAddr,
		UploadPeriodMin:  cfg.Upload.PeriodMinutes,
		UploadOffsetMin:  cfg.Upload.OffsetMinutes,
		FanThresholdF:    cfg.Fan.ThresholdF,
		GestureThreshold: cfg.Gesture.Threshold,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}
	tracker.SetFeedConnected(uploader.IsConnected())

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := feed.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := uploader.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if opts.httpAddr != "" {
		srv := web.New(opts.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", opts.httpAddr)
	}

	ctrl = monitor.New(monitorConfig(cfg), monitor.Deps{
		Climate: climate,
		PCB:     pcb,
		Light:   lightTracker,
		Fan:     fan,
		Display: oled,
		Feed:    uploader,
		Log:     datalog.NewFileLog(cfg.Datalog.Dir, cfg.Datalog.File),
		Archive: archiver,
		Status:  tracker,
	}, time.Now, time.Sleep)

	log.Printf("started: node=%s poll=%v upload=every %dm at +%dm broker=%s archive=%v",
		cfg.Node, opts.poll, cfg.Upload.PeriodMinutes, cfg.Upload.OffsetMinutes, broker, archiver != nil)

	ticker := time.NewTicker(opts.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	err = runLoop(ctrl, uploader, uploader, tracker, time.Now, ticker.C, sigCh)
	if n := uploader.Pending(); n > 0 {
		log.Printf("feed: %d queued pushes dropped at shutdown", n)
	}
	return err
}

func runLoop(ctrl *monitor.Controller, uploader feed.Uploader, feedStatus feed.ConnectionStatus, tracker *status.Tracker, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var lastNetwork time.Time

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := feed.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if feedStatus != nil {
					tracker.SetFeedConnected(feedStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := uploader.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			if err := ctrl.Step(ctx); err != nil {
				// Only the upload burst is abandoned; the loop carries on.
				log.Printf("step error: %v", err)
			}

			// Refresh network info for the status page
			if tracker != nil {
				if t := now(); t.Sub(lastNetwork) >= time.Minute {
					lastNetwork = t
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
				}
			}
		}
	}
}

// monitorConfig maps the settings file onto the controller.
func monitorConfig(cfg config.Config) monitor.Config {
	mc := monitor.DefaultConfig()
	mc.Node = cfg.Node
	mc.Feeds = monitor.Feeds{
		Temperature: cfg.Feeds.Temperature,
		Humidity:    cfg.Feeds.Humidity,
		DewPoint:    cfg.Feeds.DewPoint,
		PCB:         cfg.Feeds.PCB,
		Corrosion:   cfg.Feeds.Corrosion,
	}
	mc.Cadence = cfg.Cadence()
	mc.GestureThreshold = cfg.Gesture.Threshold
	mc.GestureDuration = cfg.Gesture.Duration
	mc.FanThresholdF = cfg.Fan.ThresholdF
	mc.Brightness = cfg.BrightnessConfig()
	mc.PushDelay = cfg.Upload.PushDelay
	mc.ArchiveTimeout = cfg.Archive.Timeout
	return mc
}

// printState reads the sensors once and writes a short report.
func printState(w io.Writer, climate sensor.Climate, pcb sensor.PCB) {
	r := logic.NewClimateModel().Update(climate.Read())
	board := pcb.Read()
	fmt.Fprintf(w, "Temperature: %v°C / %v°F\n", r.TempC, r.TempF)
	fmt.Fprintf(w, "Humidity:    %v%%\n", r.HumidityPct)
	fmt.Fprintf(w, "Dew point:   %v°C / %v°F\n", r.DewPointC, r.DewPointF)
	fmt.Fprintf(w, "PCB:         %v°C / %v°F\n", board, logic.FahrenheitOf(board))
	fmt.Fprintf(w, "Status:      %s\n", r.Level)
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
