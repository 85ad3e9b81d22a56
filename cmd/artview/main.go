package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/art2ascii/artview/internal/adapters/mqtt"
	"github.com/art2ascii/artview/internal/adapters/web"
	"github.com/art2ascii/artview/internal/cliconfig"
	"github.com/art2ascii/artview/pkg/ansihtml"
	"github.com/art2ascii/artview/pkg/artview"
	"github.com/art2ascii/artview/pkg/frames"
	"github.com/art2ascii/artview/pkg/log"
)

const longHelp = `Play the ASCII-art animation written by art2ascii.

artview watches the converter's frame-data file, turns each frame's ANSI
colours into HTML and loops the frames at about 12 frames per second.
Open the listen address in a browser to watch, or point it at an MQTT
broker to feed remote displays. Rewriting the file restarts playback.`

var exampleUsage = strings.TrimSpace(`
  artview --frame-file ~/.artview/output.data
  artview --listen :8083 --mqtt-broker tcp://localhost:1883
  artview decode output.data
  artview encode -o output.data frame1.txt frame2.txt
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	logger := cliconfig.Logger(cfg.LogLevel)

	root := &cobra.Command{
		Use:           "artview",
		Short:         "Play ASCII-art animations from a frame-data file",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// ARTVIEW_* override the file; explicit flags override both.
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			logger = cliconfig.Logger(cfg.LogLevel)
			logger.Info().Interface("config", cfg.Masked()).Msg("configuration")

			return play(cmd.Context(), cfg, logger)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.artview/config.toml)")
	root.Flags().StringVar(&cfg.FrameFile, "frame-file", cfg.FrameFile, "frame-data file to play (default: $HOME/.artview/output.data)")
	root.Flags().DurationVar(&cfg.Interval, "interval", cfg.Interval, "time between frames")
	root.Flags().DurationVar(&cfg.Debounce, "debounce", cfg.Debounce, "quiet period after a file change before reloading")
	root.Flags().BoolVar(&cfg.BlankOnFailure, "blank-on-failure", cfg.BlankOnFailure, "clear the display when a reload fails")
	root.Flags().StringVar(&cfg.Listen, "listen", cfg.Listen, "HTTP listen address for the browser display (empty disables)")
	root.Flags().StringVar(&cfg.MQTTBroker, "mqtt-broker", cfg.MQTTBroker, "MQTT broker URL, e.g. tcp://localhost:1883 (optional)")
	root.Flags().StringVar(&cfg.MQTTTopic, "mqtt-topic", cfg.MQTTTopic, "MQTT topic frames are published to")
	root.Flags().StringVar(&cfg.MQTTClientID, "mqtt-client-id", cfg.MQTTClientID, "MQTT client id")
	root.Flags().StringVar(&cfg.MQTTUsername, "mqtt-username", cfg.MQTTUsername, "MQTT username")
	root.Flags().StringVar(&cfg.MQTTPassword, "mqtt-password", cfg.MQTTPassword, "MQTT password (prefer ARTVIEW_MQTT_PASSWORD)")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	root.AddCommand(decodeCommand(), encodeCommand())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error().Err(err).Msg("artview")
		stop()
		os.Exit(1)
	}
}

// play runs the player until ctx is canceled.
func play(ctx context.Context, cfg cliconfig.Config, zl zerolog.Logger) error {
	logger := log.NewZerologAdapterWithLogger(zl)

	var (
		sinks    []artview.DisplaySink
		server   *web.Server
		listener net.Listener
		mqttSink *mqtt.Sink
		player   *artview.Player
		serveErr = make(chan error, 1)
	)

	if cfg.Listen != "" {
		if zl.GetLevel() > zerolog.DebugLevel {
			gin.SetMode(gin.ReleaseMode)
		}
		l, err := net.Listen("tcp", cfg.Listen)
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		listener = l
		server = web.NewServer(func() any { return player.Status() }, logger.Component("web"))
		sinks = append(sinks, server)
	}

	if cfg.MQTTBroker != "" {
		s, err := mqtt.Dial(mqtt.Config{
			Broker:   cfg.MQTTBroker,
			Topic:    cfg.MQTTTopic,
			ClientID: cfg.MQTTClientID,
			Username: cfg.MQTTUsername,
			Password: cfg.MQTTPassword,
		}, logger.Component("mqtt"))
		if err != nil {
			closeListener(listener)
			return fmt.Errorf("mqtt: %w", err)
		}
		mqttSink = s
		sinks = append(sinks, s)
	}

	opts := []artview.Option{artview.WithLogger(logger)}
	for _, s := range sinks {
		opts = append(opts, artview.WithSink(s))
	}

	var err error
	player, err = artview.New(artview.Config{
		FrameFile:      cfg.FrameFile,
		Interval:       cfg.Interval,
		DebounceDelay:  cfg.Debounce,
		BlankOnFailure: cfg.BlankOnFailure,
	}, opts...)
	if err != nil {
		closeListener(listener)
		closeMQTT(mqttSink)
		return fmt.Errorf("create player: %w", err)
	}

	// The status handler reads player, so serve only once it exists.
	if server != nil {
		go func() { serveErr <- server.Serve(listener) }()
	}

	if err := player.Start(ctx); err != nil {
		closeMQTT(mqttSink)
		closeServer(server, logger)
		return fmt.Errorf("start player: %w", err)
	}

	select {
	case <-ctx.Done():
		zl.Info().Msg("received signal, stopping...")
	case err = <-serveErr:
		if err != nil {
			zl.Error().Err(err).Msg("web display failed")
		}
	}

	if stopErr := player.Stop(); stopErr != nil {
		zl.Warn().Err(stopErr).Msg("stop player")
	}
	closeMQTT(mqttSink)
	closeServer(server, logger)
	return err
}

func closeMQTT(s *mqtt.Sink) {
	if s != nil {
		_ = s.Close()
	}
}

func closeListener(l net.Listener) {
	if l != nil {
		_ = l.Close()
	}
}

func closeServer(s *web.Server, logger log.Logger) {
	if s == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Close(ctx); err != nil {
		logger.Warn("web display shutdown", log.Err(err))
	}
}

func decodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <file>",
		Short: "Check a frame-data file and report styling the renderer cannot apply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			ff, err := frames.Decode(string(b))
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			total := 0
			for i, f := range ff {
				res := ansihtml.Translate(f)
				for _, a := range res.Anomalies {
					fmt.Fprintf(out, "frame %d offset %d: %q %s\n", i, a.Offset, a.Sequence, a.Reason)
				}
				total += len(res.Anomalies)
			}
			fmt.Fprintf(out, "%d frames, %d anomalies\n", len(ff), total)
			return nil
		},
	}
}

func encodeCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "encode -o <out> <frame>...",
		Short: "Pack text files into a frame-data file, one file per frame",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ff := make([]string, 0, len(args))
			for _, p := range args {
				b, err := os.ReadFile(p)
				if err != nil {
					return err
				}
				if strings.Contains(string(b), frames.Delimiter) {
					return fmt.Errorf("%s: frame contains the delimiter %q", p, frames.Delimiter)
				}
				ff = append(ff, string(b))
			}
			if err := writeAtomic(output, []byte(frames.Encode(ff))); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d frames to %s\n", len(ff), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "frame-data file to write")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

// writeAtomic writes data to a temp file beside path and renames it into
// place, so a watching player never sees a partial file.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return err
	}
	return os.Rename(name, path)
}
