package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/voxtail/opuscap/pkg/ogg"
	"github.com/voxtail/opuscap/pkg/rawdump"
	"github.com/voxtail/opuscap/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "opuscap",
	Short: "Opus voice capture tooling - raw packet dumps and Ogg packaging",
	Long: `opuscap works with the two artifacts a voice recording produces: the
lossless raw packet dump captured live, and the standard Opus-in-Ogg
container built from it. It can convert dumps to playable .opus files,
inspect either format, and validate finished captures.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetVersionInfo())
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert <dump.raw> <out.opus>",
	Short: "Package a raw packet dump into an Opus-in-Ogg container",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		channels, _ := cmd.Flags().GetUint8("channels")
		sampleRate, _ := cmd.Flags().GetUint32("sample-rate")
		preSkip, _ := cmd.Flags().GetUint16("pre-skip")
		vendor, _ := cmd.Flags().GetString("vendor")
		comments, _ := cmd.Flags().GetStringArray("comment")

		logger := setupLogger()
		logger.Info("converting dump",
			slog.String("in", args[0]),
			slog.String("out", args[1]),
			slog.Int("channels", int(channels)),
			slog.Uint64("sample_rate", uint64(sampleRate)))

		return runConvert(args[0], args[1], ogg.WriterConfig{
			Channels:   channels,
			SampleRate: sampleRate,
			PreSkip:    preSkip,
			Vendor:     vendor,
			Comments:   comments,
			Logger:     logger,
		})
	},
}

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Inspect a raw dump (.raw) or Ogg container (.opus/.ogg)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()
		return runInfo(args[0])
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a finished capture for truncation or corruption",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := setupLogger()
		if err := runValidate(args[0]); err != nil {
			logger.Error("validation failed",
				slog.String("file", args[0]),
				slog.String("error", err.Error()))
			return err
		}
		fmt.Printf("%s: ok\n", args[0])
		return nil
	},
}

func runConvert(dumpPath, outPath string, cfg ogg.WriterConfig) error {
	in, err := os.Open(dumpPath)
	if err != nil {
		return fmt.Errorf("open dump: %w", err)
	}
	defer in.Close()

	w, err := ogg.NewWriter(outPath, cfg)
	if err != nil {
		return err
	}
	if err := w.Init(); err != nil {
		return err
	}

	reader := rawdump.NewReader(in)
	for {
		rec, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read dump: %w", err)
		}
		if err := w.WritePacket(rec.Payload); err != nil {
			return err
		}
	}

	summary, err := w.Finalize()
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d packets, %d bytes, final granule %d\n",
		outPath, summary.PacketsWritten, summary.BytesWritten, summary.GranulePosition)
	return nil
}

func runInfo(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	// Sniff the format: Ogg streams start with the capture pattern, raw
	// dumps have no file-level header.
	var magic [4]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}

	if string(magic[:]) == "OggS" {
		info, err := ogg.Validate(f)
		if err != nil {
			return err
		}
		fmt.Printf("%s: ogg/opus, serial %d, %d pages, %d packets, %d channels @ %d Hz, final granule %d\n",
			path, info.Serial, info.Pages, info.Packets,
			info.Head.Channels, info.Head.SampleRate, info.FinalGranule)
		return nil
	}

	records, err := rawdump.NewReader(f).ReadAll()
	if err != nil && len(records) == 0 {
		return err
	}
	var bytes int
	for _, rec := range records {
		bytes += len(rec.Payload)
	}
	fmt.Printf("%s: raw dump, %d records, %d payload bytes", path, len(records), bytes)
	if len(records) > 0 {
		fmt.Printf(", %d ms span", records[len(records)-1].Timestamp-records[0].Timestamp)
	}
	fmt.Println()
	if err != nil {
		return fmt.Errorf("dump ends mid-record: %w", err)
	}
	return nil
}

func runValidate(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}

	var magic [4]byte
	_, err = io.ReadFull(f, magic[:])
	f.Close()
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if string(magic[:]) == "OggS" {
		g, err := os.Open(path)
		if err != nil {
			return err
		}
		defer g.Close()
		_, err = ogg.Validate(g)
		return err
	}
	return rawdump.Validate(path)
}

func setupLogger() *slog.Logger {
	logFormat := os.Getenv("OPUSCAP_LOG_FORMAT")
	logLevel := os.Getenv("OPUSCAP_LOG_LEVEL")

	opts := &slog.HandlerOptions{}
	switch logLevel {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	var handler slog.Handler
	if logFormat == "console" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func init() {
	convertCmd.Flags().Uint8("channels", 2, "Channel count recorded in OpusHead (1 or 2)")
	convertCmd.Flags().Uint32("sample-rate", 48000, "Input sample rate in Hz")
	convertCmd.Flags().Uint16("pre-skip", 0, "Samples for decoders to skip at stream start")
	convertCmd.Flags().String("vendor", "", "OpusTags vendor string")
	convertCmd.Flags().StringArray("comment", nil, "OpusTags user comment (repeatable)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
