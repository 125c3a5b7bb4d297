package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/esimov/webphoto"
	"github.com/esimov/webphoto/aisim"
	"github.com/esimov/webphoto/logger"
	"github.com/esimov/webphoto/utils"
	"go.uber.org/zap"
	"golang.org/x/term"
)

const HelpBanner = `
┬ ┬┌─┐┌┐ ┌─┐┬ ┬┌─┐┌┬┐┌─┐
│││├┤ ├┴┐├─┘├─┤│ │ │ │ │
└┴┘└─┘└─┘┴  ┴ ┴└─┘ ┴ └─┘

Layered canvas and brush engine.
    Version: %s

`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

// spinner is the progress indicator shown while a script is replayed.
var spinner *utils.Spinner

var (
	width       = flag.Int("width", 800, "Canvas width")
	height      = flag.Int("height", 600, "Canvas height")
	historySize = flag.Int("history", webphoto.DefaultHistoryLimit, "Number of undo steps")
	tick        = flag.Duration("tick", webphoto.DefaultTickInterval, "Airbrush and spray tick interval")
	background  = flag.String("bg", "#ffffff", "Background color")
	seed        = flag.Uint64("seed", 0, "Random seed (0 seeds from the clock)")
	source      = flag.String("in", "", "Image file or URL imported as the first layer")
	script      = flag.String("script", "", "Gesture script to replay (- for stdin)")
	destination = flag.String("out", "", "Destination of the flattened canvas (- for stdout)")
	aiDelay     = flag.Duration("ai-delay", aisim.DefaultDelay, "Simulated AI latency")
	interactive = flag.Bool("tui", false, "Open the interactive terminal editor")
	verbose     = flag.Bool("v", false, "Verbose logging")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *script == "" && !*interactive {
		flag.Usage()
		log.Fatal(fmt.Sprintf("%s%s",
			utils.DecorateText("\nPlease provide a gesture script or use the -tui flag!", utils.ErrorMessage),
			utils.DefaultColor,
		))
	}

	var (
		l   *zap.Logger
		err error
	)
	if *verbose {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	zap.ReplaceGlobals(l)
	defer l.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.NewContext(ctx, l)

	now := time.Now()
	if err := run(ctx); err != nil {
		if spinner != nil {
			spinner.RestoreCursor()
		}
		fmt.Fprintf(os.Stderr, "%s %s\n",
			utils.DecorateText("\nError:", utils.ErrorMessage),
			utils.DecorateText(err.Error(), utils.DefaultMessage),
		)
		os.Exit(1)
	}
	if *destination != "" && *destination != pipeName {
		fmt.Fprintf(os.Stderr, "\nThe canvas has been saved as: %s %s\n\n",
			utils.DecorateText(filepath.Base(*destination), utils.SuccessMessage),
			utils.DefaultColor,
		)
		fmt.Fprintf(os.Stderr, "Execution time: %s\n", utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
	}
	l.Debug("done", zap.Duration("elapsed", time.Since(now)))
}

func run(ctx context.Context) error {
	l := logger.L(ctx)

	bg, err := utils.HexToRGBA(*background)
	if err != nil {
		return err
	}
	cfg := webphoto.DefaultConfig()
	cfg.Width, cfg.Height = *width, *height
	cfg.HistoryLimit = *historySize
	cfg.TickInterval = *tick
	cfg.Background = bg
	cfg.Seed = *seed

	// The destination is checked up front so a long session is not lost.
	out, err := openDestination(*destination)
	if err != nil {
		return err
	}
	if out != nil && out != os.Stdout {
		defer out.Close()
	}

	panel := webphoto.NewPanel(webphoto.DefaultToolOptions())
	sess, err := webphoto.NewSession(cfg, panel)
	if err != nil {
		return err
	}
	sel := webphoto.NewSelectionManager()
	sess.Engine().Selection = sel
	sess.SetLogger(l.Named("engine"))

	runCtx, cancel := context.WithCancel(ctx)
	errc := make(chan error, 1)
	go func() { errc <- sess.Run(runCtx) }()
	defer func() {
		cancel()
		<-errc
	}()

	ed := newEditor(sess, panel, sel)
	ed.ai.Delay = *aiDelay

	if *source != "" {
		if err := ed.importImage(ctx, *source); err != nil {
			return err
		}
	}

	if *interactive {
		if err := runTUI(ctx, ed); err != nil {
			return err
		}
	} else {
		in, err := openScript(*script)
		if err != nil {
			return err
		}
		defer in.Close()

		spinnerText := fmt.Sprintf("%s %s",
			utils.DecorateText("⚡ WEBPHOTO", utils.StatusMessage),
			utils.DecorateText("is replaying the script...", utils.DefaultMessage))
		spinner = utils.NewSpinner(os.Stderr, spinnerText, 200*time.Millisecond, true)
		spinner.Start()
		err = ed.replay(ctx, in)
		spinner.StopMsg = fmt.Sprintf("%s %s",
			utils.DecorateText("⚡ WEBPHOTO", utils.StatusMessage),
			utils.DecorateText("is replaying the script... ✔", utils.DefaultMessage))
		spinner.Stop()
		if err != nil {
			return err
		}
	}

	if err := sess.Flush(); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return webphoto.Encode(out, sess.Frame(), filepath.Ext(*destination))
}

// openDestination returns the writer of the flattened canvas, or nil when no
// destination was requested.
func openDestination(path string) (*os.File, error) {
	switch path {
	case "":
		return nil, nil
	case pipeName:
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return nil, errors.New("`-` should be used with a pipe for stdout")
		}
		return os.Stdout, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("unable to create the destination file: %w", err)
	}
	return f, nil
}

func openScript(path string) (io.ReadCloser, error) {
	if path == pipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, errors.New("`-` should be used with a pipe for stdin")
		}
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open the script file: %w", err)
	}
	return f, nil
}

// loadImage decodes a local image file, or downloads it first when src is a URL.
func loadImage(ctx context.Context, src string) (image.Image, error) {
	if !utils.IsValidUrl(src) {
		return webphoto.DecodeFile(src)
	}
	f, err := utils.DownloadImage(ctx, src)
	if err != nil {
		return nil, err
	}
	defer os.Remove(f.Name())
	defer f.Close()
	return webphoto.Decode(f)
}
