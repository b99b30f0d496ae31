package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"env-generator/internal/commands"
	"env-generator/internal/engineconfig"
	"env-generator/internal/graphics"
	"env-generator/internal/logger"
	"env-generator/internal/scene"
	"env-generator/internal/terminal"
	"env-generator/internal/viewer"
)

func main() {
	prefs, err := engineconfig.Resolve()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	scenePath := flag.String("scene", prefs.ScenePath, "scene file to show and save to")
	fullscreen := flag.Bool("fullscreen", false, "open fullscreen")
	flag.Parse()

	log := logger.New(prefs.LogPath)
	scn, err := scene.Load(*scenePath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		scn = scene.New()
		// The watcher needs the directory to exist.
		_ = os.MkdirAll(filepath.Dir(*scenePath), 0755)
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	session := commands.NewSession(scn, *scenePath, prefs.DefaultSeed, log)
	view, err := viewer.New(session, *scenePath, prefs.Watch)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer view.Close()
	view.GridVisible = prefs.GridVisible
	view.Overlay.ShowFPS = prefs.ShowFPS
	view.Overlay.ShowMemAlloc = prefs.ShowMemAlloc
	view.Overlay.ShowStats = prefs.ShowStats
	term := terminal.New(session)
	log.Logf("viewing %s: %d objects (ESC opens the terminal)", *scenePath, scn.ObjectCount())

	update := func() {
		term.Update()
		view.Update(term.IsOpen())
	}
	draw := func() {
		view.Draw()
		term.Draw()
	}
	graphics.Run(graphics.Window{
		Title:      "envgen - " + filepath.Base(*scenePath),
		Fullscreen: *fullscreen,
		Background: view.Background,
	}, update, draw)
}
