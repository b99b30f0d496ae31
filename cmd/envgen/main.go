// Command envgen edits a scene file from the command line: it loads the scene, runs a
// preset, a script, and/or one command against it, and saves the result.
//
//	envgen -preset presets/city.yaml
//	envgen -script build.txt -seed 42
//	envgen scatter -curve street -sources house,tree -count 12 -offset 2
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"env-generator/internal/commands"
	"env-generator/internal/engineconfig"
	"env-generator/internal/logger"
	"env-generator/internal/scene"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	prefs, cfgErr := engineconfig.Resolve()

	scenePath := flag.String("scene", prefs.ScenePath, "scene file to load and save")
	presetPath := flag.String("preset", "", "preset file to apply (yaml, toml or json)")
	scriptPath := flag.String("script", "", "file with one command per line")
	seed := flag.Uint64("seed", prefs.DefaultSeed, "seed for runs without their own (0 = time-based)")
	dryRun := flag.Bool("n", false, "do not save the scene")
	list := flag.Bool("commands", false, "list commands and exit")
	flag.Parse()

	log := logger.New(prefs.LogPath)
	log.SetEcho(os.Stderr)
	if cfgErr != nil {
		log.Error(cfgErr)
	}

	scn, err := scene.Load(*scenePath)
	if errors.Is(err, fs.ErrNotExist) {
		scn = scene.New()
	} else if err != nil {
		log.Error(err)
		return err
	}

	session := commands.NewSession(scn, *scenePath, *seed, log)
	if *list {
		for _, name := range session.Registry.Names() {
			usage, _ := session.Registry.Usage(name)
			fmt.Println(usage)
		}
		return nil
	}

	changed := false
	session.OnChange = func() { changed = true }

	if *presetPath != "" {
		if err := session.Registry.Execute([]string{"preset", *presetPath}); err != nil {
			log.Error(err)
			return err
		}
	}
	if *scriptPath != "" {
		lines, err := readLines(*scriptPath)
		if err != nil {
			log.Error(err)
			return err
		}
		if err := session.RunScript(lines); err != nil {
			return err
		}
	}
	if args := flag.Args(); len(args) > 0 {
		if err := session.Registry.Execute(args); err != nil {
			log.Error(err)
			return err
		}
	}

	if !changed || *dryRun {
		return nil
	}
	if err := session.Scene().Save(*scenePath); err != nil {
		log.Error(err)
		return err
	}
	log.Logf("saved %s: %d objects", *scenePath, session.Scene().ObjectCount())
	return nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}
