package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/benbeisheim/chessrules/internal/cli"
	"github.com/benbeisheim/chessrules/internal/config"
	"github.com/benbeisheim/chessrules/internal/model"
)

func main() {
	cfg, err := config.Load("chess", os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	theme := cli.Theme(cfg.Theme)
	if !cli.ColorSupported(os.Stdout) {
		theme = cli.ThemeOff
	}

	// Rejections are reported at the prompt, so the engine's own log is muted.
	match := model.NewMatch(model.WithLogger(model.DiscardLogger()))
	view := cli.New(match, os.Stdout, theme)

	if cfg.Demo {
		err = view.Demo()
	} else {
		err = view.Run(cfg.HistoryFile)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
