// Infer the hidden roles of a Secret Hitler game from its public record.
package main

import (
	"context"
	"flag"
	"io"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/timpalpant/alphahitler"
	"github.com/timpalpant/alphahitler/gamestate"
	"github.com/timpalpant/alphahitler/model"
	"github.com/timpalpant/alphahitler/roles"
)

type runOptions struct {
	gameFile string
	round    int
	top      int
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		glog.Fatal(err)
	}

	gameFile := flag.String("game", "", "YAML file with the game record")
	round := flag.Int("round", -1, "Last round to use (negative counts back from the end)")
	top := flag.Int("top", 10, "Number of most likely role assignments to print")
	flag.StringVar(&cfg.ModelDir, "model_dir", cfg.ModelDir, "Directory of behavior model tables")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of assignments to score in parallel")
	flag.BoolVar(&cfg.ConditionOnActuals, "condition_on_actuals", cfg.ConditionOnActuals,
		"Use recorded ground-truth card counts")
	debugAddr := flag.String("debug_addr", "", "Serve pprof and expvar on this address")
	flag.Parse()

	if *gameFile == "" {
		glog.Fatal("-game is required")
	}
	if *debugAddr != "" {
		go http.ListenAndServe(*debugAddr, nil)
	}

	opts := runOptions{gameFile: *gameFile, round: *round, top: *top}
	if err := run(context.Background(), cfg, opts, os.Stdout); err != nil {
		glog.Fatal(err)
	}
}

func run(ctx context.Context, cfg Config, opts runOptions, w io.Writer) error {
	repo, err := loadModel(cfg.ModelDir)
	if err != nil {
		return err
	}
	resolver, err := model.NewResolver(cfg.ParamCacheSize)
	if err != nil {
		return err
	}

	g, err := loadGame(opts.gameFile)
	if err != nil {
		return err
	}
	g = g.Truncate(opts.round)
	glog.Infof("Loaded game with %d players, using %d sessions", len(g.Players), len(g.Sessions))

	evaluator := alphahitler.NewEvaluator(repo, resolver, alphahitler.Options{
		ConditionOnActuals: cfg.ConditionOnActuals,
	})
	predictor := alphahitler.NewPredictor(evaluator, cfg.Workers)
	start := time.Now()
	posterior, err := predictor.Predict(ctx, g)
	if err != nil {
		return err
	}
	glog.Infof("Prediction took %v", time.Since(start))

	printPosterior(w, g.Players, posterior, opts.top)
	return nil
}

func loadModel(dir string) (*model.Repository, error) {
	if dir == "" {
		return model.Default()
	}

	glog.Infof("Loading behavior model from %v", dir)
	return model.LoadDir(dir)
}

func loadGame(filename string) (gamestate.Game, error) {
	f, err := os.Open(filename)
	if err != nil {
		return gamestate.Game{}, err
	}
	defer f.Close()

	var g gamestate.Game
	if err := yaml.NewDecoder(f).Decode(&g); err != nil {
		return gamestate.Game{}, errors.Wrapf(err, "decoding %v", filename)
	}

	return g, nil
}

func printPosterior(w io.Writer, players []string, p *alphahitler.Posterior, top int) {
	printer := message.NewPrinter(language.English)

	printer.Fprintf(w, "%-12s %8s %8s %8s\n", "Player", "Liberal", "Fascist", "Hitler")
	for _, name := range players {
		m, _ := p.Marginal(name)
		printer.Fprintf(w, "%-12s %7.1f%% %7.1f%% %7.1f%%\n", name,
			100*m[roles.Liberal], 100*m[roles.Fascist], 100*m[roles.Hitler])
	}

	printer.Fprintf(w, "\nMost likely of %d role assignments:\n", len(p.Assignments))
	for _, wa := range p.Top(top) {
		printer.Fprintf(w, "%7.2f%%  %v\n", 100*wa.Probability, wa.Assignment)
	}
}
