// Command train fits a network described by a YAML model file to a CSV
// dataset.
//
//	train -config model.yaml -data data.csv -labels 4 -header -split 0.8 -out model.bin
//
// -out receives the network as it stands after the last epoch; -checkpoint
// receives the network with the lowest epoch objective seen during training.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/sanyaade-teachings/mlpack/internal/config"
	"github.com/sanyaade-teachings/mlpack/internal/data"
	"github.com/sanyaade-teachings/mlpack/internal/net"
	"github.com/sanyaade-teachings/mlpack/internal/opt"
)

func main() {
	configPath := flag.String("config", "model.yaml", "YAML model file")
	dataPath := flag.String("data", "", "CSV dataset")
	labels := flag.String("labels", "", "comma-separated response column indices")
	header := flag.Bool("header", false, "skip the first CSV line")
	normalize := flag.Bool("normalize", true, "min-max normalize the predictors")
	split := flag.Float64("split", 0.8, "fraction of rows used for training")
	out := flag.String("out", "", "save the trained network to this file")
	checkpoint := flag.String("checkpoint", "", "save the best network seen during training to this file")
	gguf := flag.String("gguf", "", "export the trained weights as GGUF to this file")
	history := flag.String("history", "", "write per-epoch objectives to this CSV file")
	interval := flag.Int("log-every", 10, "log the objective every n epochs")
	flag.Parse()

	if *dataPath == "" || *labels == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	labelCols, err := parseColumns(*labels)
	if err != nil {
		log.Fatalf("Error parsing labels: %v", err)
	}
	ds, err := data.LoadCSV(*dataPath, labelCols, *header)
	if err != nil {
		log.Fatalf("Error loading data: %v", err)
	}
	for j := 0; j < ds.Mapper.Dimensionality(); j++ {
		if ds.Mapper.Type(j) == data.Categorical {
			fmt.Printf("Column %d is categorical with %d values\n", j, ds.Mapper.NumMappings(j))
		}
	}
	if *normalize {
		ds.Normalize()
	}
	train, test := ds.Split(*split)
	if train.Len() == 0 {
		log.Fatalf("Split %.2f leaves no training rows", *split)
	}

	network, optimizer, err := cfg.Build()
	if err != nil {
		log.Fatalf("Error building network: %v", err)
	}
	network.Summary(os.Stdout)

	callbacks, err := trainingCallbacks(network, *interval, *history, *checkpoint, *out)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	objective := network.Train(train.Predictors, train.Responses, optimizer, callbacks...)
	fmt.Printf("Training objective: %.6f\n", objective)
	// Evaluation below uses the full sets, not the optimizer's batch size.
	network.ReleaseMemory()

	network.SetDeterministic(true)
	fmt.Printf("Training loss: %.6f\n", network.Evaluate(train.Predictors, train.Responses))
	if test.Len() > 0 {
		fmt.Printf("Test loss: %.6f\n", network.Evaluate(test.Predictors, test.Responses))
		report(network, test)
	}

	if *out != "" {
		if err := network.Save(*out); err != nil {
			log.Fatalf("Error saving network: %v", err)
		}
		fmt.Printf("Network saved to %s\n", *out)
	}
	if *gguf != "" {
		if err := network.SaveGGUF(*gguf, net.GGMLTypeF32); err != nil {
			log.Fatalf("Error exporting GGUF: %v", err)
		}
		fmt.Printf("Weights exported to %s\n", *gguf)
	}
}

// trainingCallbacks assembles the callbacks selected by the flags. The best
// network is checkpointed to its own file so the final save to out does not
// replace it.
func trainingCallbacks(model opt.Saver, interval int, history, checkpoint, out string) ([]opt.Callback, error) {
	callbacks := []opt.Callback{opt.Logger{Interval: interval}}
	if history != "" {
		callbacks = append(callbacks, opt.NewCSVLogger(history, false))
	}
	if checkpoint != "" {
		if checkpoint == out {
			return nil, fmt.Errorf("-checkpoint and -out both name %s", out)
		}
		callbacks = append(callbacks, opt.NewModelCheckpoint(checkpoint, model))
	}
	return callbacks, nil
}

// report prints the first few test predictions next to their targets.
func report(network *net.Network, test *data.Dataset) {
	var pred mat.Dense
	network.Predict(test.Predictors, &pred, 32)
	rows := min(test.Len(), 5)
	fmt.Println("Sample predictions:")
	for i := 0; i < rows; i++ {
		fmt.Printf("  predicted=%v target=%v\n", pred.RawRowView(i), test.Responses.RawRowView(i))
	}
}

func parseColumns(s string) ([]int, error) {
	var cols []int
	for _, f := range strings.Split(s, ",") {
		c, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("invalid column %q: %w", f, err)
		}
		cols = append(cols, c)
	}
	return cols, nil
}
