package main

import (
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/sanyaade-teachings/mlpack/internal/activations"
	"github.com/sanyaade-teachings/mlpack/internal/layer"
	"github.com/sanyaade-teachings/mlpack/internal/loss"
	"github.com/sanyaade-teachings/mlpack/internal/net"
	"github.com/sanyaade-teachings/mlpack/internal/opt"
	"github.com/sanyaade-teachings/mlpack/internal/weights"
)

func main() {
	fmt.Println("=== XOR Training Example ===")

	// XOR is not linearly separable, so it needs a hidden layer.
	in, hidden, out := 2, 4, 1

	fmt.Printf("Network architecture: %d-%d-%d\n", in, hidden, out)
	fmt.Println("Activation functions: Tanh (hidden), Sigmoid (output)")
	fmt.Println("Loss function: MSE")
	fmt.Println("Optimizer: Adam with learning rate 0.05")

	network := net.New(loss.MSE{}, weights.Glorot{Seed: 42}, net.WithInputDimensions(in), net.WithLayers(
		layer.NewLinear(in, hidden),
		layer.NewActivation(activations.Tanh{}),
		layer.NewLinear(hidden, out),
		layer.NewActivation(activations.Sigmoid{}),
	))
	network.Summary(os.Stdout)

	trainX := mat.NewDense(4, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		1, 1,
	})
	trainY := mat.NewDense(4, 1, []float64{0, 1, 1, 0})

	optimizer := opt.NewMiniBatch(opt.NewAdam(0.05), 4)
	optimizer.MaxIter = 20000
	optimizer.Tolerance = 0
	optimizer.Shuffle = false
	network.Train(trainX, trainY, optimizer, opt.Logger{Interval: 500})

	fmt.Println("\nTesting trained network:")
	var pred mat.Dense
	network.Predict(trainX, &pred, 4)
	for i := 0; i < 4; i++ {
		fmt.Printf("Input: %v, Predicted: %.4f, Target: %v\n",
			trainX.RawRowView(i), pred.At(i, 0), trainY.At(i, 0))
	}

	fmt.Println("\nSaving network to disk...")
	if err := network.Save("xor_network.bin"); err != nil {
		fmt.Printf("Error saving network: %v\n", err)
		return
	}
	fmt.Println("Network saved successfully!")

	fmt.Println("Loading network from disk...")
	loadedNetwork, err := net.Load("xor_network.bin")
	if err != nil {
		fmt.Printf("Error loading network: %v\n", err)
		return
	}
	fmt.Println("Network loaded successfully!")

	fmt.Println("\nVerifying loaded network:")
	var loadedPred mat.Dense
	loadedNetwork.Predict(trainX, &loadedPred, 4)
	allMatch := true
	for i := 0; i < 4; i++ {
		match := "OK"
		if math.Abs(pred.At(i, 0)-loadedPred.At(i, 0)) > 1e-6 {
			match = "MISMATCH"
			allMatch = false
		}
		fmt.Printf("Input: %v, Original: %.4f, Loaded: %.4f [%s]\n",
			trainX.RawRowView(i), pred.At(i, 0), loadedPred.At(i, 0), match)
	}

	if allMatch {
		fmt.Println("\nSUCCESS: All predictions match between original and loaded network!")
	} else {
		fmt.Println("\nFAILURE: Predictions differ between original and loaded network!")
	}
}
