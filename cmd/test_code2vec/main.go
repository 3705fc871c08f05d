package main

import "io"
import "os"
import "path/filepath"

import "github.com/alexflint/go-arg"
import "go.uber.org/zap"

import "github.com/neurlang/code2vec/config"
import "github.com/neurlang/code2vec/datasets"
import "github.com/neurlang/code2vec/metrics"
import "github.com/neurlang/code2vec/net/code2vec"
import "github.com/neurlang/code2vec/trainer"

func main() {
	var opt config.Options
	arg.MustParse(&opt)

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if opt.Config != "" {
		if err := opt.LoadFile(opt.Config); err != nil {
			logger.Fatal("config", zap.Error(err))
		}
	}
	if err := opt.Validate(); err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	method, err := metrics.ParseMethod(opt.EvalMethod)
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	reader, err := datasets.NewReader(opt.CorpusPath, opt.PathIdxPath, opt.TerminalIdxPath)
	if err != nil {
		logger.Fatal("corpus", zap.Error(err))
	}

	// the same seed replays the training run's split, so the test split
	// here is the one the checkpoint never trained on
	builder := datasets.NewBuilder(reader, datasets.BuildOptions{
		BatchSize:     opt.BatchSize,
		MaxPathLength: opt.MaxPathLength,
		NumWorkers:    opt.NumWorkers,
		Seed:          opt.RandomSeed,
	})

	model := code2vec.New(code2vec.Options{
		TerminalCount:     reader.TerminalVocab.DuplicateLen(),
		PathCount:         reader.PathVocab.DuplicateLen(),
		LabelCount:        reader.LabelVocab.DuplicateLen(),
		TerminalEmbedSize: opt.TerminalEmbedSize,
		PathEmbedSize:     opt.PathEmbedSize,
		EncodeSize:        opt.EncodeSize,
		DropoutProb:       opt.DropoutProb,
		Seed:              opt.RandomSeed,
	})

	checkpoint := filepath.Join(opt.ModelPath, trainer.CheckpointName)
	if err := trainer.Resume(model, true, checkpoint); err != nil {
		logger.Fatal("load checkpoint", zap.Error(err))
	}
	logger.Info("checkpoint", zap.String("path", checkpoint))

	weights := trainer.ClassWeights(reader.LabelVocab.FreqList())
	engine := metrics.NewEngine(reader.LabelVocab, method)

	loss, res, err := trainer.Evaluate(model, builder.Test(), engine, weights)
	if err != nil {
		logger.Fatal("evaluate", zap.Error(err))
	}

	f, err := os.Create(opt.TestResultPath)
	if err != nil {
		logger.Fatal("test result file", zap.Error(err))
	}
	defer f.Close()
	count, err := trainer.ExportVectors(model, builder.Test(), reader.LabelVocab, io.Discard, f)
	if err != nil {
		logger.Fatal("test result file", zap.Error(err))
	}
	logger.Info("test results",
		zap.String("path", opt.TestResultPath),
		zap.Int("examples", count))

	sink := trainer.NewZapSink(logger)
	sink.Emit("test_loss", loss)
	sink.Emit("test_accuracy", res.Accuracy)
	sink.Emit("test_precision", res.Precision)
	sink.Emit("test_recall", res.Recall)
	sink.Emit("test_f1", res.F1)
}
