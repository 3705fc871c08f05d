package main

import "os"

import "github.com/alexflint/go-arg"
import "github.com/pkg/errors"
import "go.uber.org/zap"

import "github.com/neurlang/code2vec/config"
import "github.com/neurlang/code2vec/datasets"
import "github.com/neurlang/code2vec/device"
import "github.com/neurlang/code2vec/learning"
import "github.com/neurlang/code2vec/metrics"
import "github.com/neurlang/code2vec/net/code2vec"
import "github.com/neurlang/code2vec/search"
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

	dev := device.Select(opt.Device)
	logger.Info("device", zap.String("device", dev.String()))

	reader, err := datasets.NewReader(opt.CorpusPath, opt.PathIdxPath, opt.TerminalIdxPath)
	if err != nil {
		logger.Fatal("corpus", zap.Error(err))
	}
	logger.Info("corpus",
		zap.Int("examples", reader.Len()),
		zap.Int("terminals", reader.TerminalVocab.DuplicateLen()),
		zap.Int("paths", reader.PathVocab.DuplicateLen()),
		zap.Int("labels", reader.LabelVocab.DuplicateLen()))

	if opt.FindHyperparams {
		if err := findHyperparams(opt, reader, logger); err != nil {
			logger.Fatal("hyperparameter search", zap.Error(err))
		}
		return
	}

	res, err := trainOnce(opt, reader, nil, logger)
	if err != nil {
		logger.Fatal("training", zap.Error(err))
	}
	logger.Info("finished",
		zap.String("status", res.Status.String()),
		zap.Float64("best_f1", res.BestF1),
		zap.Int("epochs", res.Epochs))
}

// trainOnce builds a fresh model and runs the training loop for one
// configuration. Under a trial, checkpointing stays off no matter what
// the write flag says.
func trainOnce(opt config.Options, reader *datasets.Reader, trial trainer.Trial, logger *zap.Logger) (trainer.Result, error) {
	method, err := metrics.ParseMethod(opt.EvalMethod)
	if err != nil {
		return trainer.Result{}, err
	}

	builder := datasets.NewBuilder(reader, datasets.BuildOptions{
		BatchSize:     opt.BatchSize,
		MaxPathLength: opt.MaxPathLength,
		NumWorkers:    opt.NumWorkers,
		Seed:          opt.RandomSeed,
	})
	logger.Info("splits",
		zap.Int("train", builder.TrainLen()),
		zap.Int("dev", builder.DevLen()),
		zap.Int("test", builder.TestLen()))

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

	loop := &trainer.Loop{
		Encoder:        model,
		Optimizer:      learning.NewAdam(opt.Lr, opt.BetaMin, opt.BetaMax, opt.WeightDecay),
		Provider:       builder,
		Engine:         metrics.NewEngine(reader.LabelVocab, method),
		Vocab:          reader.LabelVocab,
		Weights:        trainer.ClassWeights(reader.LabelVocab.FreqList()),
		MaxEpoch:       opt.MaxEpoch,
		Sink:           trainer.NewZapSink(logger),
		Logger:         logger,
		Trial:          trial,
		Write:          opt.Write,
		Saver:          model,
		VectorsPath:    opt.VectorsPath,
		ModelPath:      opt.ModelPath,
		TestResultPath: opt.TestResultPath,
		EncodeSize:     opt.EncodeSize,
	}
	if opt.ScalarPath != "" {
		f, err := os.Create(opt.ScalarPath)
		if err != nil {
			return trainer.Result{}, errors.Wrapf(err, "create scalar log %s", opt.ScalarPath)
		}
		defer f.Close()
		loop.Scalars = trainer.TSVScalars{W: f}
	}
	return loop.Run()
}

// findHyperparams searches the usual code2vec intervals with median
// pruning of hopeless trials.
func findHyperparams(opt config.Options, reader *datasets.Reader, logger *zap.Logger) error {
	space := search.NewSpace().
		Int("encode_size", 100, 300, search.Log).
		Float("dropout_prob", 0.5, 0.9, search.Log).
		Int("batch_size", 256, 2048, search.Log).
		Float("adam_lr", 1e-5, 1e-1, search.Log).
		Float("weight_decay", 1e-10, 1e-3, search.Log)

	study, err := search.NewStudy(space, search.NewRandomSampler(opt.RandomSeed), search.MedianPruner{}, logger)
	if err != nil {
		return err
	}

	err = study.Optimize(func(t *search.Trial) (trainer.Result, error) {
		cfg := opt
		cfg.EncodeSize = t.Int("encode_size")
		cfg.DropoutProb = t.Float("dropout_prob")
		cfg.BatchSize = t.Int("batch_size")
		cfg.Lr = t.Float("adam_lr")
		cfg.WeightDecay = t.Float("weight_decay")
		return trainOnce(cfg, reader, t, logger)
	}, opt.NumTrials)
	if err != nil {
		return err
	}

	params, value, ok := study.Best()
	if !ok {
		return errors.New("no trial finished")
	}
	logger.Info("best trial",
		zap.Any("params", params),
		zap.Float64("objective", value))
	return nil
}
