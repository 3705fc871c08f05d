package trainer

import "math"
import "os"
import "path/filepath"

import "github.com/pkg/errors"
import "go.uber.org/zap"
import "gonum.org/v1/gonum/mat"

import "github.com/neurlang/code2vec/datasets"
import "github.com/neurlang/code2vec/learning"
import "github.com/neurlang/code2vec/metrics"

// CheckpointName is the file the model is persisted under inside the
// checkpoint directory.
const CheckpointName = "code2vec.model"

// Encoder is the model contract the loop trains: a forward pass over one
// batch of id matrices, gradient accumulation from the logits gradient,
// and access to the trainable parameters.
type Encoder interface {
	Forward(starts, paths, ends [][]int) (logits, code, attn *mat.Dense)
	Backward(dlogits *mat.Dense)
	Parameters() []*learning.Param
	SetTraining(training bool)
}

// Saver persists encoder weights. The reference encoder satisfies it.
type Saver interface {
	WriteZlibWeightsToFile(name string) error
}

// Provider hands out fresh batch sources per epoch. Refresh may resample
// or reshuffle the training split.
type Provider interface {
	Refresh() error
	Train() datasets.Source
	Dev() datasets.Source
	Test() datasets.Source
}

// LabelVocab is the read-only label table slice the loop and the
// exporter borrow.
type LabelVocab interface {
	Token(id int) string
}

// Loop drives epochs of training and evaluation over one encoder and
// one optimizer, both exclusively owned by this invocation.
type Loop struct {
	Encoder   Encoder
	Optimizer learning.Optimizer
	Provider  Provider
	Engine    *metrics.Engine
	Vocab     LabelVocab

	// Weights are per-class loss weights, typically inverse label
	// frequencies. Nil means uniform.
	Weights []float64

	MaxEpoch int
	// BadEpochLimit is the early-stop patience; 0 means the default 10.
	BadEpochLimit int

	Sink    MetricSink
	Scalars ScalarSink
	Logger  *zap.Logger

	// Trial, when non-nil, receives per-epoch objective reports and may
	// prune the run. Checkpointing is disabled under a trial.
	Trial Trial

	// Write enables vector export and checkpointing on improvement.
	Write          bool
	Saver          Saver
	VectorsPath    string
	ModelPath      string
	TestResultPath string
	EncodeSize     int
}

type splitScores struct {
	loss float64
	res  metrics.Result
}

// Run executes the loop until the epoch budget is exhausted, the
// early-stop rule fires or the trial prunes. Any failure during the
// forward/backward pass, evaluation or persistence is fatal to the run.
func (l *Loop) Run() (Result, error) {
	if l.MaxEpoch <= 0 {
		return Result{}, errors.Errorf("max epoch must be positive, got %d", l.MaxEpoch)
	}
	badLimit := l.BadEpochLimit
	if badLimit <= 0 {
		badLimit = 10
	}

	var (
		bestF1      float64
		hasBest     bool
		lastLoss    float64
		hasLastLoss bool
		lastAcc     float64
		hasLastAcc  bool
		badCount    int
	)

	status := Completed
	epochs := 0
	for epoch := 0; epoch < l.MaxEpoch; epoch++ {
		epochs = epoch + 1

		if err := l.Provider.Refresh(); err != nil {
			return Result{}, errors.Wrap(err, "refresh dataset")
		}

		trainLoss, err := l.trainEpoch()
		if err != nil {
			return Result{}, errors.Wrapf(err, "epoch %d", epoch)
		}

		dev, err := l.evaluate(l.Provider.Dev())
		if err != nil {
			return Result{}, errors.Wrapf(err, "epoch %d dev", epoch)
		}
		test, err := l.evaluate(l.Provider.Test())
		if err != nil {
			return Result{}, errors.Wrapf(err, "epoch %d test", epoch)
		}

		if l.Logger != nil {
			l.Logger.Info("epoch", zap.Int("epoch", epoch))
		}
		l.emit("train_loss", trainLoss, epoch)
		l.emit("dev_loss", dev.loss, epoch)
		l.emit("test_loss", test.loss, epoch)
		l.emitSplit("dev", dev.res, epoch)
		l.emitSplit("test", test.res, epoch)

		if l.Trial != nil {
			l.Trial.Report(1-dev.res.F1, epoch)
			if l.Trial.ShouldPrune(epoch) {
				status = Pruned
				break
			}
		}

		if !hasBest || bestF1 < dev.res.F1 {
			bestF1 = dev.res.F1
			hasBest = true
			l.emit("best_f1", bestF1, epoch)
			if l.Trial == nil && l.Write {
				if err := l.persist(); err != nil {
					return Result{}, errors.Wrapf(err, "epoch %d persist", epoch)
				}
			}
		}

		// Any improvement in either train loss or dev accuracy resets
		// the patience counter.
		if !hasLastLoss || trainLoss < lastLoss || !hasLastAcc || lastAcc < dev.res.Accuracy {
			lastLoss = trainLoss
			lastAcc = dev.res.Accuracy
			hasLastLoss = true
			hasLastAcc = true
			badCount = 0
		} else {
			badCount++
		}
		if badCount > badLimit {
			if l.Logger != nil {
				l.Logger.Info("early stop",
					zap.Float64("train_loss", trainLoss),
					zap.Int("bad_epochs", badCount))
			}
			status = EarlyStopped
			break
		}
	}

	return Result{
		Status:    status,
		Objective: 1 - bestF1,
		BestF1:    bestF1,
		Epochs:    epochs,
	}, nil
}

// trainEpoch runs one pass over the training split. The reported loss is
// the running sum across batches, not normalized by example count.
func (l *Loop) trainEpoch() (float64, error) {
	l.Encoder.SetTraining(true)
	params := l.Encoder.Parameters()

	trainLoss := 0.0
	src := l.Provider.Train()
	for batch := src.Next(); batch != nil; batch = src.Next() {
		l.Optimizer.ZeroGrad(params)
		logits, _, _ := l.Encoder.Forward(batch.Starts, batch.Paths, batch.Ends)
		loss, dlogits := WeightedNLL(logits, batch.Labels, l.Weights)
		if math.IsNaN(loss) || math.IsInf(loss, 0) {
			return 0, errors.Errorf("training loss diverged to %v", loss)
		}
		l.Encoder.Backward(dlogits)
		l.Optimizer.Step(params)
		trainLoss += loss
	}
	if err := src.Err(); err != nil {
		return 0, errors.Wrap(err, "train batches")
	}
	return trainLoss, nil
}

func (l *Loop) emit(name string, value float64, epoch int) {
	if l.Sink != nil {
		l.Sink.Emit(name, value)
	}
	if l.Scalars != nil {
		l.Scalars.Add(name, value, epoch)
	}
}

func (l *Loop) emitSplit(split string, r metrics.Result, epoch int) {
	l.emit(split+"_accuracy", r.Accuracy, epoch)
	l.emit(split+"_precision", r.Precision, epoch)
	l.emit(split+"_recall", r.Recall, epoch)
	l.emit(split+"_f1", r.F1, epoch)
}

// persist writes the vector file (header plus train and test vectors),
// the per-example test result file and the model checkpoint. Partially
// written files on failure are the caller's to clean up.
func (l *Loop) persist() error {
	train := l.Provider.Train()
	test := l.Provider.Test()

	fv, err := os.Create(l.VectorsPath)
	if err != nil {
		return errors.Wrapf(err, "create vector file %s", l.VectorsPath)
	}
	defer fv.Close()

	if err := WriteVectorHeader(fv, train.Examples()+test.Examples(), l.EncodeSize); err != nil {
		return err
	}
	if _, err := ExportVectors(l.Encoder, train, l.Vocab, fv, nil); err != nil {
		return errors.Wrap(err, "export train vectors")
	}

	fr, err := os.Create(l.TestResultPath)
	if err != nil {
		return errors.Wrapf(err, "create test result file %s", l.TestResultPath)
	}
	defer fr.Close()

	if _, err := ExportVectors(l.Encoder, test, l.Vocab, fv, fr); err != nil {
		return errors.Wrap(err, "export test vectors")
	}

	if l.Saver != nil {
		name := filepath.Join(l.ModelPath, CheckpointName)
		if err := l.Saver.WriteZlibWeightsToFile(name); err != nil {
			return err
		}
	}
	return nil
}
