// Package config holds the run configuration of the code2vec trainer.
package config

import "os"

import "github.com/pkg/errors"
import "gopkg.in/yaml.v3"

// Options is an immutable snapshot of one run's hyperparameters and paths.
// It is built once from the command line (and an optional yaml file) and,
// during hyperparameter search, copied and overridden per trial.
type Options struct {
	MaxEpoch  int     `arg:"--max-epoch" yaml:"max_epoch" default:"100" help:"number of training epochs"`
	BatchSize int     `arg:"--batch-size" yaml:"batch_size" default:"512" help:"training batch size"`
	Lr        float64 `arg:"--lr" yaml:"lr" default:"0.001" help:"adam learning rate"`
	BetaMin   float64 `arg:"--beta-min" yaml:"beta_min" default:"0.9" help:"adam beta1"`
	BetaMax   float64 `arg:"--beta-max" yaml:"beta_max" default:"0.999" help:"adam beta2"`

	WeightDecay float64 `arg:"--weight-decay" yaml:"weight_decay" default:"0" help:"L2 weight decay"`
	DropoutProb float64 `arg:"--dropout-prob" yaml:"dropout_prob" default:"0.6" help:"dropout probability on context vectors"`

	EncodeSize        int `arg:"--encode-size" yaml:"encode_size" default:"128" help:"code vector size"`
	TerminalEmbedSize int `arg:"--terminal-embed-size" yaml:"terminal_embed_size" default:"100" help:"terminal embedding size"`
	PathEmbedSize     int `arg:"--path-embed-size" yaml:"path_embed_size" default:"100" help:"path embedding size"`
	MaxPathLength     int `arg:"--max-path-length" yaml:"max_path_length" default:"200" help:"max path contexts per example"`

	EvalMethod string `arg:"--eval-method" yaml:"eval_method" default:"subtoken" help:"exact, subtoken or ave_subtoken"`

	NumWorkers int   `arg:"--num-workers" yaml:"num_workers" default:"4" help:"batch producer workers"`
	RandomSeed int64 `arg:"--random-seed" yaml:"random_seed" default:"1" help:"prng seed"`
	Device     string `arg:"--device" yaml:"device" default:"auto" help:"compute device preference"`

	FindHyperparams bool `arg:"--find-hyperparams" yaml:"find_hyperparams" help:"run the hyperparameter search instead of a single training run"`
	NumTrials       int  `arg:"--num-trials" yaml:"num_trials" default:"100" help:"search trial budget"`

	CorpusPath      string `arg:"--corpus-path" yaml:"corpus_path" help:"path-context corpus file"`
	PathIdxPath     string `arg:"--path-idx-path" yaml:"path_idx_path" help:"path vocabulary index file"`
	TerminalIdxPath string `arg:"--terminal-idx-path" yaml:"terminal_idx_path" help:"terminal vocabulary index file"`

	Write          bool   `arg:"--write" yaml:"write" help:"persist code vectors and checkpoints on improvement"`
	VectorsPath    string `arg:"--vectors-path" yaml:"vectors_path" default:"code.vectors" help:"code vector output file"`
	ModelPath      string `arg:"--model-path" yaml:"model_path" default:"." help:"checkpoint directory"`
	TestResultPath string `arg:"--test-result-path" yaml:"test_result_path" default:"test_result.tsv" help:"per-example test result file"`
	ScalarPath     string `arg:"--scalar-path" yaml:"scalar_path" help:"optional scalar timeseries output file"`

	Config string `arg:"-c,--config" yaml:"-" help:"yaml config file overriding the flags"`
}

// LoadFile overlays o with the values of a yaml config file.
// Values from the file win over flags, matching how the reference
// trainers in this family configure themselves.
func (o *Options) LoadFile(fname string) error {
	data, err := os.ReadFile(fname)
	if err != nil {
		return errors.Wrapf(err, "read config %s", fname)
	}
	if err := yaml.Unmarshal(data, o); err != nil {
		return errors.Wrapf(err, "parse config %s", fname)
	}
	return nil
}

// Validate reports the first invalid option. All failures here are fatal
// at startup: nothing is retried.
func (o *Options) Validate() error {
	if o.MaxEpoch <= 0 {
		return errors.Errorf("max_epoch must be positive, got %d", o.MaxEpoch)
	}
	if o.BatchSize <= 0 {
		return errors.Errorf("batch_size must be positive, got %d", o.BatchSize)
	}
	if o.EncodeSize <= 0 || o.TerminalEmbedSize <= 0 || o.PathEmbedSize <= 0 {
		return errors.Errorf("embedding and encode sizes must be positive, got encode=%d terminal=%d path=%d",
			o.EncodeSize, o.TerminalEmbedSize, o.PathEmbedSize)
	}
	if o.MaxPathLength <= 0 {
		return errors.Errorf("max_path_length must be positive, got %d", o.MaxPathLength)
	}
	if o.DropoutProb < 0 || o.DropoutProb >= 1 {
		return errors.Errorf("dropout_prob must be in [0,1), got %v", o.DropoutProb)
	}
	if o.Lr <= 0 {
		return errors.Errorf("lr must be positive, got %v", o.Lr)
	}
	if o.BetaMin < 0 || o.BetaMin >= 1 || o.BetaMax < 0 || o.BetaMax >= 1 {
		return errors.Errorf("adam betas must be in [0,1), got %v and %v", o.BetaMin, o.BetaMax)
	}
	if o.WeightDecay < 0 {
		return errors.Errorf("weight_decay must not be negative, got %v", o.WeightDecay)
	}
	if o.NumWorkers <= 0 {
		return errors.Errorf("num_workers must be positive, got %d", o.NumWorkers)
	}
	switch o.EvalMethod {
	case "exact", "subtoken", "ave_subtoken":
	default:
		return errors.Errorf("unknown eval_method %q", o.EvalMethod)
	}
	if o.FindHyperparams && o.NumTrials <= 0 {
		return errors.Errorf("num_trials must be positive, got %d", o.NumTrials)
	}
	if o.CorpusPath == "" {
		return errors.New("corpus_path is mandatory")
	}
	if o.PathIdxPath == "" {
		return errors.New("path_idx_path is mandatory")
	}
	if o.TerminalIdxPath == "" {
		return errors.New("terminal_idx_path is mandatory")
	}
	return nil
}
