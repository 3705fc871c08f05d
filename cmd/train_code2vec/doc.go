// Package main trains the code2vec sequence classifier on a path-context
// corpus. A single run trains with the configured hyperparameters and,
// with --write, exports code vectors and a checkpoint whenever the dev
// F1 improves; --find-hyperparams instead searches the hyperparameter
// space with random sampling and median pruning.
package main
