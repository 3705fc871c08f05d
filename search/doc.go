// Package search runs sequential random-sampling hyperparameter studies
// with median pruning of unpromising trials.
package search
