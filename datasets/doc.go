// Package datasets implements the path-context corpus reader, the token
// vocabularies and the batched train/dev/test loaders of the code2vec
// trainer.
package datasets
