// Package main evaluates a trained code2vec checkpoint on the held-out
// test split and writes the per-example test result file.
package main
