// Package trainer provides the training orchestration of the code2vec
// model: the epoch loop with checkpoint-on-improvement and early
// stopping, split evaluation through the metric engine, code vector
// export and the metric emission sinks.
package trainer
