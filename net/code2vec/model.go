// Package code2vec implements the attention-pooled path-context encoder:
// terminal and path embeddings, a tanh transform, soft attention over the
// contexts and a linear output layer. Forward produces logits, pooled
// code vectors and attention weights; Backward accumulates analytic
// gradients for the optimizers in the learning package.
package code2vec

import "math"
import "math/rand"

import "gonum.org/v1/gonum/mat"

import "github.com/neurlang/code2vec/learning"

// Options fix the model's shape. All counts and sizes must be positive;
// DropoutProb is the probability of zeroing a context-vector component
// during training.
type Options struct {
	TerminalCount int
	PathCount     int
	LabelCount    int

	TerminalEmbedSize int
	PathEmbedSize     int
	EncodeSize        int

	DropoutProb float64
	Seed        int64
}

// Model is one encoder instance. It is exclusively owned by a single
// training loop invocation: Forward caches activations that the next
// Backward consumes.
type Model struct {
	opt Options

	termEmbed *learning.Param // TerminalCount × dt
	pathEmbed *learning.Param // PathCount × dp
	transform *learning.Param // EncodeSize × (2dt+dp)
	attention *learning.Param // 1 × EncodeSize
	output    *learning.Param // LabelCount × EncodeSize
	bias      *learning.Param // 1 × LabelCount

	training bool
	rng      *rand.Rand
	cache    *batchCache
}

type batchCache struct {
	starts, paths, ends [][]int
	dropMask            [][][]float64 // b, l, D; nil when not training
	contexts            [][][]float64 // b, l, D, after dropout
	hidden              [][][]float64 // b, l, E
	alpha               [][]float64   // b, l
	valid               [][]bool      // b, l
	code                [][]float64   // b, E
}

// New builds a model with seeded uniform initialization.
func New(opt Options) *Model {
	rng := rand.New(rand.NewSource(opt.Seed))
	contextSize := 2*opt.TerminalEmbedSize + opt.PathEmbedSize
	return &Model{
		opt:       opt,
		termEmbed: learning.NewParam("terminal_embed", opt.TerminalCount, opt.TerminalEmbedSize, rng),
		pathEmbed: learning.NewParam("path_embed", opt.PathCount, opt.PathEmbedSize, rng),
		transform: learning.NewParam("transform", opt.EncodeSize, contextSize, rng),
		attention: learning.NewParam("attention", 1, opt.EncodeSize, rng),
		output:    learning.NewParam("output", opt.LabelCount, opt.EncodeSize, rng),
		bias:      learning.NewParam("bias", 1, opt.LabelCount, rng),
		rng:       rng,
	}
}

// Parameters returns the trainable parameters in a stable order.
func (m *Model) Parameters() []*learning.Param {
	return []*learning.Param{m.termEmbed, m.pathEmbed, m.transform, m.attention, m.output, m.bias}
}

// SetTraining toggles dropout on (training) or off (evaluation).
func (m *Model) SetTraining(training bool) {
	m.training = training
}

// Options returns the model's shape.
func (m *Model) Options() Options {
	return m.opt
}

// Forward runs the encoder over one batch of id matrices. All rows must
// carry the same number of context slots; contexts whose three ids are
// all padding are masked out of the attention. Returns logits
// (batch × labels), code vectors (batch × encode) and attention weights
// (batch × contexts, zero on masked slots).
func (m *Model) Forward(starts, paths, ends [][]int) (logits, code, attn *mat.Dense) {
	batch := len(starts)
	width := 0
	if batch > 0 {
		width = len(starts[0])
	}
	dt := m.opt.TerminalEmbedSize
	dp := m.opt.PathEmbedSize
	contextSize := 2*dt + dp

	cache := &batchCache{
		starts:   starts,
		paths:    paths,
		ends:     ends,
		contexts: make([][][]float64, batch),
		hidden:   make([][][]float64, batch),
		alpha:    make([][]float64, batch),
		valid:    make([][]bool, batch),
		code:     make([][]float64, batch),
	}
	if m.training && m.opt.DropoutProb > 0 {
		cache.dropMask = make([][][]float64, batch)
	}

	logits = mat.NewDense(batch, m.opt.LabelCount, nil)
	code = mat.NewDense(batch, m.opt.EncodeSize, nil)
	attn = mat.NewDense(batch, width, nil)

	termData := m.termEmbed.Value.RawMatrix().Data
	pathData := m.pathEmbed.Value.RawMatrix().Data
	transData := m.transform.Value.RawMatrix().Data
	attnData := m.attention.Value.RawMatrix().Data
	outData := m.output.Value.RawMatrix().Data
	biasData := m.bias.Value.RawMatrix().Data

	for b := 0; b < batch; b++ {
		cache.contexts[b] = make([][]float64, width)
		cache.hidden[b] = make([][]float64, width)
		cache.alpha[b] = make([]float64, width)
		cache.valid[b] = make([]bool, width)
		if cache.dropMask != nil {
			cache.dropMask[b] = make([][]float64, width)
		}

		scores := make([]float64, width)
		for l := 0; l < width; l++ {
			s, p, e := starts[b][l], paths[b][l], ends[b][l]
			if s == 0 && p == 0 && e == 0 {
				scores[l] = math.Inf(-1)
				continue
			}
			cache.valid[b][l] = true

			ctx := make([]float64, contextSize)
			copy(ctx[:dt], termData[s*dt:(s+1)*dt])
			copy(ctx[dt:dt+dp], pathData[p*dp:(p+1)*dp])
			copy(ctx[dt+dp:], termData[e*dt:(e+1)*dt])

			if cache.dropMask != nil {
				mask := make([]float64, contextSize)
				scale := 1 / (1 - m.opt.DropoutProb)
				for i := range mask {
					if m.rng.Float64() >= m.opt.DropoutProb {
						mask[i] = scale
					}
				}
				for i := range ctx {
					ctx[i] *= mask[i]
				}
				cache.dropMask[b][l] = mask
			}
			cache.contexts[b][l] = ctx

			h := make([]float64, m.opt.EncodeSize)
			for i := 0; i < m.opt.EncodeSize; i++ {
				sum := 0.0
				row := transData[i*contextSize : (i+1)*contextSize]
				for j, x := range ctx {
					sum += row[j] * x
				}
				h[i] = math.Tanh(sum)
			}
			cache.hidden[b][l] = h

			score := 0.0
			for i, a := range attnData {
				score += a * h[i]
			}
			scores[l] = score
		}

		softmaxInto(cache.alpha[b], scores)

		cv := make([]float64, m.opt.EncodeSize)
		cache.code[b] = cv
		for l := 0; l < width; l++ {
			if !cache.valid[b][l] {
				continue
			}
			a := cache.alpha[b][l]
			for i, h := range cache.hidden[b][l] {
				cv[i] += a * h
			}
			attn.Set(b, l, a)
		}
		code.SetRow(b, cv)

		for c := 0; c < m.opt.LabelCount; c++ {
			sum := biasData[c]
			row := outData[c*m.opt.EncodeSize : (c+1)*m.opt.EncodeSize]
			for i, v := range cv {
				sum += row[i] * v
			}
			logits.Set(b, c, sum)
		}
	}

	m.cache = cache
	return logits, code, attn
}

// softmaxInto writes the stable softmax of scores into dst. Slots at
// -inf get weight zero; all -inf yields all zeros.
func softmaxInto(dst, scores []float64) {
	max := math.Inf(-1)
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	if math.IsInf(max, -1) {
		for i := range dst {
			dst[i] = 0
		}
		return
	}
	sum := 0.0
	for i, s := range scores {
		if math.IsInf(s, -1) {
			dst[i] = 0
			continue
		}
		dst[i] = math.Exp(s - max)
		sum += dst[i]
	}
	for i := range dst {
		dst[i] /= sum
	}
}

// Backward accumulates gradients of the last Forward's batch given the
// gradient of the loss with respect to the logits. Forward must have run
// on the same batch first.
func (m *Model) Backward(dlogits *mat.Dense) {
	cache := m.cache
	if cache == nil {
		return
	}
	batch := len(cache.starts)
	dt := m.opt.TerminalEmbedSize
	dp := m.opt.PathEmbedSize
	contextSize := 2*dt + dp
	encodeSize := m.opt.EncodeSize

	termGrad := m.termEmbed.Grad.RawMatrix().Data
	pathGrad := m.pathEmbed.Grad.RawMatrix().Data
	transGrad := m.transform.Grad.RawMatrix().Data
	attnGrad := m.attention.Grad.RawMatrix().Data
	outGrad := m.output.Grad.RawMatrix().Data
	biasGrad := m.bias.Grad.RawMatrix().Data

	transData := m.transform.Value.RawMatrix().Data
	attnData := m.attention.Value.RawMatrix().Data
	outData := m.output.Value.RawMatrix().Data

	for b := 0; b < batch; b++ {
		g := dlogits.RawRowView(b)
		cv := cache.code[b]

		// output layer
		dcode := make([]float64, encodeSize)
		for c := 0; c < m.opt.LabelCount; c++ {
			gc := g[c]
			if gc == 0 {
				continue
			}
			biasGrad[c] += gc
			row := outData[c*encodeSize : (c+1)*encodeSize]
			gradRow := outGrad[c*encodeSize : (c+1)*encodeSize]
			for i := 0; i < encodeSize; i++ {
				gradRow[i] += gc * cv[i]
				dcode[i] += gc * row[i]
			}
		}

		// attention softmax
		width := len(cache.alpha[b])
		dots := make([]float64, width)
		weighted := 0.0
		for l := 0; l < width; l++ {
			if !cache.valid[b][l] {
				continue
			}
			d := 0.0
			for i, h := range cache.hidden[b][l] {
				d += h * dcode[i]
			}
			dots[l] = d
			weighted += cache.alpha[b][l] * d
		}

		for l := 0; l < width; l++ {
			if !cache.valid[b][l] {
				continue
			}
			alpha := cache.alpha[b][l]
			h := cache.hidden[b][l]
			dscore := alpha * (dots[l] - weighted)

			// dh = alpha*dcode + dscore*a, then through tanh
			dpre := make([]float64, encodeSize)
			for i := 0; i < encodeSize; i++ {
				dh := alpha*dcode[i] + dscore*attnData[i]
				dpre[i] = dh * (1 - h[i]*h[i])
				attnGrad[i] += dscore * h[i]
			}

			// transform layer and context vector
			ctx := cache.contexts[b][l]
			dctx := make([]float64, contextSize)
			for i := 0; i < encodeSize; i++ {
				dpi := dpre[i]
				if dpi == 0 {
					continue
				}
				row := transData[i*contextSize : (i+1)*contextSize]
				gradRow := transGrad[i*contextSize : (i+1)*contextSize]
				for j := 0; j < contextSize; j++ {
					gradRow[j] += dpi * ctx[j]
					dctx[j] += dpi * row[j]
				}
			}

			if cache.dropMask != nil {
				mask := cache.dropMask[b][l]
				for j := range dctx {
					dctx[j] *= mask[j]
				}
			}

			s, p, e := cache.starts[b][l], cache.paths[b][l], cache.ends[b][l]
			for j := 0; j < dt; j++ {
				termGrad[s*dt+j] += dctx[j]
				termGrad[e*dt+j] += dctx[dt+dp+j]
			}
			for j := 0; j < dp; j++ {
				pathGrad[p*dp+j] += dctx[dt+j]
			}
		}
	}
}
