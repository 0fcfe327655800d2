package generator

import (
	"context"
	"math/rand/v2"

	"github.com/mcncl/pollinate/internal/config"
	"github.com/mcncl/pollinate/internal/errors"
	"github.com/mcncl/pollinate/internal/logging"
	"github.com/mcncl/pollinate/internal/models"
	"github.com/mcncl/pollinate/internal/producer"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Generator samples documents from a compiled producer tree
type Generator struct {
	root    *producer.Object
	seed    uint64
	workers int
	log     *logrus.Entry
}

// Option configures a Generator
type Option func(*Generator)

// WithSeed fixes the run seed. Zero picks a random one.
func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// WithWorkers sets how many documents are sampled concurrently.
func WithWorkers(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.workers = n
		}
	}
}

// NewGenerator creates a new Generator for root
func NewGenerator(root *producer.Object, opts ...Option) *Generator {
	g := &Generator{
		root:    root,
		workers: 1,
		log:     logging.NewLogger("generator"),
	}
	for _, opt := range opts {
		opt(g)
	}
	for g.seed == 0 {
		g.seed = rand.Uint64()
	}
	return g
}

// NewGeneratorWithConfig creates a Generator using the seed and worker settings of cfg
func NewGeneratorWithConfig(root *producer.Object, cfg *config.Config) *Generator {
	return NewGenerator(root, WithSeed(cfg.Seed), WithWorkers(cfg.Workers))
}

// Seed returns the seed in use, so a random run can be repeated.
func (g *Generator) Seed() uint64 {
	return g.seed
}

// Document returns the i-th document of the run. Each index has its own random
// stream, so the result does not depend on how many documents are generated or
// on the number of workers.
func (g *Generator) Document(i int) models.JSONObject {
	return producer.SampleObject(g.root, producer.NewSource(g.seed, uint64(i)))
}

// Generate samples n documents in index order.
func (g *Generator) Generate(ctx context.Context, n int) ([]models.JSONObject, error) {
	if n < 0 {
		return nil, errors.NewGenerateError("invalid document count", errors.ErrInvalidCount)
	}

	g.log.WithFields(logrus.Fields{
		"count":   n,
		"seed":    g.seed,
		"workers": g.workers,
	}).Debug("Generating documents")

	docs := make([]models.JSONObject, n)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)

	for i := 0; i < n; i++ {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			docs[i] = g.Document(i)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, errors.NewGenerateError("generation interrupted", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewGenerateError("generation interrupted", err)
	}
	return docs, nil
}

// Output returns the value written for a run of n documents: the document
// itself when n is 1, otherwise an array of documents (empty when n is 0).
func (g *Generator) Output(ctx context.Context, n int) (models.JSONValue, error) {
	docs, err := g.Generate(ctx, n)
	if err != nil {
		return nil, err
	}
	if n == 1 {
		return docs[0], nil
	}
	out := make(models.JSONArray, len(docs))
	for i, doc := range docs {
		out[i] = doc
	}
	return out, nil
}
