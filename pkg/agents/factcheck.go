package agents

import (
	"context"
	"fmt"
	"log"

	"github.com/duynguyendang/deconstructor/pkg/gemini"
	"github.com/duynguyendang/deconstructor/pkg/model"
	"golang.org/x/sync/errgroup"
)

// FactChecker verifies extracted claims against web search. Verification is
// fan-out: all claims are checked concurrently and failures are contained
// per claim, so this stage never aborts a run.
type FactChecker struct {
	llm gemini.Generator

	// concurrency caps the number of in-flight verification calls.
	// Zero means unbounded.
	concurrency int
}

func NewFactChecker(llm gemini.Generator, concurrency int) *FactChecker {
	return &FactChecker{llm: llm, concurrency: concurrency}
}

// Verify returns exactly one FactCheck per claim, in input order. A claim
// whose underlying call fails gets a placeholder verification and an empty
// source list instead of failing the stage.
func (f *FactChecker) Verify(ctx context.Context, claims []string) []model.FactCheck {
	if len(claims) == 0 {
		return nil
	}

	results := make([]model.FactCheck, len(claims))
	g, ctx := errgroup.WithContext(ctx)
	if f.concurrency > 0 {
		g.SetLimit(f.concurrency)
	}

	for i, claim := range claims {
		g.Go(func() error {
			results[i] = f.verifyOne(ctx, claim)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (f *FactChecker) verifyOne(ctx context.Context, claim string) model.FactCheck {
	prompt := fmt.Sprintf(`You are a "FactCheck Agent" AI. Verify the following claim using Google Search. Provide a brief verification summary (e.g., "Confirmed," "Partially True," "False," "Unverifiable") and explain your reasoning.
Claim: %q`, claim)

	resp, err := f.llm.Generate(ctx, gemini.Request{
		Prompt:    prompt,
		WebSearch: true,
	})
	if err != nil {
		log.Printf("fact check failed for claim %q: %v", claim, err)
		return model.FactCheck{
			Claim:        claim,
			Verification: "Failed to verify this claim due to an error.",
			Sources:      []model.GroundingSource{},
		}
	}

	sources := resp.Sources
	if sources == nil {
		sources = []model.GroundingSource{}
	}
	return model.FactCheck{
		Claim:        claim,
		Verification: resp.Text,
		Sources:      sources,
	}
}
