package agent

import (
	"context"
	"math/rand"
	"time"
)

const defaultGeneralLatency = 1500 * time.Millisecond

// Canned answers served while no real model is wired in.
var generalResponses = []string{
	"According to Active Learning Strategies, low-stakes quizzes improve long-term memory retention because they involve retrieval practice, which requires students to actively recall information rather than passively review it. This strengthens memory and enhances understanding. \n \n Two main examples are Think-Pair-Share and Retrieval Practice as two active learning techniques.",
}

// GeneralResponder answers free-text prompts from a fixed response pool
// after a simulated latency.
type GeneralResponder struct {
	latency time.Duration
}

func NewGeneralResponder(latency time.Duration) *GeneralResponder {
	if latency <= 0 {
		latency = defaultGeneralLatency
	}
	return &GeneralResponder{latency: latency}
}

func (r *GeneralResponder) Respond(ctx context.Context, sub Submission) (*Reply, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(r.latency):
	}

	return &Reply{
		Text: generalResponses[rand.Intn(len(generalResponses))],
	}, nil
}
