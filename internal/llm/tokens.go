package llm

// ------------------------------------------------------------------------------------------------------
// trimToBudget drops the oldest history turns until the remainder fits
// the configured token budget. The most recent turns always survive.
func (g *Gateway) trimToBudget(history []Message) []Message {
	if g.codec == nil || g.opts.TokenBudget <= 0 {
		return history
	}

	total := 0
	start := 0
	for i := len(history) - 1; i >= 0; i-- {
		n := g.countTokens(history[i].Content) + messageOverhead
		if total+n > g.opts.TokenBudget {
			start = i + 1
			break
		}
		total += n
	}

	return history[start:]
}

// ------------------------------------------------------------------------------------------------------
func (g *Gateway) countTokens(text string) int {
	ids, _, err := g.codec.Encode(text)
	if err != nil {
		// Rough fallback: ~4 characters per token
		return len(text) / 4
	}
	return len(ids)
}
