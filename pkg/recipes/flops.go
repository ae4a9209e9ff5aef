package recipes

// EstimateStepFLOPs returns the approximate floating point operations one
// optimiser step performs for a dense decoder-only transformer: forward and
// backward matmuls over attention (grouped-query), the feed-forward block,
// the quadratic attention term, and the output projection onto the
// vocabulary. It is an analytical estimate for sizing and comparison, not a
// profiler.
func EstimateStepFLOPs(model ModelSpec, globalBatchSize, seqLength int) float64 {
	hidden := float64(model.HiddenSize)
	layers := float64(model.Layers)
	heads := float64(model.AttentionHeads)
	groups := float64(model.QueryGroups)
	ffn := float64(model.FFNHiddenSize)
	vocab := float64(model.VocabularySize)
	seq := float64(seqLength)

	perLayer := 12 + 12*(groups/heads) + 18*(ffn/hidden) + 12*(seq/hidden)
	tokensPerStep := float64(globalBatchSize) * seq
	return tokensPerStep * layers * hidden * hidden * (perLayer + 6*vocab/(layers*hidden))
}

// EstimateRecipeStepFLOPs applies the recipe's batch geometry. LoRA freezes
// the base weights but still adds work: the additive adapters run in both
// passes, so a LoRA recipe estimates higher than its dense baseline.
func EstimateRecipeStepFLOPs(r Recipe) float64 {
	total := EstimateStepFLOPs(r.Model, r.Data.GlobalBatchSize, r.Data.SequenceLength)
	if r.PEFT != nil {
		total += loraStepFLOPs(r.Model, r.Data.GlobalBatchSize, r.Data.SequenceLength, r.PEFT.Dim)
	}
	return total
}

// loraStepFLOPs estimates the adapter cost for rank-r adapters on the fused
// qkv projection of every layer: two low-rank matmuls per projection,
// forward and backward.
func loraStepFLOPs(model ModelSpec, globalBatchSize, seqLength, rank int) float64 {
	hidden := float64(model.HiddenSize)
	qkvWidth := hidden * (1 + 2*float64(model.QueryGroups)/float64(model.AttentionHeads))
	perToken := 6 * float64(rank) * (hidden + qkvWidth)
	return float64(globalBatchSize) * float64(seqLength) * float64(model.Layers) * perToken
}
