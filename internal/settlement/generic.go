package settlement

// GenericStrategy is the fallback for markets no concrete strategy handles.
// It settles everything as void so that dispatch is total over arbitrary
// market labels.
type GenericStrategy struct{}

func (GenericStrategy) Name() string { return "generic" }

func (GenericStrategy) Determine(string, *Result) Outcome {
	return Void
}
