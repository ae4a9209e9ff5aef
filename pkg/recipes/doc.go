// Package recipes builds training run configurations for the model families
// the formatter targets. A recipe bundles the model architecture, trainer
// geometry, data module, optimiser, and logging layout into one serialisable
// document, with pre-training and fine-tuning constructors that apply the
// defaults proven out on Llama 3 8B. The package only constructs and encodes
// configuration; launching runs is out of scope.
package recipes
