// Package pipeline sequences the reconnaissance stages of one run.
//
// A Pipeline holds an ordered list of Steps (discovery, filtering, scanning)
// and a Finisher that writes the summary. Execute walks the steps as a state
// machine: a stage whose count is zero ends the chain early, either as a
// failure (discovery) or as a clean termination that is still summarized
// (filtering). The scanning stage always proceeds to the summary, including
// when the operator interrupts it.
package pipeline
