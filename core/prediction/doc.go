// Package prediction orchestrates the maintenance engine. An Engine always
// runs a rule-based maintenance policy and consults the learned efficiency
// estimator and the fuel anomaly detector only once they are trained. The
// learned outputs are reported next to the rule-based verdict and never
// change it.
package prediction
